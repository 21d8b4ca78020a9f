package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/models"
	"github.com/toolrent/toolrent-api/services"
)

// OrderToolRequest represents a tool-line in an order creation request
type OrderToolRequest struct {
	ToolID uint    `json:"tool_id" binding:"required"`
	Count  int     `json:"count" binding:"required,gt=0"`
	Price  float64 `json:"price" binding:"required,gte=0"`
}

// OrderWorkerRequest represents a worker-line in an order creation request
type OrderWorkerRequest struct {
	ProficiencyID uint    `json:"proficiency_id" binding:"required"`
	LevelID       uint    `json:"level_id" binding:"required"`
	Count         int     `json:"count" binding:"required,gt=0"`
	WithTools     bool    `json:"with_tools"`
	Time          int     `json:"time" binding:"required,gt=0"`
	TimeUnit      string  `json:"time_unit" binding:"required,oneof=hour day"`
	Price         float64 `json:"price" binding:"required,gte=0"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Status          string               `json:"status" binding:"omitempty,oneof=pending confirmed"`
	Date            time.Time            `json:"date" binding:"required"`
	Address         *string              `json:"address"`
	OverallPrice    float64              `json:"overall_price" binding:"required,gte=0"`
	PaymentMethodID uint                 `json:"payment_method_id" binding:"required"`
	PaymentStatus   string               `json:"payment_status" binding:"omitempty,oneof=pending paid failed"`
	WithDelivery    bool                 `json:"with_delivery"`
	DeliveryComment *string              `json:"delivery_comment"`
	Longitude       *float64             `json:"longitude"`
	Latitude        *float64             `json:"latitude"`
	OrderTools      []OrderToolRequest   `json:"order_tools" binding:"omitempty,dive"`
	OrderWorkers    []OrderWorkerRequest `json:"order_workers" binding:"omitempty,dive"`
}

// UpdateOrderStatusRequest represents the request body for a status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed completed cancelled"`
}

// CreateOrder handles POST /api/v1/orders - creates a new order with its
// tool-lines and worker-lines (customers only)
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// Check if user is a customer (only customers can create orders)
	if user.Role != "customer" {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only customers can create orders",
			},
		})
		return
	}

	// Parse request body
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	input := services.CreateOrderInput{
		Status:          req.Status,
		Date:            req.Date,
		Address:         req.Address,
		OverallPrice:    req.OverallPrice,
		PaymentMethodID: req.PaymentMethodID,
		PaymentStatus:   req.PaymentStatus,
		WithDelivery:    req.WithDelivery,
		DeliveryComment: req.DeliveryComment,
		Longitude:       req.Longitude,
		Latitude:        req.Latitude,
	}
	for _, line := range req.OrderTools {
		input.ToolLines = append(input.ToolLines, services.ToolLineInput{
			ToolID: line.ToolID,
			Count:  line.Count,
			Price:  line.Price,
		})
	}
	for _, line := range req.OrderWorkers {
		input.WorkerLines = append(input.WorkerLines, services.WorkerLineInput{
			ProficiencyID: line.ProficiencyID,
			LevelID:       line.LevelID,
			Count:         line.Count,
			WithTools:     line.WithTools,
			Time:          line.Time,
			TimeUnit:      line.TimeUnit,
			Price:         line.Price,
		})
	}

	db := config.GetDB()
	order, err := services.CreateOrder(db, user.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Notify staff on the background dispatcher. Best effort: the order is
	// already committed and a notification failure must not surface here.
	if dispatcher := services.GetNotificationDispatcher(); dispatcher != nil {
		dispatcher.Enqueue(order)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - admins see all orders, customers
// see their own
func ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.
		Preload("User").
		Preload("PaymentMethod").
		Preload("OrderTools.Tool").
		Preload("OrderWorkers.Proficiency").
		Preload("OrderWorkers.Level").
		Order("created_at DESC")

	if !user.IsAdmin() {
		query = query.Where("user_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns one order with all
// relations (owner or admin)
func GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	order, err := services.GetOrder(db, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !user.IsAdmin() && order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - moves an
// order through the status state machine (admins only). Cancelling returns
// reserved tools to stock.
func UpdateOrderStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	order, err := services.UpdateOrderStatus(db, orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id - soft deletes an order
// (admins only)
func DeleteOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if err := db.Delete(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}
