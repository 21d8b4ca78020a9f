package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/toolrent/toolrent-api/models"
)

// ToolLineInput is a tool-line of an order being created
type ToolLineInput struct {
	ToolID uint
	Count  int
	Price  float64
}

// WorkerLineInput is a worker-line of an order being created
type WorkerLineInput struct {
	ProficiencyID uint
	LevelID       uint
	Count         int
	WithTools     bool
	Time          int
	TimeUnit      string
	Price         float64
}

// CreateOrderInput carries the validated order payload into the service
type CreateOrderInput struct {
	Status          string
	Date            time.Time
	Address         *string
	OverallPrice    float64
	PaymentMethodID uint
	PaymentStatus   string
	WithDelivery    bool
	DeliveryComment *string
	Longitude       *float64
	Latitude        *float64
	ToolLines       []ToolLineInput
	WorkerLines     []WorkerLineInput
}

// orderPreloads loads every relation the composed order response needs
func orderPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("PaymentMethod").
		Preload("OrderTools.Tool").
		Preload("OrderWorkers.Proficiency").
		Preload("OrderWorkers.Level").
		Preload("Comments")
}

// CreateOrder creates an order with its tool-lines and worker-lines in a
// single transaction. Tool stock is decremented with a conditional update
// so two concurrent orders can never drive a tool's stock below zero, and
// any failure rolls the whole order back - there are no partially created
// orders.
//
// Returns the persisted order with all relations populated, or one of the
// typed errors from this package.
func CreateOrder(db *gorm.DB, userID uint, input CreateOrderInput) (*models.Order, error) {
	order := models.Order{
		UserID:          userID,
		Status:          input.Status,
		Date:            input.Date,
		Address:         input.Address,
		OverallPrice:    input.OverallPrice,
		PaymentMethodID: input.PaymentMethodID,
		PaymentStatus:   input.PaymentStatus,
		WithDelivery:    input.WithDelivery,
		DeliveryComment: input.DeliveryComment,
		Longitude:       input.Longitude,
		Latitude:        input.Latitude,
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusPending
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// The payment method must exist before anything is written
		var method models.PaymentMethod
		if err := tx.First(&method, input.PaymentMethodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "payment method", ID: input.PaymentMethodID}
			}
			return err
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, line := range input.ToolLines {
			if err := reserveTool(tx, order.ID, line); err != nil {
				return err
			}
		}

		for _, line := range input.WorkerLines {
			if err := requestWorkers(tx, order.ID, line); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-fetch the order with all relations populated
	var created models.Order
	if err := orderPreloads(db).First(&created, order.ID).Error; err != nil {
		return nil, err
	}

	return &created, nil
}

// reserveTool decrements a tool's stock and creates the join row for one
// tool-line. The decrement is conditional on enough stock being left; a
// zero-row update means the tool is either missing or exhausted, and a
// follow-up read tells the two cases apart.
func reserveTool(tx *gorm.DB, orderID uint, line ToolLineInput) error {
	res := tx.Model(&models.Tool{}).
		Where("id = ? AND in_stock_count >= ?", line.ToolID, line.Count).
		UpdateColumn("in_stock_count", gorm.Expr("in_stock_count - ?", line.Count))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var tool models.Tool
		if err := tx.First(&tool, line.ToolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "tool", ID: line.ToolID}
			}
			return err
		}
		return &InsufficientStockError{
			ToolID:    line.ToolID,
			Requested: line.Count,
			Available: tool.InStockCount,
		}
	}

	orderTool := models.OrderTool{
		OrderID: orderID,
		ToolID:  line.ToolID,
		Count:   line.Count,
		Price:   line.Price,
	}
	return tx.Create(&orderTool).Error
}

// requestWorkers validates the referenced proficiency and level and creates
// the join row for one worker-line. No availability check happens here;
// concrete workers are attached later through AttachWorker.
func requestWorkers(tx *gorm.DB, orderID uint, line WorkerLineInput) error {
	var proficiency models.WorkerProficiency
	if err := tx.First(&proficiency, line.ProficiencyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "worker proficiency", ID: line.ProficiencyID}
		}
		return err
	}

	var level models.WorkerLevel
	if err := tx.First(&level, line.LevelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "worker level", ID: line.LevelID}
		}
		return err
	}

	orderWorker := models.OrderWorker{
		OrderID:       orderID,
		ProficiencyID: line.ProficiencyID,
		LevelID:       line.LevelID,
		Count:         line.Count,
		WithTools:     line.WithTools,
		Time:          line.Time,
		TimeUnit:      line.TimeUnit,
		Price:         line.Price,
	}
	return tx.Create(&orderWorker).Error
}

// GetOrder fetches one order with all relations populated
func GetOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := orderPreloads(db).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID}
		}
		return nil, err
	}
	return &order, nil
}

// allowedTransitions is the order status state machine
var allowedTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusCompleted, models.OrderStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateOrderStatus moves an order through the status state machine.
// Cancelling an order returns every decremented tool back to stock inside
// the same transaction.
func UpdateOrderStatus(db *gorm.DB, orderID uint, newStatus string) (*models.Order, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID}
			}
			return err
		}

		if !transitionAllowed(order.Status, newStatus) {
			return &InvalidTransitionError{From: order.Status, To: newStatus}
		}

		if newStatus == models.OrderStatusCancelled {
			if err := restoreStock(tx, order.ID); err != nil {
				return err
			}
		}

		return tx.Model(&order).Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}

	return GetOrder(db, orderID)
}

// restoreStock adds every tool-line count of an order back onto the stock
// ledger. Used when an order is cancelled.
func restoreStock(tx *gorm.DB, orderID uint) error {
	var lines []models.OrderTool
	if err := tx.Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
		return err
	}

	for _, line := range lines {
		res := tx.Model(&models.Tool{}).
			Where("id = ?", line.ToolID).
			UpdateColumn("in_stock_count", gorm.Expr("in_stock_count + ?", line.Count))
		if res.Error != nil {
			return res.Error
		}
	}
	return nil
}

// AttachWorker assigns a concrete worker to an order worker-line. The
// worker's availability flag is flipped with a conditional update in the
// same transaction that inserts the attachment, so a worker can never be
// attached twice.
func AttachWorker(db *gorm.DB, orderWorkerID, workerID uint) (*models.AttachedWorker, error) {
	attached := models.AttachedWorker{
		OrderWorkerID: orderWorkerID,
		WorkerID:      workerID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var orderWorker models.OrderWorker
		if err := tx.First(&orderWorker, orderWorkerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order worker", ID: orderWorkerID}
			}
			return err
		}

		res := tx.Model(&models.Worker{}).
			Where("id = ? AND is_free = ?", workerID, true).
			Update("is_free", false)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var worker models.Worker
			if err := tx.First(&worker, workerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "worker", ID: workerID}
				}
				return err
			}
			return &WorkerUnavailableError{WorkerID: workerID}
		}

		return tx.Create(&attached).Error
	})
	if err != nil {
		return nil, err
	}

	var created models.AttachedWorker
	if err := db.Preload("Worker").Preload("OrderWorker").First(&created, attached.ID).Error; err != nil {
		return nil, err
	}

	return &created, nil
}
