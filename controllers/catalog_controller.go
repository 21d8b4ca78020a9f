package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/models"
)

// The catalog controllers cover the small reference tables: brands, worker
// proficiencies, worker levels and payment methods. Listing is public;
// writes are admin only.

// CreateBrandRequest represents the request body for creating a brand
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateProficiencyRequest represents the request body for creating a
// worker proficiency
type CreateProficiencyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateLevelRequest represents the request body for creating a worker level
type CreateLevelRequest struct {
	Name        string  `json:"name" binding:"required"`
	Coefficient float64 `json:"coefficient" binding:"omitempty,gt=0"`
}

// CreatePaymentMethodRequest represents the request body for creating a
// payment method
type CreatePaymentMethodRequest struct {
	Name string `json:"name" binding:"required"`
}

func listCatalog(c *gin.Context, dest interface{}, failMessage string) {
	db := config.GetDB()
	if err := db.Order("name ASC").Find(dest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": failMessage,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dest,
	})
}

func createCatalogEntry(c *gin.Context, entry interface{}) bool {
	db := config.GetDB()
	if err := db.Create(entry).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_EXISTS",
					"message": "An entry with this name already exists",
				},
			})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create entry",
			},
		})
		return false
	}
	return true
}

func deleteCatalogEntry(c *gin.Context, entry interface{}, notFoundCode, notFoundMessage string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.First(entry, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    notFoundCode,
				"message": notFoundMessage,
			},
		})
		return
	}

	if err := db.Delete(entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete entry",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// ListBrands handles GET /api/v1/brands
func ListBrands(c *gin.Context) {
	var brands []models.Brand
	listCatalog(c, &brands, "Failed to fetch brands")
}

// CreateBrand handles POST /api/v1/brands (admins only)
func CreateBrand(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreateBrandRequest
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

	brand := models.Brand{Name: req.Name}
	if !createCatalogEntry(c, &brand) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    brand,
	})
}

// DeleteBrand handles DELETE /api/v1/brands/:id (admins only)
func DeleteBrand(c *gin.Context) {
	var brand models.Brand
	deleteCatalogEntry(c, &brand, "BRAND_NOT_FOUND", "Brand not found")
}

// ListProficiencies handles GET /api/v1/proficiencies
func ListProficiencies(c *gin.Context) {
	var proficiencies []models.WorkerProficiency
	listCatalog(c, &proficiencies, "Failed to fetch proficiencies")
}

// CreateProficiency handles POST /api/v1/proficiencies (admins only)
func CreateProficiency(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreateProficiencyRequest
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

	proficiency := models.WorkerProficiency{Name: req.Name, Description: req.Description}
	if !createCatalogEntry(c, &proficiency) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    proficiency,
	})
}

// DeleteProficiency handles DELETE /api/v1/proficiencies/:id (admins only)
func DeleteProficiency(c *gin.Context) {
	var proficiency models.WorkerProficiency
	deleteCatalogEntry(c, &proficiency, "PROFICIENCY_NOT_FOUND", "Worker proficiency not found")
}

// ListLevels handles GET /api/v1/levels
func ListLevels(c *gin.Context) {
	var levels []models.WorkerLevel
	listCatalog(c, &levels, "Failed to fetch levels")
}

// CreateLevel handles POST /api/v1/levels (admins only)
func CreateLevel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreateLevelRequest
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

	level := models.WorkerLevel{Name: req.Name, Coefficient: req.Coefficient}
	if level.Coefficient == 0 {
		level.Coefficient = 1
	}
	if !createCatalogEntry(c, &level) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    level,
	})
}

// DeleteLevel handles DELETE /api/v1/levels/:id (admins only)
func DeleteLevel(c *gin.Context) {
	var level models.WorkerLevel
	deleteCatalogEntry(c, &level, "LEVEL_NOT_FOUND", "Worker level not found")
}

// ListPaymentMethods handles GET /api/v1/payment-methods
func ListPaymentMethods(c *gin.Context) {
	var methods []models.PaymentMethod
	listCatalog(c, &methods, "Failed to fetch payment methods")
}

// CreatePaymentMethod handles POST /api/v1/payment-methods (admins only)
func CreatePaymentMethod(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreatePaymentMethodRequest
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

	method := models.PaymentMethod{Name: req.Name}
	if !createCatalogEntry(c, &method) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    method,
	})
}

// DeletePaymentMethod handles DELETE /api/v1/payment-methods/:id (admins only)
func DeletePaymentMethod(c *gin.Context) {
	var method models.PaymentMethod
	deleteCatalogEntry(c, &method, "PAYMENT_METHOD_NOT_FOUND", "Payment method not found")
}
