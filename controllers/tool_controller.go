package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/models"
	"github.com/toolrent/toolrent-api/services"
	"github.com/toolrent/toolrent-api/utils"
)

// CreateToolRequest represents the request body for creating a tool
type CreateToolRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"required,gte=0"`
	InStockCount int     `json:"in_stock_count" binding:"gte=0"`
	Bookable     *bool   `json:"bookable"`
	BrandID      *uint   `json:"brand_id"`
}

// UpdateToolRequest represents the request body for updating a tool.
// Pointer fields distinguish "leave unchanged" from explicit zero values.
type UpdateToolRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price" binding:"omitempty,gte=0"`
	InStockCount *int     `json:"in_stock_count" binding:"omitempty,gte=0"`
	Bookable     *bool    `json:"bookable"`
	BrandID      *uint    `json:"brand_id"`
}

// attachImageURL fills the computed ImageURL field from the image service
func attachImageURL(tool *models.Tool) {
	if tool.ImageS3Key == nil || *tool.ImageS3Key == "" {
		return
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	url, err := imageService.GetImageURL(*tool.ImageS3Key)
	if err != nil {
		log.Warnf("failed to generate image URL for tool %d: %v", tool.ID, err)
		return
	}
	if url != "" {
		tool.ImageURL = &url
	}
}

// ListTools handles GET /api/v1/tools - public catalog listing with
// optional brand_id, bookable and in_stock filters
func ListTools(c *gin.Context) {
	db := config.GetDB()
	query := db.Preload("Brand").Order("name ASC")

	if brandID := c.Query("brand_id"); brandID != "" {
		query = query.Where("brand_id = ?", brandID)
	}
	if bookable := c.Query("bookable"); bookable != "" {
		query = query.Where("bookable = ?", bookable == "true")
	}
	if c.Query("in_stock") == "true" {
		query = query.Where("in_stock_count > 0")
	}

	var tools []models.Tool
	if err := query.Find(&tools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch tools",
			},
		})
		return
	}

	for i := range tools {
		attachImageURL(&tools[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tools,
	})
}

// GetTool handles GET /api/v1/tools/:id - public single tool detail
func GetTool(c *gin.Context) {
	toolID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var tool models.Tool
	if err := db.Preload("Brand").First(&tool, toolID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOOL_NOT_FOUND",
				"message": "Tool not found",
			},
		})
		return
	}

	attachImageURL(&tool)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tool,
	})
}

// CreateTool handles POST /api/v1/tools - adds a tool to the catalog
// (admins only)
func CreateTool(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreateToolRequest
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

	// Referenced brand must exist
	if req.BrandID != nil {
		var brand models.Brand
		if err := db.First(&brand, *req.BrandID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "BRAND_NOT_FOUND",
					"message": "Brand not found",
				},
			})
			return
		}
	}

	tool := models.Tool{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		InStockCount: req.InStockCount,
		Bookable:     true,
		BrandID:      req.BrandID,
	}
	if req.Bookable != nil {
		tool.Bookable = *req.Bookable
	}

	if err := db.Create(&tool).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create tool",
			},
		})
		return
	}

	if err := db.Preload("Brand").First(&tool, tool.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load tool details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    tool,
	})
}

// UpdateTool handles PATCH /api/v1/tools/:id - updates catalog data,
// including absolute restocking of in_stock_count (admins only)
func UpdateTool(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	toolID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateToolRequest
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
	var tool models.Tool
	if err := db.First(&tool, toolID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOOL_NOT_FOUND",
				"message": "Tool not found",
			},
		})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.InStockCount != nil {
		updates["in_stock_count"] = *req.InStockCount
	}
	if req.Bookable != nil {
		updates["bookable"] = *req.Bookable
	}
	if req.BrandID != nil {
		var brand models.Brand
		if err := db.First(&brand, *req.BrandID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "BRAND_NOT_FOUND",
					"message": "Brand not found",
				},
			})
			return
		}
		updates["brand_id"] = *req.BrandID
	}

	if len(updates) > 0 {
		if err := db.Model(&tool).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update tool",
				},
			})
			return
		}
	}

	if err := db.Preload("Brand").First(&tool, tool.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load tool details",
			},
		})
		return
	}

	attachImageURL(&tool)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tool,
	})
}

// DeleteTool handles DELETE /api/v1/tools/:id - soft deletes a tool
// (admins only)
func DeleteTool(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	toolID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var tool models.Tool
	if err := db.First(&tool, toolID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOOL_NOT_FOUND",
				"message": "Tool not found",
			},
		})
		return
	}

	if err := db.Delete(&tool).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete tool",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// UploadToolImage handles POST /api/v1/tools/:id/image - uploads a PNG
// image for a tool to S3 (admins only)
func UploadToolImage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	toolID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var tool models.Tool
	if err := db.First(&tool, toolID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOOL_NOT_FOUND",
				"message": "Tool not found",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "Image file is required (multipart field 'image')",
			},
		})
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Image storage is not configured",
			},
		})
		return
	}

	s3Key, err := imageService.UploadImage(fileHeader)
	if err != nil {
		if uploadErr, ok := err.(*utils.FileUploadError); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to upload image",
			},
		})
		return
	}

	// Replace a previous image if there was one
	if tool.ImageS3Key != nil && *tool.ImageS3Key != "" {
		if err := imageService.DeleteImage(*tool.ImageS3Key); err != nil {
			log.Warnf("failed to delete previous image %s: %v", *tool.ImageS3Key, err)
		}
	}

	if err := db.Model(&tool).Update("image_s3_key", s3Key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save image reference",
			},
		})
		return
	}

	tool.ImageS3Key = &s3Key
	attachImageURL(&tool)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tool,
	})
}
