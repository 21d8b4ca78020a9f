package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/models"
)

// CreateFavoriteRequest represents the request body for saving a tool
type CreateFavoriteRequest struct {
	ToolID uint `json:"tool_id" binding:"required"`
}

// CreateFavorite handles POST /api/v1/favorites - saves a tool for the
// authenticated user
func CreateFavorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateFavoriteRequest
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
	if err := db.First(&tool, req.ToolID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOOL_NOT_FOUND",
				"message": "Tool not found",
			},
		})
		return
	}

	favorite := models.Favorite{
		UserID: user.ID,
		ToolID: req.ToolID,
	}

	if err := db.Create(&favorite).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_FAVORITED",
					"message": "Tool is already in favorites",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create favorite",
			},
		})
		return
	}

	if err := db.Preload("Tool").First(&favorite, favorite.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load favorite details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    favorite,
	})
}

// ListFavorites handles GET /api/v1/favorites - lists the authenticated
// user's saved tools
func ListFavorites(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var favorites []models.Favorite
	if err := db.Where("user_id = ?", user.ID).
		Preload("Tool").
		Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch favorites",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    favorites,
	})
}

// DeleteFavorite handles DELETE /api/v1/favorites/:id - removes a saved
// tool (owner only)
func DeleteFavorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	favoriteID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var favorite models.Favorite
	if err := db.First(&favorite, favoriteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FAVORITE_NOT_FOUND",
				"message": "Favorite not found",
			},
		})
		return
	}

	if favorite.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to remove this favorite",
			},
		})
		return
	}

	if err := db.Delete(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete favorite",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}
