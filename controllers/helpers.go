package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/middleware"
	"github.com/toolrent/toolrent-api/models"
	"github.com/toolrent/toolrent-api/services"
)

// currentUser resolves the authenticated user's profile from the Auth0 ID
// in the JWT. Writes the error response and returns false when the token is
// missing or no profile exists yet.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// requireAdmin responds 403 and returns false when the user is not an admin
func requireAdmin(c *gin.Context, user *models.User) bool {
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can access this resource",
			},
		})
		return false
	}
	return true
}

// parseIDParam parses the :id URL parameter. Responds 400 and returns
// false when it is missing or not a number.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "ID must be a positive integer",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps the service error taxonomy onto transport status
// codes. The classification survives all the way from the failing operation;
// nothing is collapsed into a generic 500 except genuinely unknown errors.
func respondServiceError(c *gin.Context, err error) {
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": notFound.Error(),
			},
		})
		return
	}

	var stock *services.InsufficientStockError
	if errors.As(err, &stock) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INSUFFICIENT_STOCK",
				"message": stock.Error(),
			},
		})
		return
	}

	var unavailable *services.WorkerUnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "WORKER_UNAVAILABLE",
				"message": unavailable.Error(),
			},
		})
		return
	}

	var transition *services.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": transition.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Unexpected database error",
		},
	})
}
