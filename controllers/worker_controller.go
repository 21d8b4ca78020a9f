package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/models"
	"github.com/toolrent/toolrent-api/services"
	"github.com/toolrent/toolrent-api/utils"
)

// CreateWorkerRequest represents the request body for registering a worker
type CreateWorkerRequest struct {
	FullName     string   `json:"fullname" binding:"required"`
	Phone        string   `json:"phone" binding:"required"`
	Address      string   `json:"address"`
	About        string   `json:"about"`
	Experience   int      `json:"experience" binding:"gte=0"`
	TimeUnit     string   `json:"time_unit" binding:"omitempty,oneof=hour day"`
	PricePerHour *float64 `json:"price_per_hour" binding:"omitempty,gte=0"`
	PricePerDay  *float64 `json:"price_per_day" binding:"omitempty,gte=0"`
	LevelID      uint     `json:"level_id" binding:"required"`
}

// AttachWorkerRequest represents the request body for attaching a worker to
// an order worker-line
type AttachWorkerRequest struct {
	OrderWorkerID uint `json:"order_worker_id" binding:"required"`
	WorkerID      uint `json:"worker_id" binding:"required"`
}

func attachPhotoURL(worker *models.Worker) {
	if worker.PhotoFilename == nil || *worker.PhotoFilename == "" {
		return
	}
	url := utils.PhotoURL(*worker.PhotoFilename)
	worker.PhotoURL = &url
}

// ListWorkers handles GET /api/v1/workers - lists registered workers with
// optional is_free and level_id filters (admins only)
func ListWorkers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	db := config.GetDB()
	query := db.Preload("Level").Order("fullname ASC")

	if isFree := c.Query("is_free"); isFree != "" {
		query = query.Where("is_free = ?", isFree == "true")
	}
	if levelID := c.Query("level_id"); levelID != "" {
		query = query.Where("level_id = ?", levelID)
	}

	var workers []models.Worker
	if err := query.Find(&workers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch workers",
			},
		})
		return
	}

	for i := range workers {
		attachPhotoURL(&workers[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    workers,
	})
}

// CreateWorker handles POST /api/v1/workers - registers a worker
// (admins only)
func CreateWorker(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreateWorkerRequest
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

	// Referenced level must exist
	var level models.WorkerLevel
	if err := db.First(&level, req.LevelID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LEVEL_NOT_FOUND",
				"message": "Worker level not found",
			},
		})
		return
	}

	worker := models.Worker{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Address:      req.Address,
		About:        req.About,
		Experience:   req.Experience,
		TimeUnit:     req.TimeUnit,
		PricePerHour: req.PricePerHour,
		PricePerDay:  req.PricePerDay,
		LevelID:      req.LevelID,
		IsFree:       true,
	}
	if worker.TimeUnit == "" {
		worker.TimeUnit = "hour"
	}

	if err := db.Create(&worker).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create worker",
			},
		})
		return
	}

	if err := db.Preload("Level").First(&worker, worker.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load worker details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    worker,
	})
}

// AttachWorker handles POST /api/v1/attached-workers - assigns a free
// worker to an order worker-line (admins only)
func AttachWorker(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req AttachWorkerRequest
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
	attached, err := services.AttachWorker(db, req.OrderWorkerID, req.WorkerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    attached,
	})
}

// UploadWorkerPhoto handles POST /api/v1/workers/:id/photo - uploads a PNG
// profile photo to local storage (admins only)
func UploadWorkerPhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	workerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var worker models.Worker
	if err := db.First(&worker, workerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "WORKER_NOT_FOUND",
				"message": "Worker not found",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "Photo file is required (multipart field 'photo')",
			},
		})
		return
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
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
				"message": "Failed to validate photo",
			},
		})
		return
	}

	filename, err := utils.SaveUploadedFile(fileHeader, utils.UploadDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to save photo",
			},
		})
		return
	}

	if err := db.Model(&worker).Update("photo_filename", filename).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save photo reference",
			},
		})
		return
	}

	worker.PhotoFilename = &filename
	attachPhotoURL(&worker)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    worker,
	})
}
