package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/models"
	"github.com/toolrent/toolrent-api/services"
)

func setupToolTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Brand{}, &models.Tool{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func seedToolFixtures(t *testing.T, db *gorm.DB) (customer, admin models.User, brand models.Brand) {
	customer = models.User{
		Auth0ID: "auth0|customer",
		Name:    "Customer User",
		Email:   "customer@example.com",
		Role:    "customer",
	}
	db.Create(&customer)

	admin = models.User{
		Auth0ID: "auth0|admin",
		Name:    "Admin User",
		Email:   "admin@example.com",
		Role:    "admin",
	}
	db.Create(&admin)

	brand = models.Brand{Name: "Makita"}
	db.Create(&brand)

	return
}

// createMultipartRequest builds a multipart request with a single file field
func createMultipartRequest(t *testing.T, url, field, filename string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestListTools(t *testing.T) {
	// Setup
	db := setupToolTestDB(t)
	config.SetDB(db)
	services.SetImageService(nil)

	_, _, brand := seedToolFixtures(t, db)

	db.Create(&models.Tool{Name: "Angle Grinder", Price: 30, InStockCount: 4, Bookable: true, BrandID: &brand.ID})
	db.Create(&models.Tool{Name: "Cordless Drill", Price: 50, InStockCount: 0, Bookable: true})
	db.Create(&models.Tool{Name: "Jackhammer", Price: 120, InStockCount: 1, Bookable: false})

	tests := []struct {
		name          string
		query         string
		expectedCount int
		expectedFirst string
	}{
		{
			name:          "All tools sorted by name",
			expectedCount: 3,
			expectedFirst: "Angle Grinder",
		},
		{
			name:          "Filter by brand",
			query:         fmt.Sprintf("?brand_id=%d", brand.ID),
			expectedCount: 1,
			expectedFirst: "Angle Grinder",
		},
		{
			name:          "Filter bookable",
			query:         "?bookable=true",
			expectedCount: 2,
		},
		{
			name:          "Filter in stock",
			query:         "?in_stock=true",
			expectedCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/tools", ListTools)

			req, _ := http.NewRequest(http.MethodGet, "/tools"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)
			assert.True(t, response["success"].(bool))

			data := response["data"].([]interface{})
			assert.Equal(t, tt.expectedCount, len(data))

			if tt.expectedFirst != "" {
				first := data[0].(map[string]interface{})
				assert.Equal(t, tt.expectedFirst, first["name"])
			}
		})
	}
}

func TestGetTool(t *testing.T) {
	// Setup
	db := setupToolTestDB(t)
	config.SetDB(db)
	services.SetImageService(nil)

	_, _, brand := seedToolFixtures(t, db)

	tool := models.Tool{Name: "Angle Grinder", Price: 30, InStockCount: 4, Bookable: true, BrandID: &brand.ID}
	db.Create(&tool)

	router := setupTestRouter()
	router.GET("/tools/:id", GetTool)

	// Existing tool, with brand preloaded
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/tools/%d", tool.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, tool.Name, data["name"])
	brandData := data["brand"].(map[string]interface{})
	assert.Equal(t, brand.Name, brandData["name"])

	// Unknown tool
	req, _ = http.NewRequest(http.MethodGet, "/tools/99999", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "TOOL_NOT_FOUND", errorData["code"])
}

func TestCreateTool(t *testing.T) {
	// Setup
	db := setupToolTestDB(t)
	config.SetDB(db)
	services.SetImageService(nil)

	customer, admin, brand := seedToolFixtures(t, db)

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:    "Successfully create tool as admin",
			auth0ID: admin.Auth0ID,
			role:    "admin",
			requestBody: map[string]interface{}{
				"name":           "Circular Saw",
				"description":    "185mm blade",
				"price":          45.0,
				"in_stock_count": 3,
				"brand_id":       brand.ID,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "Circular Saw", data["name"])
				assert.Equal(t, float64(3), data["in_stock_count"])
				assert.Equal(t, true, data["bookable"])
				brandData := data["brand"].(map[string]interface{})
				assert.Equal(t, brand.Name, brandData["name"])
			},
		},
		{
			name:    "Fail to create tool as customer",
			auth0ID: customer.Auth0ID,
			role:    "customer",
			requestBody: map[string]interface{}{
				"name":  "Circular Saw",
				"price": 45.0,
			},
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
		{
			name:    "Fail with missing name",
			auth0ID: admin.Auth0ID,
			role:    "admin",
			requestBody: map[string]interface{}{
				"price": 45.0,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:    "Fail with unknown brand",
			auth0ID: admin.Auth0ID,
			role:    "admin",
			requestBody: map[string]interface{}{
				"name":     "Circular Saw",
				"price":    45.0,
				"brand_id": 99999,
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "BRAND_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/tools",
				mockAuthMiddleware(tt.auth0ID, tt.role, "mock-token"),
				CreateTool,
			)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/tools", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestUpdateTool(t *testing.T) {
	// Setup
	db := setupToolTestDB(t)
	config.SetDB(db)
	services.SetImageService(nil)

	_, admin, _ := seedToolFixtures(t, db)

	tool := models.Tool{Name: "Angle Grinder", Description: "old", Price: 30, InStockCount: 1, Bookable: true}
	db.Create(&tool)

	router := setupTestRouter()
	router.PATCH("/tools/:id",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		UpdateTool,
	)

	// Restock and reprice, leaving the rest alone
	body, _ := json.Marshal(map[string]interface{}{
		"price":          35.0,
		"in_stock_count": 10,
	})
	req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("/tools/%d", tool.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var fresh models.Tool
	db.First(&fresh, tool.ID)
	assert.Equal(t, 10, fresh.InStockCount)
	assert.Equal(t, 35.0, fresh.Price)
	assert.Equal(t, "Angle Grinder", fresh.Name)
	assert.Equal(t, "old", fresh.Description)

	// Explicit false goes through even though it is the zero value
	body, _ = json.Marshal(map[string]interface{}{"bookable": false})
	req, _ = http.NewRequest(http.MethodPatch, fmt.Sprintf("/tools/%d", tool.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	db.First(&fresh, tool.ID)
	assert.False(t, fresh.Bookable)

	// Unknown tool
	body, _ = json.Marshal(map[string]interface{}{"price": 1.0})
	req, _ = http.NewRequest(http.MethodPatch, "/tools/99999", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTool(t *testing.T) {
	// Setup
	db := setupToolTestDB(t)
	config.SetDB(db)
	services.SetImageService(nil)

	customer, admin, _ := seedToolFixtures(t, db)

	tool := models.Tool{Name: "Angle Grinder", Price: 30, InStockCount: 1, Bookable: true}
	db.Create(&tool)

	// Customer is rejected
	router := setupTestRouter()
	router.DELETE("/tools/:id",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		DeleteTool,
	)
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/tools/%d", tool.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin soft deletes
	router = setupTestRouter()
	router.DELETE("/tools/:id",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		DeleteTool,
	)
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/tools/%d", tool.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var found models.Tool
	err := db.First(&found, tool.ID).Error
	assert.Error(t, err)
}

func TestUploadToolImage(t *testing.T) {
	// Setup
	db := setupToolTestDB(t)
	config.SetDB(db)

	_, admin, _ := seedToolFixtures(t, db)

	tool := models.Tool{Name: "Angle Grinder", Price: 30, InStockCount: 1, Bookable: true}
	db.Create(&tool)

	// Wire the image service onto mock S3 storage
	mockS3 := services.NewMockS3Service()
	services.InitImageService(mockS3)
	defer services.SetImageService(nil)

	router := setupTestRouter()
	router.POST("/tools/:id/image",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		UploadToolImage,
	)

	// Successful upload stores the key on the tool
	req := createMultipartRequest(t, fmt.Sprintf("/tools/%d/image", tool.ID), "image", "grinder.png", []byte("png-bytes"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "tools/mock_grinder.png", data["image_s3_key"])
	assert.NotEmpty(t, data["image_url"])
	assert.True(t, mockS3.FileExists("tools/mock_grinder.png"))

	var fresh models.Tool
	db.First(&fresh, tool.ID)
	assert.NotNil(t, fresh.ImageS3Key)
	assert.Equal(t, "tools/mock_grinder.png", *fresh.ImageS3Key)

	// Uploading a replacement deletes the previous image
	req = createMultipartRequest(t, fmt.Sprintf("/tools/%d/image", tool.ID), "image", "grinder_v2.png", []byte("new-bytes"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, mockS3.FileExists("tools/mock_grinder.png"))
	assert.True(t, mockS3.FileExists("tools/mock_grinder_v2.png"))

	// Non-PNG file is rejected
	req = createMultipartRequest(t, fmt.Sprintf("/tools/%d/image", tool.ID), "image", "grinder.jpg", []byte("jpg-bytes"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_FILE_FORMAT", errorData["code"])

	// Missing file field is rejected
	req, _ = http.NewRequest(http.MethodPost, fmt.Sprintf("/tools/%d/image", tool.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	errorData = response["error"].(map[string]interface{})
	assert.Equal(t, "MISSING_FILE", errorData["code"])

	// Unknown tool
	req = createMultipartRequest(t, "/tools/99999/image", "image", "grinder.png", []byte("png-bytes"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
