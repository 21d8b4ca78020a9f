package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/middleware"
	"github.com/toolrent/toolrent-api/models"
	"github.com/toolrent/toolrent-api/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate the User model
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		token := authHeader[7:] // Remove "Bearer " prefix

		// Look up user info by token
		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set the user_id (Auth0 ID from 'sub' claim)
		c.Set("user_id", auth0ID)

		// Set the access token for calling /userinfo
		c.Set("access_token", accessToken)

		// Create custom claims matching the real structure (only role, no email/name)
		customClaims := &middleware.CustomClaims{
			Role: role,
		}

		// Create a proper ValidatedClaims structure
		// This matches what the real JWT middleware creates
		mockClaims := &validator.ValidatedClaims{
			CustomClaims: customClaims,
		}

		// Store in context the same way the real middleware does
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

func TestCreateUser(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)

	tests := []struct {
		name           string
		auth0ID        string
		email          string
		userName       string
		phone          string
		role           string
		accessToken    string
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Successfully create customer from Auth0 userinfo",
			auth0ID:        "auth0|customer1",
			email:          "customer1@example.com",
			userName:       "Customer One",
			phone:          "+15550001111",
			role:           "customer",
			accessToken:    "token-customer1",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "auth0|customer1", data["auth0_id"])
				assert.Equal(t, "Customer One", data["name"])
				assert.Equal(t, "customer1@example.com", data["email"])
				assert.Equal(t, "+15550001111", data["phone"])
				assert.Equal(t, "customer", data["role"])
			},
		},
		{
			name:           "Successfully create admin from role claim",
			auth0ID:        "auth0|admin1",
			email:          "admin1@example.com",
			userName:       "Admin One",
			role:           "admin",
			accessToken:    "token-admin1",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "admin", data["role"])
			},
		},
		{
			name:           "Fail when Auth0 returns no email",
			auth0ID:        "auth0|noemail",
			email:          "",
			userName:       "No Email",
			role:           "customer",
			accessToken:    "token-noemail",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_EMAIL",
		},
		{
			name:           "Fail when Auth0 returns no name",
			auth0ID:        "auth0|noname",
			email:          "noname@example.com",
			userName:       "",
			role:           "customer",
			accessToken:    "token-noname",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_NAME",
		},
	}

	// Build the userinfo map for the mock Auth0 server
	userInfoMap := map[string]*services.Auth0UserInfo{}
	for _, tt := range tests {
		userInfoMap[tt.accessToken] = &services.Auth0UserInfo{
			Sub:   tt.auth0ID,
			Email: tt.email,
			Name:  tt.userName,
			Phone: tt.phone,
		}
	}

	mockServer := setupMockAuth0Server(userInfoMap)
	defer mockServer.Close()

	// Point the Auth0 domain at the mock server
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup router
			router := setupTestRouter()
			router.POST("/users",
				mockAuthMiddleware(tt.auth0ID, tt.role, tt.accessToken),
				CreateUser,
			)

			// Execute request
			req, _ := http.NewRequest(http.MethodPost, "/users", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Assert status code
			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)

	userInfoMap := map[string]*services.Auth0UserInfo{
		"token-dup": {
			Sub:   "auth0|dup",
			Email: "dup@example.com",
			Name:  "Dup User",
		},
	}
	mockServer := setupMockAuth0Server(userInfoMap)
	defer mockServer.Close()
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	router := setupTestRouter()
	router.POST("/users",
		mockAuthMiddleware("auth0|dup", "customer", "token-dup"),
		CreateUser,
	)

	// First creation succeeds
	req, _ := http.NewRequest(http.MethodPost, "/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Second creation with the same Auth0 ID conflicts
	req, _ = http.NewRequest(http.MethodPost, "/users", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "USER_EXISTS", errorData["code"])

	// Only one row exists
	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetCurrentUser(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)

	user := models.User{
		Auth0ID: "auth0|me",
		Name:    "Me User",
		Email:   "me@example.com",
		Phone:   "+15550002222",
		Role:    "customer",
	}
	db.Create(&user)

	tests := []struct {
		name           string
		auth0ID        string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Successfully fetch own profile",
			auth0ID:        user.Auth0ID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Fail when no profile exists yet",
			auth0ID:        "auth0|stranger",
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/users/me",
				mockAuthMiddleware(tt.auth0ID, "customer", "mock-token"),
				GetCurrentUser,
			)

			req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, user.Email, data["email"])
			assert.Equal(t, user.Name, data["name"])
		})
	}
}

func TestGetCurrentUser_WithoutAuth(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	// No auth middleware, so user_id is missing from the context
	router := setupTestRouter()
	router.GET("/users/me", GetCurrentUser)

	req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.False(t, response["success"].(bool))
}

func TestUpdateCurrentUser(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)

	user := models.User{
		Auth0ID: "auth0|update",
		Name:    "Before Name",
		Email:   "before@example.com",
		Role:    "customer",
	}
	db.Create(&user)

	other := models.User{
		Auth0ID: "auth0|other",
		Name:    "Other User",
		Email:   "taken@example.com",
		Role:    "customer",
	}
	db.Create(&other)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkDB        func(t *testing.T)
	}{
		{
			name: "Successfully update name and phone",
			requestBody: map[string]interface{}{
				"name":  "After Name",
				"phone": "+15550003333",
			},
			expectedStatus: http.StatusOK,
			checkDB: func(t *testing.T) {
				var updated models.User
				db.First(&updated, user.ID)
				assert.Equal(t, "After Name", updated.Name)
				assert.Equal(t, "+15550003333", updated.Phone)
				assert.Equal(t, "before@example.com", updated.Email)
			},
		},
		{
			name: "Fail with invalid email format",
			requestBody: map[string]interface{}{
				"email": "not-an-email",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with already taken email",
			requestBody: map[string]interface{}{
				"email": other.Email,
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "EMAIL_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.PATCH("/users/me",
				mockAuthMiddleware(user.Auth0ID, "customer", "mock-token"),
				UpdateCurrentUser,
			)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPatch, "/users/me", bytes.NewBuffer(body))
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

			if tt.checkDB != nil {
				tt.checkDB(t)
			}
		})
	}
}
