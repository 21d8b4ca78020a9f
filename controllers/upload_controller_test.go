package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toolrent/toolrent-api/utils"
)

func TestGetUploadedPhoto(t *testing.T) {
	// Redirect uploads into a temp dir with one known photo
	tempDir, err := os.MkdirTemp("", "uploads")
	assert.NoError(t, err)
	defer os.RemoveAll(tempDir)

	originalDir := utils.UploadDir
	utils.UploadDir = tempDir
	defer func() { utils.UploadDir = originalDir }()

	content := []byte("fake-png-content")
	err = os.WriteFile(filepath.Join(tempDir, "photo.png"), content, 0644)
	assert.NoError(t, err)

	tests := []struct {
		name           string
		filename       string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Serve existing photo",
			filename:       "photo.png",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown photo",
			filename:       "missing.png",
			expectedStatus: http.StatusNotFound,
			expectedError:  "FILE_NOT_FOUND",
		},
		{
			name:           "Non-PNG extension",
			filename:       "photo.txt",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_FILE_TYPE",
		},
		{
			// Dotted filenames are caught by our validation
			name:           "Dots in filename are blocked",
			filename:       "..secret.png",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_FILENAME",
		},
		{
			// Slashes never reach the handler; gin treats them as path
			// separators and the route does not match
			name:           "Parent directory traversal",
			filename:       "../../etc/passwd",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/uploads/:filename", GetUploadedPhoto)

			req, _ := http.NewRequest(http.MethodGet, "/uploads/"+tt.filename, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
				assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
				assert.Equal(t, content, w.Body.Bytes())
			}

			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
		})
	}
}
