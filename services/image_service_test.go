package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/toolrent/toolrent-api/utils"
)

func createImageFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	assert.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["image"][0]
}

func TestImageService_UploadValidatesFormat(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := InitImageService(mockS3)
	defer SetImageService(nil)

	// PNG goes through to the bucket
	key, err := svc.UploadImage(createImageFileHeader(t, "drill.png", []byte("png-bytes")))
	assert.NoError(t, err)
	assert.Equal(t, "tools/mock_drill.png", key)
	assert.True(t, mockS3.FileExists(key))

	// Anything else is rejected before touching storage
	_, err = svc.UploadImage(createImageFileHeader(t, "drill.jpg", []byte("jpg-bytes")))
	assert.Error(t, err)
	uploadErr, ok := err.(*utils.FileUploadError)
	assert.True(t, ok)
	assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
	assert.False(t, mockS3.FileExists("tools/mock_drill.jpg"))
}

func TestImageService_GetImageURL(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := InitImageService(mockS3)
	defer SetImageService(nil)

	// No image means no URL and no error
	url, err := svc.GetImageURL("")
	assert.NoError(t, err)
	assert.Empty(t, url)

	key, err := svc.UploadImage(createImageFileHeader(t, "saw.png", []byte("png-bytes")))
	assert.NoError(t, err)

	url, err = svc.GetImageURL(key)
	assert.NoError(t, err)
	assert.Contains(t, url, key)
}

func TestImageService_DeleteRefusesForeignKeys(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := InitImageService(mockS3)
	defer SetImageService(nil)

	key, err := svc.UploadImage(createImageFileHeader(t, "sander.png", []byte("png-bytes")))
	assert.NoError(t, err)

	// Keys outside the tool image prefix are not deletable here
	err = svc.DeleteImage("avatars/someone.png")
	assert.Error(t, err)

	// Empty key is a no-op
	assert.NoError(t, svc.DeleteImage(""))

	// Tool image keys are
	assert.NoError(t, svc.DeleteImage(key))
	assert.False(t, mockS3.FileExists(key))
}
