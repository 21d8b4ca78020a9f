package services

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/toolrent/toolrent-api/utils"
)

// toolImageKeyPrefix is the key space tool images live under in the bucket.
// Keys outside it belong to other uploads and must never be touched here.
const toolImageKeyPrefix = "tools/"

// ImageService handles catalog tool images: upload to object storage,
// presigned read URLs, and replacement cleanup
type ImageService interface {
	// UploadImage validates a tool image (PNG only, size-capped) and uploads
	// it, returning the storage key
	UploadImage(fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for reading an uploaded tool image
	GetImageURL(imageKey string) (string, error)

	// DeleteImage removes a tool image from storage
	DeleteImage(imageKey string) error
}

// ToolImageService implements ImageService on top of the S3 service
type ToolImageService struct {
	s3Service S3Interface
}

var imageServiceInstance ImageService

// InitImageService initializes the tool image service with an S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = &ToolImageService{
		s3Service: s3Service,
	}
	return imageServiceInstance
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadImage validates a tool image and uploads it to S3. Validation rules
// are the shared upload rules: PNG extension, size under the cap.
func (s *ToolImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload tool image: %w", err)
	}

	return s3Key, nil
}

// GetImageURL generates a presigned URL for reading a tool image. An empty
// key means the tool has no image and yields an empty URL, not an error.
func (s *ToolImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate tool image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes a tool image from S3. Only keys under the tool image
// prefix are deletable through this service.
func (s *ToolImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if !strings.HasPrefix(imageKey, toolImageKeyPrefix) {
		return fmt.Errorf("refusing to delete non-tool-image key %q", imageKey)
	}

	if err := s.s3Service.DeleteFile(imageKey); err != nil {
		return fmt.Errorf("failed to delete tool image: %w", err)
	}

	return nil
}
