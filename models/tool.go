package models

import (
	"time"

	"gorm.io/gorm"
)

// Brand represents a tool manufacturer
type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Brand model
func (Brand) TableName() string {
	return "brands"
}

// Tool represents a rentable tool in the catalog.
// InStockCount is the stock ledger for the tool; it must never go negative.
// All decrements go through the order service's conditional update.
type Tool struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	Price        float64        `gorm:"not null;check:price >= 0" json:"price"`
	InStockCount int            `gorm:"not null;default:0;check:in_stock_count >= 0" json:"in_stock_count"`
	Bookable     bool           `gorm:"not null;default:true" json:"bookable"`
	BrandID      *uint          `gorm:"index" json:"brand_id,omitempty"`
	Brand        *Brand         `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	ImageS3Key   *string        `json:"image_s3_key,omitempty"`           // nullable, S3 key for uploaded image
	ImageURL     *string        `gorm:"-" json:"image_url,omitempty"`     // computed field, presigned URL for image
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Tool model
func (Tool) TableName() string {
	return "tools"
}
