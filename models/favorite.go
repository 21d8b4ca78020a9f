package models

import "time"

// Favorite marks a tool as saved by a user. A user can favorite a tool
// at most once.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_tool" json:"user_id"`
	ToolID    uint      `gorm:"not null;uniqueIndex:idx_user_tool" json:"tool_id"`
	Tool      *Tool     `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Favorite model
func (Favorite) TableName() string {
	return "favorites"
}
