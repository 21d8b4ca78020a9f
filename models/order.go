package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// PaymentMethod represents a way an order can be paid (cash, card, ...)
type PaymentMethod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PaymentMethod model
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// Order represents a tool rental / worker booking order
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status          string         `gorm:"not null;default:'pending'" json:"status"`         // pending, confirmed, completed, cancelled
	Date            time.Time      `gorm:"not null" json:"date"`                             // when the order is scheduled for
	Address         *string        `json:"address,omitempty"`
	OverallPrice    float64        `gorm:"not null" json:"overall_price"`
	PaymentMethodID uint           `gorm:"not null;index" json:"payment_method_id"`
	PaymentMethod   *PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`
	PaymentStatus   string         `gorm:"not null;default:'pending'" json:"payment_status"` // pending, paid, failed
	WithDelivery    bool           `gorm:"not null;default:false" json:"with_delivery"`
	DeliveryComment *string        `json:"delivery_comment,omitempty"`
	Longitude       *float64       `json:"longitude,omitempty"`
	Latitude        *float64       `json:"latitude,omitempty"`
	OrderTools      []OrderTool    `gorm:"foreignKey:OrderID" json:"order_tools"`
	OrderWorkers    []OrderWorker  `gorm:"foreignKey:OrderID" json:"order_workers"`
	Comments        []Comment      `gorm:"foreignKey:OrderID" json:"comments"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderTool is a join row attaching a tool-line to an order.
// Price is the tool price at order time, not a live reference.
type OrderTool struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ToolID    uint      `gorm:"not null;index" json:"tool_id"`
	Tool      *Tool     `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
	Count     int       `gorm:"not null;check:count > 0" json:"count"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderTool model
func (OrderTool) TableName() string {
	return "order_tools"
}

// OrderWorker is a join row attaching a worker-line to an order: how many
// workers of which proficiency and level are requested, and for how long.
type OrderWorker struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	OrderID       uint               `gorm:"not null;index" json:"order_id"`
	ProficiencyID uint               `gorm:"not null;index" json:"proficiency_id"`
	Proficiency   *WorkerProficiency `gorm:"foreignKey:ProficiencyID" json:"proficiency,omitempty"`
	LevelID       uint               `gorm:"not null;index" json:"level_id"`
	Level         *WorkerLevel       `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	Count         int                `gorm:"not null;check:count > 0" json:"count"`
	WithTools     bool               `gorm:"not null;default:false" json:"with_tools"`
	Time          int                `gorm:"not null" json:"time"`                     // amount of time in TimeUnit units
	TimeUnit      string             `gorm:"not null;default:'hour'" json:"time_unit"` // hour, day
	Price         float64            `gorm:"not null" json:"price"`
	CreatedAt     time.Time          `json:"created_at"`
}

// TableName specifies the table name for the OrderWorker model
func (OrderWorker) TableName() string {
	return "order_workers"
}

// Comment represents a note left on an order by its owner or an admin
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}
