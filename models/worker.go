package models

import "time"

// WorkerProficiency represents a trade a worker can be booked for
// (plumber, electrician, ...)
type WorkerProficiency struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the WorkerProficiency model
func (WorkerProficiency) TableName() string {
	return "worker_proficiencies"
}

// WorkerLevel represents a seniority level (beginner, experienced, master).
// Coefficient is the price multiplier applied for this level.
type WorkerLevel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Coefficient float64   `gorm:"not null;default:1" json:"coefficient"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the WorkerLevel model
func (WorkerLevel) TableName() string {
	return "worker_levels"
}

// Worker represents a real person who can be attached to an order worker-line.
// IsFree tracks availability; attaching a worker flips it to false and is
// enforced with a conditional update so a worker is never double-booked.
type Worker struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	FullName      string       `gorm:"not null" json:"fullname"`
	Phone         string       `gorm:"not null" json:"phone"`
	Address       string       `json:"address"`
	About         string       `json:"about"`
	Experience    int          `json:"experience"` // years
	TimeUnit      string       `gorm:"not null;default:'hour'" json:"time_unit"` // hour, day
	PricePerHour  *float64     `json:"price_per_hour,omitempty"`
	PricePerDay   *float64     `json:"price_per_day,omitempty"`
	LevelID       uint         `gorm:"not null;index" json:"level_id"`
	Level         *WorkerLevel `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	IsFree        bool         `gorm:"not null;default:true" json:"is_free"`
	PhotoFilename *string      `json:"photo_filename,omitempty"`     // local upload, served from /uploads
	PhotoURL      *string      `gorm:"-" json:"photo_url,omitempty"` // computed field
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the Worker model
func (Worker) TableName() string {
	return "workers"
}

// AttachedWorker links a concrete worker to an order worker-line
type AttachedWorker struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	OrderWorkerID uint         `gorm:"not null;index" json:"order_worker_id"`
	OrderWorker   *OrderWorker `gorm:"foreignKey:OrderWorkerID" json:"order_worker,omitempty"`
	WorkerID      uint         `gorm:"not null;index" json:"worker_id"`
	Worker        *Worker      `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TableName specifies the table name for the AttachedWorker model
func (AttachedWorker) TableName() string {
	return "attached_workers"
}
