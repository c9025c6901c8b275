package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Equipment categories (closed enumeration)
var Categories = []string{
	"Electronics", "Machinery", "Tools", "Vehicles",
	"IT Equipment", "Medical", "Laboratory", "Other",
}

// Equipment lifecycle statuses
var Statuses = []string{"Active", "Inactive", "Under Maintenance", "Retired"}

const (
	DefaultCategory            = "Other"
	DefaultStatus              = "Active"
	DefaultServiceIntervalDays = 90
)

// Equipment represents a tracked physical asset and its maintenance metadata
type Equipment struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	Title       string `json:"title" gorm:"size:150;not null"`
	Model       string `json:"model" gorm:"size:150;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	// SerialNumber is globally unique when present; NULL rows are exempt
	// from the unique index.
	SerialNumber *string `json:"serial_number,omitempty" gorm:"uniqueIndex;size:100"`
	Category     string  `json:"category" gorm:"size:50;default:'Other'"`
	Location     string  `json:"location,omitempty" gorm:"size:150"`
	Status       string  `json:"status" gorm:"size:30;default:'Active'"`

	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice *float64   `json:"purchase_price,omitempty"`

	// Identity artifact: QRCode is the rendered PNG as a base64 data URL,
	// QRCodeData the canonical public URL encoded in it.
	QRCode     string `json:"qr_code" gorm:"type:text;not null"`
	QRCodeData string `json:"qr_code_data" gorm:"uniqueIndex;size:255;not null"`

	ServiceExpiryDate     *time.Time `json:"service_expiry_date,omitempty"`
	CalibrationExpiryDate *time.Time `json:"calibration_expiry_date,omitempty"`
	LastServiceDate       *time.Time `json:"last_service_date,omitempty"`
	ServiceIntervalDays   int        `json:"service_interval_days" gorm:"default:90"`
	// NotificationSent is true only once a reminder was dispatched for the
	// currently stored ServiceExpiryDate.
	NotificationSent bool `json:"notification_sent" gorm:"default:false"`

	ServiceHistory []ServiceEntry `json:"service_history" gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE"`

	// UserID is the owning account; immutable after creation.
	UserID string `json:"user_id" gorm:"size:36;not null;index"`
	Owner  *User  `json:"owner,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.Status == "" {
		e.Status = DefaultStatus
	}
	if e.ServiceIntervalDays == 0 {
		e.ServiceIntervalDays = DefaultServiceIntervalDays
	}
	return nil
}

// TableName specifies the table name for Equipment
func (Equipment) TableName() string {
	return "equipment"
}

// ServiceEntry is one immutable line of an equipment's service history.
// Entries are only ever appended, never edited or deleted.
type ServiceEntry struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	EquipmentID string     `json:"-" gorm:"size:36;not null;index"`
	ServiceDate time.Time  `json:"service_date" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	PerformedBy string     `json:"performed_by,omitempty" gorm:"size:150"`
	Cost        *float64   `json:"cost,omitempty"`
	Notes       string     `json:"notes,omitempty" gorm:"type:text"`
	RecordedAt  time.Time  `json:"recorded_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for ServiceEntry
func (ServiceEntry) TableName() string {
	return "service_entries"
}

// EquipmentCreate represents the create request
type EquipmentCreate struct {
	Title                 string     `json:"title" validate:"required,max=150"`
	Model                 string     `json:"model" validate:"required,max=150"`
	Description           string     `json:"description" validate:"required"`
	SerialNumber          string     `json:"serial_number" validate:"omitempty,max=100"`
	Category              string     `json:"category" validate:"omitempty,oneof=Electronics Machinery Tools Vehicles 'IT Equipment' Medical Laboratory Other"`
	Location              string     `json:"location" validate:"omitempty,max=150"`
	Status                string     `json:"status" validate:"omitempty,oneof=Active Inactive 'Under Maintenance' Retired"`
	PurchaseDate          *time.Time `json:"purchase_date"`
	PurchasePrice         *float64   `json:"purchase_price" validate:"omitempty,gte=0"`
	ServiceExpiryDate     *time.Time `json:"service_expiry_date"`
	CalibrationExpiryDate *time.Time `json:"calibration_expiry_date"`
	ServiceIntervalDays   int        `json:"service_interval_days" validate:"omitempty,gt=0"`
}

// EquipmentUpdate represents a partial update; nil pointers mean "leave as is".
type EquipmentUpdate struct {
	Title                 *string    `json:"title" validate:"omitempty,min=1,max=150"`
	Model                 *string    `json:"model" validate:"omitempty,min=1,max=150"`
	Description           *string    `json:"description" validate:"omitempty,min=1"`
	SerialNumber          *string    `json:"serial_number" validate:"omitempty,max=100"`
	Category              *string    `json:"category" validate:"omitempty,oneof=Electronics Machinery Tools Vehicles 'IT Equipment' Medical Laboratory Other"`
	Location              *string    `json:"location" validate:"omitempty,max=150"`
	Status                *string    `json:"status" validate:"omitempty,oneof=Active Inactive 'Under Maintenance' Retired"`
	PurchaseDate          *time.Time `json:"purchase_date"`
	PurchasePrice         *float64   `json:"purchase_price" validate:"omitempty,gte=0"`
	ServiceExpiryDate     *time.Time `json:"service_expiry_date"`
	CalibrationExpiryDate *time.Time `json:"calibration_expiry_date"`
	ServiceIntervalDays   *int       `json:"service_interval_days" validate:"omitempty,gt=0"`
}

// ServiceEntryInput represents an append-service-history request
type ServiceEntryInput struct {
	ServiceDate time.Time `json:"service_date" validate:"required"`
	Description string    `json:"description" validate:"required"`
	PerformedBy string    `json:"performed_by" validate:"omitempty,max=150"`
	Cost        *float64  `json:"cost" validate:"omitempty,gte=0"`
	Notes       string    `json:"notes"`
}

// DashboardStats summarizes one owner's inventory.
type DashboardStats struct {
	TotalEquipment   int64 `json:"total_equipment"`
	ActiveEquipment  int64 `json:"active_equipment"`
	UnderMaintenance int64 `json:"under_maintenance"`
	UpcomingService  int64 `json:"upcoming_service"`
	OverdueService   int64 `json:"overdue_service"`
}
