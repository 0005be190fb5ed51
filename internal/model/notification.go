package model

import (
	"time"
)

const (
	NotifyTypeBookingCreated   = "BOOKING_CREATED"
	NotifyTypeDepositUploaded  = "DEPOSIT_UPLOADED"
	NotifyTypeBookingApproved  = "BOOKING_APPROVED"
	NotifyTypeBookingRejected  = "BOOKING_REJECTED"
	NotifyTypeBookingConfirmed = "BOOKING_CONFIRMED"
	NotifyTypeBookingCancelled = "BOOKING_CANCELLED"
	NotifyTypeBookingCompleted = "BOOKING_COMPLETED"
	NotifyTypeDepositVerified  = "DEPOSIT_VERIFIED"
	NotifyTypeDepositRejected  = "DEPOSIT_REJECTED"
)

// Notification 站内通知，已读 30 天后由保留期任务清理
type Notification struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientID int64  `gorm:"index;not null" json:"recipient_id"`
	Type        string `gorm:"type:varchar(32);not null" json:"type"`
	Title       string `gorm:"type:varchar(128);not null" json:"title"`
	Message     string `gorm:"type:varchar(512);not null" json:"message"`
	EntityType  string `gorm:"type:varchar(32)" json:"entity_type,omitempty"`
	EntityID    *int64 `json:"entity_id,omitempty"`
	Read        bool   `gorm:"index;not null;default:false" json:"read"`

	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notification"
}
