package model

import (
	"time"
)

const (
	BookingStatusPendingDeposit  = "PENDING_DEPOSIT"
	BookingStatusPendingApproval = "PENDING_APPROVAL"
	BookingStatusApproved        = "APPROVED"
	BookingStatusConfirmed       = "CONFIRMED"
	BookingStatusCompleted       = "COMPLETED"
	BookingStatusRejected        = "REJECTED"
	BookingStatusCancelled       = "CANCELLED"
)

// ValidBookingTransitions 预约状态机
// 主链路：PENDING_DEPOSIT -> PENDING_APPROVAL -> APPROVED -> CONFIRMED -> COMPLETED
// 任意非终态都可以转到 REJECTED / CANCELLED
var ValidBookingTransitions = map[string][]string{
	BookingStatusPendingDeposit:  {BookingStatusPendingApproval, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusPendingApproval: {BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusApproved:        {BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusConfirmed:       {BookingStatusCompleted, BookingStatusRejected, BookingStatusCancelled},
}

func CanBookingTransition(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidBookingTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// IsBookingTerminal 终态判断：终态的预约不允许任何后续变更
func IsBookingTerminal(status string) bool {
	switch status {
	case BookingStatusCompleted, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RefCode     string `gorm:"type:varchar(64);uniqueIndex;not null" json:"ref_code"` // 预约编号，创建后不可变
	ClientID    int64  `gorm:"index;not null" json:"client_id"`
	PerformerID int64  `gorm:"index;not null" json:"performer_id"`
	ServiceID   int64  `gorm:"index;not null" json:"service_id"`

	EventAt         time.Time `gorm:"not null" json:"event_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Venue           string    `gorm:"type:varchar(256);not null" json:"venue"`

	// 金额在创建时一次性算定，后续读取不再重算
	TotalAmount     float64  `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DepositAmount   float64  `gorm:"type:decimal(10,2);not null" json:"deposit_amount"`
	DepositPercent  float64  `gorm:"type:decimal(5,2);not null" json:"deposit_percent"`
	ReferralAmount  *float64 `gorm:"type:decimal(10,2)" json:"referral_amount,omitempty"`
	ReferralPercent *float64 `gorm:"type:decimal(5,2)" json:"referral_percent,omitempty"`
	DepositPaid     bool     `gorm:"not null;default:false" json:"deposit_paid"`

	Status             string `gorm:"type:varchar(20);index;not null" json:"status"`
	CancellationReason string `gorm:"type:varchar(256)" json:"cancellation_reason,omitempty"`

	// 每个里程碑时间戳只设置一次
	ApprovedAt  *time.Time `json:"approved_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string {
	return "booking"
}
