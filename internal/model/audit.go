package model

import (
	"time"
)

// ============================================================================
// 审计动作常量
// ============================================================================

const (
	AuditActionUserRegistered     = "USER_REGISTERED"
	AuditActionRegisterBlocked    = "REGISTRATION_BLOCKED"
	AuditActionBookingCreated     = "BOOKING_CREATED"
	AuditActionBookingBlocked     = "BOOKING_BLOCKED"
	AuditActionDepositUploaded    = "DEPOSIT_UPLOADED"
	AuditActionDepositUploadFail  = "DEPOSIT_UPLOAD_FAILED"
	AuditActionBookingApproved    = "BOOKING_APPROVED"
	AuditActionBookingRejected    = "BOOKING_REJECTED"
	AuditActionBookingConfirmed   = "BOOKING_CONFIRMED"
	AuditActionBookingCompleted   = "BOOKING_COMPLETED"
	AuditActionDepositVerified    = "DEPOSIT_VERIFIED"
	AuditActionDepositRejected    = "DEPOSIT_REJECTED"
	AuditActionAutoCancelledStale = "AUTO_CANCELLED_STALE"
)

const (
	EntityTypeBooking = "BOOKING"
	EntityTypePayment = "PAYMENT"
	EntityTypeUser    = "USER"
)

// AuditLog 审计日志表
// 记录谁在什么时间、从哪里、对哪个实体做了什么，是事后追溯的核心依据
//
// 【重要】审计表设计原则：
// 1. 只追加，不修改，不删除 —— 唯一的例外是保留期清理任务（90 天）
// 2. Security 标记的记录不参与保留期清理
// 3. 系统触发的动作 ActorID 为空
type AuditLog struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    *int64 `gorm:"index" json:"actor_id"`
	Action     string `gorm:"type:varchar(64);index;not null" json:"action"`
	EntityType string `gorm:"type:varchar(32);index;not null" json:"entity_type"`
	EntityID   *int64 `gorm:"index" json:"entity_id"`
	Changes    string `gorm:"type:text" json:"changes"` // 结构化变更内容（JSON）
	IPAddress  string `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent  string `gorm:"type:varchar(256)" json:"user_agent,omitempty"`
	Security   bool   `gorm:"not null;default:false" json:"security"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
