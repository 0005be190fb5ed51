package model

import (
	"time"
)

const (
	RoleClient    = "CLIENT"
	RolePerformer = "PERFORMER"
	RoleAdmin     = "ADMIN"
)

type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email    string `gorm:"type:varchar(128);uniqueIndex;not null" json:"email"`
	Phone    string `gorm:"type:varchar(32);index" json:"phone"`
	Password string `gorm:"type:varchar(128);not null" json:"-"` // bcrypt 哈希
	Name     string `gorm:"type:varchar(128);not null" json:"name"`
	Role     string `gorm:"type:varchar(20);index;not null" json:"role"`
	Active   bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

// Service 平台服务目录（基础价、默认时长）
type Service struct {
	ID              int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string  `gorm:"type:varchar(128);not null" json:"name"`
	Description     string  `gorm:"type:varchar(512)" json:"description"`
	BasePrice       float64 `gorm:"type:decimal(10,2);not null" json:"base_price"`
	DurationMinutes int     `gorm:"not null" json:"duration_minutes"`
	Active          bool    `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Service) TableName() string {
	return "service"
}

// PerformerService 表演者提供的服务
// CustomPrice 优先于 Service.BasePrice；DepositPercent 优先于系统默认定金比例
type PerformerService struct {
	ID             int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PerformerID    int64    `gorm:"uniqueIndex:idx_performer_service,priority:1;not null" json:"performer_id"`
	ServiceID      int64    `gorm:"uniqueIndex:idx_performer_service,priority:2;not null" json:"service_id"`
	CustomPrice    *float64 `gorm:"type:decimal(10,2)" json:"custom_price,omitempty"`
	DepositPercent *float64 `gorm:"type:decimal(5,2)" json:"deposit_percent,omitempty"`
	Active         bool     `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PerformerService) TableName() string {
	return "performer_service"
}
