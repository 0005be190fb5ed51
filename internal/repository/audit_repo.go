package repository

import (
	"context"
	"time"

	"gigbook/internal/model"

	"gorm.io/gorm"
)

// AuditStore 审计记录协作者
type AuditStore interface {
	CreateAuditLog(ctx context.Context, entry *model.AuditLog) error
	DeleteExpiredAuditLogs(ctx context.Context, before time.Time) (int64, error)
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateAuditLog(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// DeleteExpiredAuditLogs 保留期清理：只删非安全类记录，零行删除不是错误
func (r *AuditRepository) DeleteExpiredAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND security = ?", before, false).
		Delete(&model.AuditLog{})
	return result.RowsAffected, result.Error
}
