package repository

import (
	"context"
	"errors"

	"gigbook/internal/model"

	"gorm.io/gorm"
)

// DenylistStore 黑名单查询协作者
type DenylistStore interface {
	FindActiveDenylistMatch(ctx context.Context, email, phone string) (*model.DenylistEntry, error)
}

type DenylistRepository struct {
	db *gorm.DB
}

func NewDenylistRepository(db *gorm.DB) *DenylistRepository {
	return &DenylistRepository{db: db}
}

// FindActiveDenylistMatch 邮箱或手机号任一命中即返回条目，未命中返回 nil
func (r *DenylistRepository) FindActiveDenylistMatch(ctx context.Context, email, phone string) (*model.DenylistEntry, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)

	switch {
	case email != "" && phone != "":
		query = query.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		query = query.Where("email = ?", email)
	case phone != "":
		query = query.Where("phone = ?", phone)
	default:
		return nil, nil
	}

	var entry model.DenylistEntry
	err := query.First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
