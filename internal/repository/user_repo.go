package repository

import (
	"context"
	"errors"

	"gigbook/internal/model"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrServiceNotFound = errors.New("服务不存在")
	ErrOfferNotFound   = errors.New("表演者未提供该服务")
)

// UserStore 引擎消费的用户/服务目录查询协作者
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetService(ctx context.Context, id int64) (*model.Service, error)
	GetPerformerService(ctx context.Context, performerID, serviceID int64) (*model.PerformerService, error)
	ListAdminIDs(ctx context.Context) ([]int64, error)
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetService(ctx context.Context, id int64) (*model.Service, error) {
	var svc model.Service
	err := r.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (r *UserRepository) GetPerformerService(ctx context.Context, performerID, serviceID int64) (*model.PerformerService, error) {
	var offer model.PerformerService
	err := r.db.WithContext(ctx).
		Where("performer_id = ? AND service_id = ? AND active = ?", performerID, serviceID, true).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// ListAdminIDs 管理员广播列表：按角色取全部激活管理员，不做"取第一个"的假设
func (r *UserRepository) ListAdminIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role = ? AND active = ?", model.RoleAdmin, true).
		Pluck("id", &ids).Error
	return ids, err
}
