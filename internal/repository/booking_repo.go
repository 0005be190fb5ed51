package repository

import (
	"context"
	"errors"
	"time"

	"gigbook/internal/model"

	"gorm.io/gorm"
)

var (
	ErrBookingNotFound   = errors.New("预约不存在")
	ErrTransitionInvalid = errors.New("预约状态不允许该变更")
	ErrStatusConflict    = errors.New("状态已被并发变更，请重试")
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByRefCode(ctx context.Context, refCode string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).Where("ref_code = ?", refCode).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus 条件更新：仅当当前状态等于 fromStatus 时才生效
// RowsAffected == 0 说明并发竞争中落败（或前置查询后状态已变），返回 ErrStatusConflict
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error {
	if !model.CanBookingTransition(fromStatus, toStatus) {
		return ErrTransitionInvalid
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus

	result := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// MarkDepositPaid 定金核验通过后置位，不改变预约状态
func (r *BookingRepository) MarkDepositPaid(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Update("deposit_paid", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListStale 查询超期仍未上传定金凭证的预约
// 仅限 PENDING_DEPOSIT 且名下没有任何待核验凭证的记录
func (r *BookingRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.BookingStatusPendingDeposit, before).
		Where("NOT EXISTS (SELECT 1 FROM payment WHERE payment.booking_id = booking.id AND payment.status = ?)",
			model.PaymentStatusUploaded).
		Order("created_at ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) ListForUser(ctx context.Context, userID int64, role string, page, pageSize int) ([]*model.Booking, int64, error) {
	var bookings []*model.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Booking{})
	switch role {
	case model.RolePerformer:
		query = query.Where("performer_id = ?", userID)
	case model.RoleAdmin:
		// 管理员可见全部
	default:
		query = query.Where("client_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&bookings).Error

	return bookings, total, err
}
