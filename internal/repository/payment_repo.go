package repository

import (
	"context"
	"errors"

	"gigbook/internal/model"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("支付凭证不存在")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// GetPendingByBookingID 查询预约名下待核验的凭证，不存在时返回 nil
func (r *PaymentRepository) GetPendingByBookingID(ctx context.Context, bookingID int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, model.PaymentStatusUploaded).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// UpdateStatus 条件更新，语义与预约状态变更一致：终态不可回退，竞争失败返回 ErrStatusConflict
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error {
	if !model.CanPaymentTransition(fromStatus, toStatus) {
		return ErrTransitionInvalid
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus

	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
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

func (r *PaymentRepository) SumVerified(ctx context.Context, bookingID int64, paymentType string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("booking_id = ? AND type = ? AND status = ?", bookingID, paymentType, model.PaymentStatusVerified).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
