package repository

import (
	"context"
	"time"

	"gigbook/internal/model"

	"gorm.io/gorm"
)

// Store 生命周期引擎消费的持久化协作者
// 约定：UpdateXxxStatus 是条件更新（仅当前状态 = fromStatus 时生效），
// 竞争失败返回 ErrStatusConflict；InTx 内的所有写入同事务提交或回滚。
type Store interface {
	InTx(ctx context.Context, fn func(tx Store) error) error

	CreateBooking(ctx context.Context, booking *model.Booking) error
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	GetBookingByRef(ctx context.Context, refCode string) (*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error
	MarkDepositPaid(ctx context.Context, bookingID int64) error
	ListStaleBookings(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error)
	ListBookingsForUser(ctx context.Context, userID int64, role string, page, pageSize int) ([]*model.Booking, int64, error)

	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	GetPendingPayment(ctx context.Context, bookingID int64) (*model.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error
	SumVerifiedPayments(ctx context.Context, bookingID int64, paymentType string) (float64, error)

	CreateOutboxMessage(ctx context.Context, msg *model.OutboxMessage) error
}

// GormStore 基于 MySQL 的 Store 实现
type GormStore struct {
	db       *gorm.DB
	bookings *BookingRepository
	payments *PaymentRepository
	outbox   *OutboxRepository
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:       db,
		bookings: NewBookingRepository(db),
		payments: NewPaymentRepository(db),
		outbox:   NewOutboxRepository(db),
	}
}

// InTx 以数据库事务执行 fn，fn 内拿到的是绑定事务连接的 Store
func (s *GormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *GormStore) CreateBooking(ctx context.Context, booking *model.Booking) error {
	return s.bookings.Create(ctx, booking)
}

func (s *GormStore) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *GormStore) GetBookingByRef(ctx context.Context, refCode string) (*model.Booking, error) {
	return s.bookings.GetByRefCode(ctx, refCode)
}

func (s *GormStore) UpdateBookingStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error {
	return s.bookings.UpdateStatus(ctx, id, fromStatus, toStatus, updates)
}

func (s *GormStore) MarkDepositPaid(ctx context.Context, bookingID int64) error {
	return s.bookings.MarkDepositPaid(ctx, bookingID)
}

func (s *GormStore) ListStaleBookings(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
	return s.bookings.ListStale(ctx, before, limit)
}

func (s *GormStore) ListBookingsForUser(ctx context.Context, userID int64, role string, page, pageSize int) ([]*model.Booking, int64, error) {
	return s.bookings.ListForUser(ctx, userID, role, page, pageSize)
}

func (s *GormStore) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return s.payments.Create(ctx, payment)
}

func (s *GormStore) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *GormStore) GetPendingPayment(ctx context.Context, bookingID int64) (*model.Payment, error) {
	return s.payments.GetPendingByBookingID(ctx, bookingID)
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error {
	return s.payments.UpdateStatus(ctx, id, fromStatus, toStatus, updates)
}

func (s *GormStore) SumVerifiedPayments(ctx context.Context, bookingID int64, paymentType string) (float64, error) {
	return s.payments.SumVerified(ctx, bookingID, paymentType)
}

func (s *GormStore) CreateOutboxMessage(ctx context.Context, msg *model.OutboxMessage) error {
	return s.outbox.Create(ctx, nil, msg)
}
