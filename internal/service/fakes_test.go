package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gigbook/internal/config"
	"gigbook/internal/model"
	"gigbook/internal/repository"
)

// ============================================================================
// 内存版协作者，引擎测试不依赖 MySQL / Redis
// ============================================================================

type fakeStore struct {
	mu            sync.Mutex
	bookings      map[int64]*model.Booking
	payments      map[int64]*model.Payment
	outbox        []*model.OutboxMessage
	nextBookingID int64
	nextPaymentID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[int64]*model.Booking),
		payments: make(map[int64]*model.Payment),
	}
}

// InTx 内存实现没有真正的回滚；引擎的写入顺序保证条件更新先行，
// 竞争失败发生在任何其它写入之前
func (s *fakeStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(s)
}

func (s *fakeStore) CreateBooking(ctx context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBookingID++
	booking.ID = s.nextBookingID
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil
}

func (s *fakeStore) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (s *fakeStore) GetBookingByRef(ctx context.Context, refCode string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, booking := range s.bookings {
		if booking.RefCode == refCode {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *fakeStore) UpdateBookingStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error {
	if !model.CanBookingTransition(fromStatus, toStatus) {
		return repository.ErrTransitionInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok || booking.Status != fromStatus {
		return repository.ErrStatusConflict
	}
	booking.Status = toStatus
	for key, value := range updates {
		switch key {
		case "approved_at":
			booking.ApprovedAt = value.(*time.Time)
		case "confirmed_at":
			booking.ConfirmedAt = value.(*time.Time)
		case "cancelled_at":
			booking.CancelledAt = value.(*time.Time)
		case "completed_at":
			booking.CompletedAt = value.(*time.Time)
		case "cancellation_reason":
			booking.CancellationReason = value.(string)
		default:
			return fmt.Errorf("未知更新字段: %s", key)
		}
	}
	return nil
}

func (s *fakeStore) MarkDepositPaid(ctx context.Context, bookingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	booking.DepositPaid = true
	return nil
}

func (s *fakeStore) ListStaleBookings(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []*model.Booking
	for _, booking := range s.bookings {
		if booking.Status == model.BookingStatusPendingDeposit && booking.CreatedAt.Before(before) {
			copied := *booking
			stale = append(stale, &copied)
			if len(stale) >= limit {
				break
			}
		}
	}
	return stale, nil
}

func (s *fakeStore) ListBookingsForUser(ctx context.Context, userID int64, role string, page, pageSize int) ([]*model.Booking, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*model.Booking
	for _, booking := range s.bookings {
		switch role {
		case model.RoleClient:
			if booking.ClientID != userID {
				continue
			}
		case model.RolePerformer:
			if booking.PerformerID != userID {
				continue
			}
		}
		copied := *booking
		list = append(list, &copied)
	}
	return list, int64(len(list)), nil
}

func (s *fakeStore) CreatePayment(ctx context.Context, payment *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPaymentID++
	payment.ID = s.nextPaymentID
	copied := *payment
	s.payments[payment.ID] = &copied
	return nil
}

func (s *fakeStore) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *fakeStore) GetPendingPayment(ctx context.Context, bookingID int64) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, payment := range s.payments {
		if payment.BookingID == bookingID && payment.Status == model.PaymentStatusUploaded {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpdatePaymentStatus(ctx context.Context, id int64, fromStatus, toStatus string, updates map[string]interface{}) error {
	if !model.CanPaymentTransition(fromStatus, toStatus) {
		return repository.ErrTransitionInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[id]
	if !ok || payment.Status != fromStatus {
		return repository.ErrStatusConflict
	}
	payment.Status = toStatus
	for key, value := range updates {
		switch key {
		case "verified_at":
			payment.VerifiedAt = value.(*time.Time)
		case "notes":
			payment.Notes = value.(string)
		default:
			return fmt.Errorf("未知更新字段: %s", key)
		}
	}
	return nil
}

func (s *fakeStore) SumVerifiedPayments(ctx context.Context, bookingID int64, paymentType string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, payment := range s.payments {
		if payment.BookingID == bookingID && payment.Type == paymentType && payment.Status == model.PaymentStatusVerified {
			sum += payment.Amount
		}
	}
	return sum, nil
}

func (s *fakeStore) CreateOutboxMessage(ctx context.Context, msg *model.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *msg
	s.outbox = append(s.outbox, &copied)
	return nil
}

func (s *fakeStore) outboxEventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []string
	for _, msg := range s.outbox {
		types = append(types, msg.EventType)
	}
	return types
}

type fakeUsers struct {
	mu       sync.Mutex
	users    map[int64]*model.User
	services map[int64]*model.Service
	offers   map[[2]int64]*model.PerformerService
	nextID   int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:    make(map[int64]*model.User),
		services: make(map[int64]*model.Service),
		offers:   make(map[[2]int64]*model.PerformerService),
	}
}

func (s *fakeUsers) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return nil
}

func (s *fakeUsers) GetUser(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUsers) GetService(ctx context.Context, id int64) (*model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok || !svc.Active {
		return nil, repository.ErrServiceNotFound
	}
	return svc, nil
}

func (s *fakeUsers) GetPerformerService(ctx context.Context, performerID, serviceID int64) (*model.PerformerService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offer, ok := s.offers[[2]int64{performerID, serviceID}]
	if !ok || !offer.Active {
		return nil, repository.ErrOfferNotFound
	}
	return offer, nil
}

func (s *fakeUsers) ListAdminIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, user := range s.users {
		if user.Role == model.RoleAdmin && user.Active {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []*model.AuditLog
}

func (s *fakeAudit) CreateAuditLog(ctx context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeAudit) DeleteExpiredAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*model.AuditLog
	var deleted int64
	for _, entry := range s.entries {
		if !entry.Security && entry.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept
	return deleted, nil
}

// lastAction 按动作查找最后一条记录，找不到返回 nil
func (s *fakeAudit) lastAction(action string) *model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Action == action {
			return s.entries[i]
		}
	}
	return nil
}

type fakeNotifications struct {
	mu      sync.Mutex
	rows    []*model.Notification
	failFor map[int64]error // 指定接收方写入失败，用于隔离性测试
	nextID  int64
}

func (s *fakeNotifications) CreateNotification(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[n.RecipientID]; ok {
		return err
	}
	s.nextID++
	n.ID = s.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, n)
	return nil
}

func (s *fakeNotifications) ListNotifications(ctx context.Context, recipientID int64, page, pageSize int) ([]*model.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*model.Notification
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			list = append(list, n)
		}
	}
	return list, int64(len(list)), nil
}

func (s *fakeNotifications) MarkNotificationRead(ctx context.Context, id, recipientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.ID == id && n.RecipientID == recipientID {
			now := time.Now()
			n.Read = true
			n.ReadAt = &now
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (s *fakeNotifications) DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*model.Notification
	var deleted int64
	for _, n := range s.rows {
		if n.Read && n.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.rows = kept
	return deleted, nil
}

func (s *fakeNotifications) countFor(recipientID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			count++
		}
	}
	return count
}

type fakeDenylist struct {
	entries []*model.DenylistEntry
}

func (s *fakeDenylist) FindActiveDenylistMatch(ctx context.Context, email, phone string) (*model.DenylistEntry, error) {
	for _, entry := range s.entries {
		if !entry.Active {
			continue
		}
		if email != "" && entry.Email == email {
			return entry, nil
		}
		if phone != "" && entry.Phone == phone {
			return entry, nil
		}
	}
	return nil, nil
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []int64
	failFor map[int64]error
}

func (t *fakeTransport) Send(ctx context.Context, recipient *model.User, title, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.failFor[recipient.ID]; ok {
		return err
	}
	t.sent = append(t.sent, recipient.ID)
	return nil
}

// ============================================================================
// 测试环境组装
// ============================================================================

type testEnv struct {
	cfg           *config.Config
	store         *fakeStore
	users         *fakeUsers
	audit         *fakeAudit
	notifications *fakeNotifications
	denylist      *fakeDenylist
	bookings      *BookingService

	client    *model.User
	performer *model.User
	admin     *model.User
	service   *model.Service
	offer     *model.PerformerService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Business.DepositPercentDefault = 15
	cfg.Business.StaleAfterHours = 24
	cfg.Business.SweepBatchSize = 100
	cfg.Kafka.Topic.BookingEvents = "booking_events"
	return cfg
}

func newTestEnv() *testEnv {
	cfg := testConfig()
	store := newFakeStore()
	users := newFakeUsers()
	audit := &fakeAudit{}
	notifications := &fakeNotifications{}
	denylist := &fakeDenylist{}

	auditSvc := NewAuditService(audit)
	notifySvc := NewNotifyService(notifications, users, nil)
	denylistSvc := NewDenylistService(denylist)
	bookings := NewBookingService(cfg, store, users, denylistSvc, auditSvc, notifySvc)

	env := &testEnv{
		cfg:           cfg,
		store:         store,
		users:         users,
		audit:         audit,
		notifications: notifications,
		denylist:      denylist,
		bookings:      bookings,
	}

	env.client = &model.User{Email: "client@example.com", Phone: "+61400000001", Name: "客户", Role: model.RoleClient, Active: true}
	env.performer = &model.User{Email: "performer@example.com", Phone: "+61400000002", Name: "表演者", Role: model.RolePerformer, Active: true}
	env.admin = &model.User{Email: "admin@example.com", Name: "管理员", Role: model.RoleAdmin, Active: true}
	users.CreateUser(context.Background(), env.client)
	users.CreateUser(context.Background(), env.performer)
	users.CreateUser(context.Background(), env.admin)

	env.service = &model.Service{ID: 1, Name: "现场演唱", BasePrice: 200, DurationMinutes: 60, Active: true}
	users.services[env.service.ID] = env.service
	env.offer = &model.PerformerService{PerformerID: env.performer.ID, ServiceID: env.service.ID, Active: true}
	users.offers[[2]int64{env.performer.ID, env.service.ID}] = env.offer

	return env
}

func (env *testEnv) clientActor() Actor {
	return Actor{ID: env.client.ID, Role: model.RoleClient, IPAddress: "10.0.0.1"}
}

func (env *testEnv) performerActor() Actor {
	return Actor{ID: env.performer.ID, Role: model.RolePerformer}
}

func (env *testEnv) adminActor() Actor {
	return Actor{ID: env.admin.ID, Role: model.RoleAdmin}
}

// createBooking 走正常入口建一条预约
func (env *testEnv) createBooking(t *testing.T) *model.Booking {
	t.Helper()
	booking, err := env.bookings.CreateBooking(context.Background(), env.clientActor(), &CreateBookingRequest{
		PerformerID: env.performer.ID,
		ServiceID:   env.service.ID,
		EventAt:     time.Now().Add(72 * time.Hour),
		Venue:       "Sydney Town Hall",
	})
	if err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}
	return booking
}
