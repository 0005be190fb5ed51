package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gigbook/internal/config"
	"gigbook/internal/model"
	"gigbook/internal/repository"
	"gigbook/pkg/apperr"
	"gigbook/pkg/idgen"
	"gigbook/pkg/money"
)

// ============================================================================
// 预约生命周期引擎
// ============================================================================
//
// 所有预约 / 支付凭证的状态变更只能经由本引擎的入口完成。
// 每个入口按同一顺序执行三类守卫：
//   1. 调用方身份与角色（能力表 Can）
//   2. 当前状态前置条件（状态机 + 条件更新兜底并发）
//   3. 数据前置条件（金额、时间、字段合法性）
// 任一守卫失败立即返回对应分类的错误，不产生任何写入。
//
// 状态写入与派生字段在同一事务内提交；审计与通知在提交之后触发，
// 它们的失败只记日志，不影响已提交的结果。金额在创建时一次性算定，
// 之后读取不重算。
//
// ============================================================================

type BookingService struct {
	cfg      *config.Config
	store    repository.Store
	users    repository.UserStore
	denylist *DenylistService
	audit    *AuditService
	notify   *NotifyService
}

func NewBookingService(
	cfg *config.Config,
	store repository.Store,
	users repository.UserStore,
	denylist *DenylistService,
	audit *AuditService,
	notify *NotifyService,
) *BookingService {
	return &BookingService{
		cfg:      cfg,
		store:    store,
		users:    users,
		denylist: denylist,
		audit:    audit,
		notify:   notify,
	}
}

type CreateBookingRequest struct {
	PerformerID     int64
	ServiceID       int64
	EventAt         time.Time
	DurationMinutes int
	Venue           string
	ReferralPercent *float64
}

// CreateBooking 创建预约，进入 PENDING_DEPOSIT
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, req *CreateBookingRequest) (*model.Booking, error) {
	if !Can(actor.Role, ActionCreateBooking) {
		return nil, apperr.Forbidden("仅客户可创建预约")
	}

	client, err := s.users.GetUser(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Unauthorized("调用方身份无效")
		}
		return nil, fmt.Errorf("查询客户失败: %w", err)
	}
	if !client.Active {
		return nil, apperr.Forbidden("账号已停用")
	}

	// 黑名单拦截：对外只给笼统文案，真实原因进安全审计
	blocked, reason, err := s.denylist.Check(ctx, client.Email, client.Phone)
	if err != nil {
		return nil, err
	}
	if blocked {
		log.Printf("[Booking] 黑名单拦截预约创建: clientID=%d, reason=%s", client.ID, reason)
		s.audit.RecordSecurity(ctx, actor, model.AuditActionBookingBlocked, model.EntityTypeBooking, nil, map[string]interface{}{
			"client_id": client.ID,
			"reason":    reason,
		})
		return nil, apperr.Blocked()
	}

	if req.Venue == "" {
		return nil, apperr.Validation("演出地点不能为空")
	}
	if !req.EventAt.After(time.Now()) {
		return nil, apperr.Validation("演出时间必须晚于当前时间")
	}
	if req.ReferralPercent != nil && (*req.ReferralPercent < 0 || *req.ReferralPercent > 100) {
		return nil, apperr.Validation("转介比例不合法")
	}

	performer, err := s.users.GetUser(ctx, req.PerformerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("表演者不存在")
		}
		return nil, fmt.Errorf("查询表演者失败: %w", err)
	}
	if performer.Role != model.RolePerformer || !performer.Active {
		return nil, apperr.NotFound("表演者不存在")
	}

	svc, err := s.users.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, apperr.NotFound("服务不存在")
		}
		return nil, fmt.Errorf("查询服务失败: %w", err)
	}

	offer, err := s.users.GetPerformerService(ctx, req.PerformerID, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, apperr.NotFound("表演者未提供该服务")
		}
		return nil, fmt.Errorf("查询服务报价失败: %w", err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = svc.DurationMinutes
	}
	if duration <= 0 {
		return nil, apperr.Validation("演出时长必须大于 0")
	}

	// 定价：表演者自定义价 > 服务基础价；定金比例：服务条目覆盖 > 系统默认
	total := svc.BasePrice
	if offer.CustomPrice != nil {
		total = *offer.CustomPrice
	}
	percent := s.cfg.Business.DepositPercentDefault
	if offer.DepositPercent != nil {
		percent = *offer.DepositPercent
	}

	booking := &model.Booking{
		RefCode:         idgen.GenerateBookingRef(),
		ClientID:        client.ID,
		PerformerID:     req.PerformerID,
		ServiceID:       req.ServiceID,
		EventAt:         req.EventAt,
		DurationMinutes: duration,
		Venue:           req.Venue,
		TotalAmount:     money.Round2(total),
		DepositAmount:   money.Deposit(total, percent),
		DepositPercent:  percent,
		Status:          model.BookingStatusPendingDeposit,
	}
	if req.ReferralPercent != nil {
		referral := money.Referral(total, *req.ReferralPercent)
		booking.ReferralAmount = &referral
		booking.ReferralPercent = req.ReferralPercent
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return fmt.Errorf("创建预约失败: %w", err)
		}
		return s.outboxEvent(ctx, tx, model.EventBookingCreated, booking, nil)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, model.AuditActionBookingCreated, model.EntityTypeBooking, &booking.ID, map[string]interface{}{
		"ref_code":        booking.RefCode,
		"performer_id":    booking.PerformerID,
		"service_id":      booking.ServiceID,
		"total_amount":    booking.TotalAmount,
		"deposit_amount":  booking.DepositAmount,
		"deposit_percent": booking.DepositPercent,
	})
	s.notify.Notify(ctx, booking.PerformerID, model.NotifyTypeBookingCreated,
		"收到新预约",
		fmt.Sprintf("预约 %s 已创建，等待客户支付定金", booking.RefCode),
		model.EntityTypeBooking, &booking.ID)

	log.Printf("[Booking] 预约创建成功: ref=%s, clientID=%d, performerID=%d, total=%.2f, deposit=%.2f",
		booking.RefCode, booking.ClientID, booking.PerformerID, booking.TotalAmount, booking.DepositAmount)

	return booking, nil
}

type UploadDepositRequest struct {
	BookingID  int64
	Amount     float64
	Method     string
	Reference  string
	ReceiptRef string
}

// UploadDeposit 客户上传定金转账凭证，预约进入 PENDING_APPROVAL
func (s *BookingService) UploadDeposit(ctx context.Context, actor Actor, req *UploadDepositRequest) (*model.Payment, error) {
	if !Can(actor.Role, ActionUploadDeposit) {
		return nil, apperr.Forbidden("仅客户可上传定金凭证")
	}

	booking, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != actor.ID {
		return nil, apperr.Forbidden("只能操作本人的预约")
	}
	// 核验不通过后预约停留在 PENDING_APPROVAL，此时允许重新上传
	if booking.Status != model.BookingStatusPendingDeposit && booking.Status != model.BookingStatusPendingApproval {
		return nil, apperr.InvalidState("预约当前不接受定金上传")
	}

	if req.Amount <= 0 {
		return nil, apperr.Validation("金额必须大于 0")
	}
	if req.Method != model.PaymentMethodPayID && req.Method != model.PaymentMethodBankTransfer {
		return nil, apperr.Validation("不支持的支付方式")
	}
	if !money.AmountMatches(req.Amount, booking.DepositAmount) {
		s.audit.Record(ctx, actor, model.AuditActionDepositUploadFail, model.EntityTypeBooking, &booking.ID, map[string]interface{}{
			"uploaded_amount": req.Amount,
			"deposit_amount":  booking.DepositAmount,
		})
		return nil, apperr.Validation(fmt.Sprintf("凭证金额与应付定金不符，应付 %.2f", booking.DepositAmount))
	}

	payment := &model.Payment{
		PaymentNo:  idgen.GeneratePaymentNo(),
		BookingID:  booking.ID,
		Type:       model.PaymentTypeDeposit,
		Method:     req.Method,
		Amount:     money.Round2(req.Amount),
		Reference:  req.Reference,
		ReceiptRef: req.ReceiptRef,
		Status:     model.PaymentStatusUploaded,
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		// 保证一个预约同一时刻至多一张待核验凭证：旧凭证先作废
		existing, err := tx.GetPendingPayment(ctx, booking.ID)
		if err != nil {
			return fmt.Errorf("查询待核验凭证失败: %w", err)
		}
		if existing != nil {
			if err := tx.UpdatePaymentStatus(ctx, existing.ID, model.PaymentStatusUploaded, model.PaymentStatusFailed, map[string]interface{}{
				"notes": "被新上传的凭证替换",
			}); err != nil {
				return fmt.Errorf("作废旧凭证失败: %w", err)
			}
		}

		if err := tx.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("创建凭证失败: %w", err)
		}

		if booking.Status == model.BookingStatusPendingDeposit {
			if err := tx.UpdateBookingStatus(ctx, booking.ID,
				model.BookingStatusPendingDeposit, model.BookingStatusPendingApproval, nil); err != nil {
				return err
			}
		}

		return s.outboxEvent(ctx, tx, model.EventDepositUploaded, booking, map[string]interface{}{
			"payment_no": payment.PaymentNo,
			"amount":     payment.Amount,
			"method":     payment.Method,
		})
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.audit.Record(ctx, actor, model.AuditActionDepositUploaded, model.EntityTypePayment, &payment.ID, map[string]interface{}{
		"booking_id": booking.ID,
		"payment_no": payment.PaymentNo,
		"amount":     payment.Amount,
		"method":     payment.Method,
	})
	s.notify.NotifyAdmins(ctx, model.NotifyTypeDepositUploaded,
		"定金凭证待审批",
		fmt.Sprintf("预约 %s 的定金凭证已上传，等待审批", booking.RefCode),
		model.EntityTypeBooking, &booking.ID)

	log.Printf("[Booking] 定金凭证上传成功: ref=%s, paymentNo=%s, amount=%.2f",
		booking.RefCode, payment.PaymentNo, payment.Amount)

	return payment, nil
}

// AdminDecide 管理员审批：PENDING_APPROVAL -> APPROVED | REJECTED
func (s *BookingService) AdminDecide(ctx context.Context, actor Actor, bookingID int64, approved bool, notes string) (*model.Booking, error) {
	if !Can(actor.Role, ActionAdminDecide) {
		return nil, apperr.Forbidden("仅管理员可审批预约")
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusPendingApproval {
		return nil, apperr.InvalidState("预约不在待审批状态")
	}

	now := time.Now()
	var toStatus, action, event string
	updates := map[string]interface{}{}
	if approved {
		toStatus = model.BookingStatusApproved
		action = model.AuditActionBookingApproved
		event = model.EventBookingApproved
		updates["approved_at"] = &now
	} else {
		toStatus = model.BookingStatusRejected
		action = model.AuditActionBookingRejected
		event = model.EventBookingRejected
		updates["cancelled_at"] = &now
		updates["cancellation_reason"] = notes
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.UpdateBookingStatus(ctx, booking.ID, model.BookingStatusPendingApproval, toStatus, updates); err != nil {
			return err
		}
		return s.outboxEvent(ctx, tx, event, booking, map[string]interface{}{
			"approved": approved,
			"notes":    notes,
		})
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	booking.Status = toStatus
	if approved {
		booking.ApprovedAt = &now
	} else {
		booking.CancelledAt = &now
		booking.CancellationReason = notes
	}

	s.audit.Record(ctx, actor, action, model.EntityTypeBooking, &booking.ID, map[string]interface{}{
		"approved": approved,
		"notes":    notes,
	})

	if approved {
		s.notify.Notify(ctx, booking.ClientID, model.NotifyTypeBookingApproved,
			"预约已通过审批",
			fmt.Sprintf("预约 %s 已通过审批，等待表演者确认", booking.RefCode),
			model.EntityTypeBooking, &booking.ID)
		s.notify.Notify(ctx, booking.PerformerID, model.NotifyTypeBookingApproved,
			"预约待确认",
			fmt.Sprintf("预约 %s 已通过审批，请尽快确认档期", booking.RefCode),
			model.EntityTypeBooking, &booking.ID)
	} else {
		message := fmt.Sprintf("预约 %s 未通过审批", booking.RefCode)
		if notes != "" {
			message = fmt.Sprintf("%s：%s", message, notes)
		}
		s.notify.NotifyEach(ctx, []int64{booking.ClientID, booking.PerformerID},
			model.NotifyTypeBookingRejected, "预约被拒绝", message,
			model.EntityTypeBooking, &booking.ID)
	}

	log.Printf("[Booking] 管理员审批完成: ref=%s, adminID=%d, approved=%v", booking.RefCode, actor.ID, approved)

	return booking, nil
}

// PerformerRespond 表演者确认或拒绝：APPROVED -> CONFIRMED | REJECTED
func (s *BookingService) PerformerRespond(ctx context.Context, actor Actor, bookingID int64, accepted bool, notes string) (*model.Booking, error) {
	if !Can(actor.Role, ActionPerformerRespond) {
		return nil, apperr.Forbidden("仅表演者可响应预约")
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PerformerID != actor.ID {
		return nil, apperr.Forbidden("只能响应分配给自己的预约")
	}
	if booking.Status != model.BookingStatusApproved {
		return nil, apperr.InvalidState("预约不在待确认状态")
	}

	now := time.Now()
	var toStatus, action, event string
	updates := map[string]interface{}{}
	if accepted {
		toStatus = model.BookingStatusConfirmed
		action = model.AuditActionBookingConfirmed
		event = model.EventBookingConfirmed
		updates["confirmed_at"] = &now
	} else {
		toStatus = model.BookingStatusRejected
		action = model.AuditActionBookingRejected
		event = model.EventBookingRejected
		updates["cancelled_at"] = &now
		updates["cancellation_reason"] = notes
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.UpdateBookingStatus(ctx, booking.ID, model.BookingStatusApproved, toStatus, updates); err != nil {
			return err
		}
		return s.outboxEvent(ctx, tx, event, booking, map[string]interface{}{
			"accepted": accepted,
			"notes":    notes,
		})
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	booking.Status = toStatus
	if accepted {
		booking.ConfirmedAt = &now
	} else {
		booking.CancelledAt = &now
		booking.CancellationReason = notes
	}

	s.audit.Record(ctx, actor, action, model.EntityTypeBooking, &booking.ID, map[string]interface{}{
		"accepted": accepted,
		"notes":    notes,
	})

	if accepted {
		s.notify.Notify(ctx, booking.ClientID, model.NotifyTypeBookingConfirmed,
			"预约已确认",
			fmt.Sprintf("表演者已确认预约 %s", booking.RefCode),
			model.EntityTypeBooking, &booking.ID)
	} else {
		message := fmt.Sprintf("表演者拒绝了预约 %s", booking.RefCode)
		if notes != "" {
			message = fmt.Sprintf("%s：%s", message, notes)
		}
		s.notify.Notify(ctx, booking.ClientID, model.NotifyTypeBookingRejected,
			"预约被拒绝", message, model.EntityTypeBooking, &booking.ID)
	}

	log.Printf("[Booking] 表演者响应完成: ref=%s, performerID=%d, accepted=%v", booking.RefCode, actor.ID, accepted)

	return booking, nil
}

// VerifyPayment 管理员核验定金到账
// 核验通过：凭证 -> VERIFIED，预约置 depositPaid（预约状态不变）
// 核验不通过：凭证 -> FAILED，并通知客户重新上传
func (s *BookingService) VerifyPayment(ctx context.Context, actor Actor, paymentID int64, verified bool, notes string) (*model.Payment, error) {
	if !Can(actor.Role, ActionVerifyPayment) {
		return nil, apperr.Forbidden("仅管理员可核验支付")
	}

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperr.NotFound("支付凭证不存在")
		}
		return nil, fmt.Errorf("查询凭证失败: %w", err)
	}
	if payment.Status != model.PaymentStatusUploaded {
		return nil, apperr.InvalidState("凭证已核验，不能重复操作")
	}

	booking, err := s.getBooking(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	if model.IsBookingTerminal(booking.Status) {
		return nil, apperr.InvalidState("预约已结束，凭证不可再核验")
	}

	now := time.Now()
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if verified {
			if err := tx.UpdatePaymentStatus(ctx, payment.ID, model.PaymentStatusUploaded, model.PaymentStatusVerified, map[string]interface{}{
				"verified_at": &now,
				"notes":       notes,
			}); err != nil {
				return err
			}
			if payment.Type == model.PaymentTypeDeposit {
				if err := tx.MarkDepositPaid(ctx, booking.ID); err != nil {
					return fmt.Errorf("更新定金标记失败: %w", err)
				}
			}
			return s.outboxEvent(ctx, tx, model.EventPaymentVerified, booking, map[string]interface{}{
				"payment_no": payment.PaymentNo,
				"amount":     payment.Amount,
			})
		}

		if err := tx.UpdatePaymentStatus(ctx, payment.ID, model.PaymentStatusUploaded, model.PaymentStatusFailed, map[string]interface{}{
			"notes": notes,
		}); err != nil {
			return err
		}
		return s.outboxEvent(ctx, tx, model.EventPaymentFailed, booking, map[string]interface{}{
			"payment_no": payment.PaymentNo,
			"notes":      notes,
		})
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if verified {
		payment.Status = model.PaymentStatusVerified
		payment.VerifiedAt = &now
		s.audit.Record(ctx, actor, model.AuditActionDepositVerified, model.EntityTypePayment, &payment.ID, map[string]interface{}{
			"booking_id": booking.ID,
			"payment_no": payment.PaymentNo,
			"amount":     payment.Amount,
		})
		s.notify.Notify(ctx, booking.ClientID, model.NotifyTypeDepositVerified,
			"定金已确认到账",
			fmt.Sprintf("预约 %s 的定金已确认到账", booking.RefCode),
			model.EntityTypeBooking, &booking.ID)
	} else {
		payment.Status = model.PaymentStatusFailed
		s.audit.Record(ctx, actor, model.AuditActionDepositRejected, model.EntityTypePayment, &payment.ID, map[string]interface{}{
			"booking_id": booking.ID,
			"payment_no": payment.PaymentNo,
			"notes":      notes,
		})
		message := fmt.Sprintf("预约 %s 的定金凭证未通过核验，请重新上传", booking.RefCode)
		if notes != "" {
			message = fmt.Sprintf("%s：%s", message, notes)
		}
		s.notify.Notify(ctx, booking.ClientID, model.NotifyTypeDepositRejected,
			"定金凭证未通过", message, model.EntityTypeBooking, &booking.ID)
	}
	payment.Notes = notes

	log.Printf("[Booking] 定金核验完成: paymentNo=%s, adminID=%d, verified=%v", payment.PaymentNo, actor.ID, verified)

	return payment, nil
}

// CompleteBooking 演出结束后人工或系统触发完成：CONFIRMED -> COMPLETED
func (s *BookingService) CompleteBooking(ctx context.Context, actor Actor, bookingID int64) (*model.Booking, error) {
	if !Can(actor.Role, ActionCompleteBooking) {
		return nil, apperr.Forbidden("没有完成预约的权限")
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusConfirmed {
		return nil, apperr.InvalidState("预约不在已确认状态")
	}
	if booking.EventAt.After(time.Now()) {
		return nil, apperr.Validation("演出时间未到，不能标记完成")
	}

	now := time.Now()
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.UpdateBookingStatus(ctx, booking.ID, model.BookingStatusConfirmed, model.BookingStatusCompleted, map[string]interface{}{
			"completed_at": &now,
		}); err != nil {
			return err
		}
		return s.outboxEvent(ctx, tx, model.EventBookingCompleted, booking, nil)
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	booking.Status = model.BookingStatusCompleted
	booking.CompletedAt = &now

	s.audit.Record(ctx, actor, model.AuditActionBookingCompleted, model.EntityTypeBooking, &booking.ID, nil)
	s.notify.Notify(ctx, booking.PerformerID, model.NotifyTypeBookingCompleted,
		"预约已完成",
		fmt.Sprintf("预约 %s 已标记完成", booking.RefCode),
		model.EntityTypeBooking, &booking.ID)

	log.Printf("[Booking] 预约完成: ref=%s", booking.RefCode)

	return booking, nil
}

// SweepStaleBookings 取消超期未上传定金的预约
// 逐条处理：单条失败不影响后续，失败收集后汇总返回
func (s *BookingService) SweepStaleBookings(ctx context.Context, thresholdHours int) (int, []error) {
	if thresholdHours <= 0 {
		thresholdHours = s.cfg.Business.StaleAfterHours
	}
	before := time.Now().Add(-time.Duration(thresholdHours) * time.Hour)

	bookings, err := s.store.ListStaleBookings(ctx, before, s.cfg.Business.SweepBatchSize)
	if err != nil {
		return 0, []error{fmt.Errorf("查询超期预约失败: %w", err)}
	}

	reason := fmt.Sprintf("no deposit within %d hours", thresholdHours)
	cancelled := 0
	var failures []error

	for _, booking := range bookings {
		if err := s.cancelStale(ctx, booking, reason); err != nil {
			failures = append(failures, fmt.Errorf("预约 %s 取消失败: %w", booking.RefCode, err))
			continue
		}
		cancelled++
	}

	return cancelled, failures
}

func (s *BookingService) cancelStale(ctx context.Context, booking *model.Booking, reason string) error {
	now := time.Now()
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.UpdateBookingStatus(ctx, booking.ID,
			model.BookingStatusPendingDeposit, model.BookingStatusCancelled, map[string]interface{}{
				"cancelled_at":        &now,
				"cancellation_reason": reason,
			}); err != nil {
			return err
		}
		return s.outboxEvent(ctx, tx, model.EventBookingCancelled, booking, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return mapStoreErr(err)
	}

	system := Actor{Role: RoleSystem}
	s.audit.Record(ctx, system, model.AuditActionAutoCancelledStale, model.EntityTypeBooking, &booking.ID, map[string]interface{}{
		"reason": reason,
	})
	message := fmt.Sprintf("预约 %s 因超时未支付定金已自动取消（%s）", booking.RefCode, reason)
	s.notify.NotifyEach(ctx, []int64{booking.ClientID, booking.PerformerID},
		model.NotifyTypeBookingCancelled, "预约已自动取消", message,
		model.EntityTypeBooking, &booking.ID)

	log.Printf("[Booking] 超期预约已自动取消: ref=%s", booking.RefCode)
	return nil
}

// GetBookingByRef 按预约编号查询，读取不触发任何金额重算
func (s *BookingService) GetBookingByRef(ctx context.Context, refCode string) (*model.Booking, error) {
	booking, err := s.store.GetBookingByRef(ctx, refCode)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperr.NotFound("预约不存在")
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, actor Actor, page, pageSize int) ([]*model.Booking, int64, error) {
	return s.store.ListBookingsForUser(ctx, actor.ID, actor.Role, page, pageSize)
}

// RemainingBalance 尾款 = 总额 − 已核验定金之和
func (s *BookingService) RemainingBalance(ctx context.Context, bookingID int64) (float64, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	paid, err := s.store.SumVerifiedPayments(ctx, bookingID, model.PaymentTypeDeposit)
	if err != nil {
		return 0, fmt.Errorf("统计已核验定金失败: %w", err)
	}
	return money.Balance(booking.TotalAmount, paid), nil
}

func (s *BookingService) getBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperr.NotFound("预约不存在")
		}
		return nil, fmt.Errorf("查询预约失败: %w", err)
	}
	return booking, nil
}

func (s *BookingService) outboxEvent(ctx context.Context, tx repository.Store, eventType string, booking *model.Booking, extra map[string]interface{}) error {
	payload := map[string]interface{}{
		"event_type":   eventType,
		"booking_id":   booking.ID,
		"ref_code":     booking.RefCode,
		"client_id":    booking.ClientID,
		"performer_id": booking.PerformerID,
		"occurred_at":  time.Now().Format(time.RFC3339),
	}
	for k, v := range extra {
		payload[k] = v
	}
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: booking.RefCode,
		Topic:      s.cfg.Kafka.Topic.BookingEvents,
		EventType:  eventType,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	if err := tx.CreateOutboxMessage(ctx, msg); err != nil {
		return fmt.Errorf("写入事件消息失败: %w", err)
	}
	return nil
}

// mapStoreErr 把持久层的竞争 / 非法变更错误映射为对外错误分类
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrStatusConflict):
		return apperr.Wrap(apperr.KindConflict, "状态已被并发变更，请重试", err)
	case errors.Is(err, repository.ErrTransitionInvalid):
		return apperr.Wrap(apperr.KindInvalidState, "当前状态不允许该操作", err)
	case errors.Is(err, repository.ErrBookingNotFound):
		return apperr.Wrap(apperr.KindNotFound, "预约不存在", err)
	case errors.Is(err, repository.ErrPaymentNotFound):
		return apperr.Wrap(apperr.KindNotFound, "支付凭证不存在", err)
	}
	return err
}
