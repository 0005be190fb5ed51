package handler

import (
	"errors"
	"strconv"
	"time"

	"gigbook/internal/repository"
	"gigbook/internal/service"
	"gigbook/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth          *service.AuthService
	bookings      *service.BookingService
	notifications repository.NotificationStore
}

func NewHandler(auth *service.AuthService, bookings *service.BookingService, notifications repository.NotificationStore) *Handler {
	return &Handler{
		auth:          auth,
		bookings:      bookings,
		notifications: notifications,
	}
}

// actorFrom 从请求上下文组装操作者，认证中间件保证 caller 已写入
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:        c.GetInt64(ctxKeyCallerID),
		Role:      c.GetString(ctxKeyCallerRole),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	actor := service.Actor{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	user, err := h.auth.Register(c.Request.Context(), actor, &service.RegisterRequest{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":   token,
		"user_id": user.ID,
		"role":    user.Role,
		"name":    user.Name,
	})
}

// CreateBooking 创建预约
func (h *Handler) CreateBooking(c *gin.Context) {
	var req struct {
		PerformerID     int64    `json:"performer_id" binding:"required"`
		ServiceID       int64    `json:"service_id" binding:"required"`
		EventAt         string   `json:"event_at" binding:"required"`
		DurationMinutes int      `json:"duration_minutes"`
		Venue           string   `json:"venue"`
		ReferralPercent *float64 `json:"referral_percent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	eventAt, err := time.Parse(time.RFC3339, req.EventAt)
	if err != nil {
		response.ParamError(c, "event_at 格式错误，应为 RFC3339")
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), actorFrom(c), &service.CreateBookingRequest{
		PerformerID:     req.PerformerID,
		ServiceID:       req.ServiceID,
		EventAt:         eventAt,
		DurationMinutes: req.DurationMinutes,
		Venue:           req.Venue,
		ReferralPercent: req.ReferralPercent,
	})
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, booking)
}

// GetBooking 按引用号查询预约
func (h *Handler) GetBooking(c *gin.Context) {
	refCode := c.Param("ref")
	booking, err := h.bookings.GetBookingByRef(c.Request.Context(), refCode)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	balance, err := h.bookings.RemainingBalance(c.Request.Context(), booking.ID)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"booking":           booking,
		"remaining_balance": balance,
	})
}

// ListBookings 查询当前用户相关的预约列表
func (h *Handler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bookings, total, err := h.bookings.ListBookings(c.Request.Context(), actorFrom(c), page, pageSize)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      bookings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// UploadDeposit 上传定金凭证
func (h *Handler) UploadDeposit(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "预约ID无效")
		return
	}

	var req struct {
		Amount     float64 `json:"amount" binding:"required"`
		Method     string  `json:"method" binding:"required"`
		Reference  string  `json:"reference"`
		ReceiptRef string  `json:"receipt_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	payment, err := h.bookings.UploadDeposit(c.Request.Context(), actorFrom(c), &service.UploadDepositRequest{
		BookingID:  bookingID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		ReceiptRef: req.ReceiptRef,
	})
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, payment)
}

// AdminDecide 管理员审批预约
func (h *Handler) AdminDecide(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "预约ID无效")
		return
	}

	var req struct {
		Approved *bool  `json:"approved" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	booking, err := h.bookings.AdminDecide(c.Request.Context(), actorFrom(c), bookingID, *req.Approved, req.Notes)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, booking)
}

// PerformerRespond 演出者接受或拒绝
func (h *Handler) PerformerRespond(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "预约ID无效")
		return
	}

	var req struct {
		Accepted *bool  `json:"accepted" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	booking, err := h.bookings.PerformerRespond(c.Request.Context(), actorFrom(c), bookingID, *req.Accepted, req.Notes)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, booking)
}

// VerifyPayment 核验支付凭证
func (h *Handler) VerifyPayment(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "支付ID无效")
		return
	}

	var req struct {
		Verified *bool  `json:"verified" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	payment, err := h.bookings.VerifyPayment(c.Request.Context(), actorFrom(c), paymentID, *req.Verified, req.Notes)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, payment)
}

// CompleteBooking 完成预约
func (h *Handler) CompleteBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "预约ID无效")
		return
	}

	booking, err := h.bookings.CompleteBooking(c.Request.Context(), actorFrom(c), bookingID)
	if err != nil {
		response.BusinessError(c, err)
		return
	}

	response.Success(c, booking)
}

// ListNotifications 当前用户的通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	list, total, err := h.notifications.ListNotifications(c.Request.Context(), c.GetInt64(ctxKeyCallerID), page, pageSize)
	if err != nil {
		response.ServerError(c, "查询通知失败")
		return
	}

	response.Success(c, gin.H{
		"list":      list,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// MarkNotificationRead 标记通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "通知ID无效")
		return
	}

	if err := h.notifications.MarkNotificationRead(c.Request.Context(), id, c.GetInt64(ctxKeyCallerID)); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			response.Error(c, response.CodeNotFound, err.Error())
			return
		}
		response.ServerError(c, "更新通知失败")
		return
	}

	response.Success(c, nil)
}
