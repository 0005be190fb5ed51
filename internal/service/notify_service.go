package service

import (
	"context"
	"log"

	"gigbook/internal/model"
	"gigbook/internal/repository"
)

// Transport 对外下发通道（短信 / WhatsApp / 邮件），对引擎不透明
// 发送失败由通知器捕获记录，不反馈给触发方
type Transport interface {
	Send(ctx context.Context, recipient *model.User, title, message string) error
}

// NotifyService 通知器
// 站内通知行必落库，外呼通道尽力而为；多个接收方相互独立，
// 任何一个失败都不影响其余接收方
type NotifyService struct {
	store     repository.NotificationStore
	users     repository.UserStore
	transport Transport // 可为 nil，表示未配置外呼通道
}

func NewNotifyService(store repository.NotificationStore, users repository.UserStore, transport Transport) *NotifyService {
	return &NotifyService{store: store, users: users, transport: transport}
}

// Notify 给单个接收方发一条通知
func (s *NotifyService) Notify(ctx context.Context, recipientID int64, notifyType, title, message, entityType string, entityID *int64) {
	n := &model.Notification{
		RecipientID: recipientID,
		Type:        notifyType,
		Title:       title,
		Message:     message,
		EntityType:  entityType,
		EntityID:    entityID,
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		log.Printf("[Notify] 写入通知失败: recipient=%d, type=%s, err=%v", recipientID, notifyType, err)
	}

	if s.transport == nil {
		return
	}

	recipient, err := s.users.GetUser(ctx, recipientID)
	if err != nil {
		log.Printf("[Notify] 查询接收方失败: recipient=%d, err=%v", recipientID, err)
		return
	}

	if err := s.transport.Send(ctx, recipient, title, message); err != nil {
		// 通道失败不向触发方传播
		log.Printf("[Notify] 外呼通道发送失败: recipient=%d, type=%s, err=%v", recipientID, notifyType, err)
	}
}

// NotifyEach 逐个通知，接收方之间互不影响
func (s *NotifyService) NotifyEach(ctx context.Context, recipientIDs []int64, notifyType, title, message, entityType string, entityID *int64) {
	for _, id := range recipientIDs {
		s.Notify(ctx, id, notifyType, title, message, entityType, entityID)
	}
}

// NotifyAdmins 管理员广播：按角色取全部激活管理员逐个下发
func (s *NotifyService) NotifyAdmins(ctx context.Context, notifyType, title, message, entityType string, entityID *int64) {
	adminIDs, err := s.users.ListAdminIDs(ctx)
	if err != nil {
		log.Printf("[Notify] 查询管理员列表失败: err=%v", err)
		return
	}
	s.NotifyEach(ctx, adminIDs, notifyType, title, message, entityType, entityID)
}
