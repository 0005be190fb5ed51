package service

import (
	"context"
	"encoding/json"
	"log"

	"gigbook/internal/model"
	"gigbook/internal/repository"
)

// AuditService 审计记录器
// 状态变更提交后同步落审计；落库失败只记日志，绝不回滚已提交的变更
type AuditService struct {
	store repository.AuditStore
}

func NewAuditService(store repository.AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Record 追加一条审计记录
func (s *AuditService) Record(ctx context.Context, actor Actor, action, entityType string, entityID *int64, changes map[string]interface{}) {
	s.record(ctx, actor, action, entityType, entityID, changes, false)
}

// RecordSecurity 安全类记录（如黑名单拦截），不参与保留期清理
func (s *AuditService) RecordSecurity(ctx context.Context, actor Actor, action, entityType string, entityID *int64, changes map[string]interface{}) {
	s.record(ctx, actor, action, entityType, entityID, changes, true)
}

func (s *AuditService) record(ctx context.Context, actor Actor, action, entityType string, entityID *int64, changes map[string]interface{}, security bool) {
	var payload string
	if changes != nil {
		b, err := json.Marshal(changes)
		if err != nil {
			log.Printf("[Audit] 序列化变更内容失败: action=%s, err=%v", action, err)
		} else {
			payload = string(b)
		}
	}

	entry := &model.AuditLog{
		ActorID:    actor.actorRef(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    payload,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Security:   security,
	}

	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		// 审计失败不能影响已提交的业务结果
		log.Printf("[Audit] 写入审计记录失败: action=%s, entity=%s, err=%v", action, entityType, err)
	}
}
