package service

import (
	"context"
	"fmt"

	"gigbook/internal/repository"
)

// DenylistService 黑名单检查
// 邮箱或手机号任一命中激活条目即拦截；真实原因只用于内部日志与审计，
// 对外统一返回笼统文案，避免暴露黑名单成员身份
type DenylistService struct {
	store repository.DenylistStore
}

func NewDenylistService(store repository.DenylistStore) *DenylistService {
	return &DenylistService{store: store}
}

// Check 返回是否拦截及内部原因
func (s *DenylistService) Check(ctx context.Context, email, phone string) (bool, string, error) {
	entry, err := s.store.FindActiveDenylistMatch(ctx, email, phone)
	if err != nil {
		return false, "", fmt.Errorf("查询黑名单失败: %w", err)
	}
	if entry == nil {
		return false, "", nil
	}
	reason := entry.Reason
	if reason == "" {
		reason = "denylist match"
	}
	return true, reason, nil
}
