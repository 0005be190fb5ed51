package service

import (
	"gigbook/internal/model"
)

// RoleSystem 调度任务等系统内部调用方，不对应真实用户
const RoleSystem = "SYSTEM"

const (
	ActionCreateBooking    = "booking.create"
	ActionUploadDeposit    = "booking.upload_deposit"
	ActionAdminDecide      = "booking.admin_decide"
	ActionPerformerRespond = "booking.respond"
	ActionCompleteBooking  = "booking.complete"
	ActionVerifyPayment    = "payment.verify"
)

// roleActions 统一的 (角色, 动作) 能力表
// 所有入口统一走 Can 判定，不在各路由里散落角色判断
var roleActions = map[string]map[string]bool{
	model.RoleClient: {
		ActionCreateBooking: true,
		ActionUploadDeposit: true,
	},
	model.RolePerformer: {
		ActionPerformerRespond: true,
	},
	model.RoleAdmin: {
		ActionAdminDecide:     true,
		ActionVerifyPayment:   true,
		ActionCompleteBooking: true,
	},
	RoleSystem: {
		ActionCompleteBooking: true,
	},
}

func Can(role, action string) bool {
	actions, ok := roleActions[role]
	if !ok {
		return false
	}
	return actions[action]
}

// Actor 一次请求的调用方身份（由认证中间件或系统任务填入）
type Actor struct {
	ID        int64
	Role      string
	IPAddress string
	UserAgent string
}

// actorRef 系统调用方返回 nil，落审计时 ActorID 为空
func (a Actor) actorRef() *int64 {
	if a.Role == RoleSystem || a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}
