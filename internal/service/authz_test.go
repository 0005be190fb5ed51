package service

import (
	"testing"

	"gigbook/internal/model"
)

func TestCan(t *testing.T) {
	cases := []struct {
		role   string
		action string
		want   bool
	}{
		{model.RoleClient, ActionCreateBooking, true},
		{model.RoleClient, ActionUploadDeposit, true},
		{model.RoleClient, ActionAdminDecide, false},
		{model.RoleClient, ActionVerifyPayment, false},
		{model.RolePerformer, ActionPerformerRespond, true},
		{model.RolePerformer, ActionCreateBooking, false},
		{model.RoleAdmin, ActionAdminDecide, true},
		{model.RoleAdmin, ActionVerifyPayment, true},
		{model.RoleAdmin, ActionCompleteBooking, true},
		{model.RoleAdmin, ActionUploadDeposit, false},
		{RoleSystem, ActionCompleteBooking, true},
		{RoleSystem, ActionAdminDecide, false},
		{"", ActionCreateBooking, false},
		{"UNKNOWN", ActionCreateBooking, false},
	}
	for _, c := range cases {
		if got := Can(c.role, c.action); got != c.want {
			t.Errorf("Can(%q, %q) = %v, want %v", c.role, c.action, got, c.want)
		}
	}
}

func TestActorRef(t *testing.T) {
	if ref := (Actor{ID: 7, Role: model.RoleAdmin}).actorRef(); ref == nil || *ref != 7 {
		t.Fatal("普通调用方应返回自身ID")
	}
	if ref := (Actor{Role: RoleSystem}).actorRef(); ref != nil {
		t.Fatal("系统调用方 ActorID 应为空")
	}
	if ref := (Actor{}).actorRef(); ref != nil {
		t.Fatal("匿名调用方 ActorID 应为空")
	}
}
