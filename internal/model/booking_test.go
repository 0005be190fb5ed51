package model

import (
	"testing"
)

// 主链路每一步都必须合法
func TestBookingTransitionHappyPath(t *testing.T) {
	steps := []struct {
		from string
		to   string
	}{
		{BookingStatusPendingDeposit, BookingStatusPendingApproval},
		{BookingStatusPendingApproval, BookingStatusApproved},
		{BookingStatusApproved, BookingStatusConfirmed},
		{BookingStatusConfirmed, BookingStatusCompleted},
	}
	for _, step := range steps {
		if !CanBookingTransition(step.from, step.to) {
			t.Errorf("%s -> %s 应当合法", step.from, step.to)
		}
	}
}

// 不允许跳过中间状态
func TestBookingTransitionNoSkipping(t *testing.T) {
	illegal := []struct {
		from string
		to   string
	}{
		{BookingStatusPendingDeposit, BookingStatusApproved},
		{BookingStatusPendingDeposit, BookingStatusConfirmed},
		{BookingStatusPendingDeposit, BookingStatusCompleted},
		{BookingStatusPendingApproval, BookingStatusConfirmed},
		{BookingStatusPendingApproval, BookingStatusCompleted},
		{BookingStatusApproved, BookingStatusCompleted},
		// 回退同样非法
		{BookingStatusApproved, BookingStatusPendingApproval},
		{BookingStatusConfirmed, BookingStatusApproved},
	}
	for _, step := range illegal {
		if CanBookingTransition(step.from, step.to) {
			t.Errorf("%s -> %s 不应合法", step.from, step.to)
		}
	}
}

// 任意非终态都可以被拒绝或取消
func TestBookingTransitionToTerminal(t *testing.T) {
	nonTerminal := []string{
		BookingStatusPendingDeposit,
		BookingStatusPendingApproval,
		BookingStatusApproved,
		BookingStatusConfirmed,
	}
	for _, from := range nonTerminal {
		if !CanBookingTransition(from, BookingStatusRejected) {
			t.Errorf("%s -> REJECTED 应当合法", from)
		}
		if !CanBookingTransition(from, BookingStatusCancelled) {
			t.Errorf("%s -> CANCELLED 应当合法", from)
		}
	}
}

// 终态不接受任何后续变更
func TestBookingTerminalIsFrozen(t *testing.T) {
	terminal := []string{
		BookingStatusCompleted,
		BookingStatusRejected,
		BookingStatusCancelled,
	}
	all := []string{
		BookingStatusPendingDeposit,
		BookingStatusPendingApproval,
		BookingStatusApproved,
		BookingStatusConfirmed,
		BookingStatusCompleted,
		BookingStatusRejected,
		BookingStatusCancelled,
	}
	for _, from := range terminal {
		if !IsBookingTerminal(from) {
			t.Errorf("%s 应当是终态", from)
		}
		for _, to := range all {
			if CanBookingTransition(from, to) {
				t.Errorf("终态 %s -> %s 不应合法", from, to)
			}
		}
	}
}

func TestPaymentTransitions(t *testing.T) {
	if !CanPaymentTransition(PaymentStatusUploaded, PaymentStatusVerified) {
		t.Error("UPLOADED -> VERIFIED 应当合法")
	}
	if !CanPaymentTransition(PaymentStatusUploaded, PaymentStatusFailed) {
		t.Error("UPLOADED -> FAILED 应当合法")
	}
	// 核验结果不可回退、不可改判
	if CanPaymentTransition(PaymentStatusVerified, PaymentStatusFailed) {
		t.Error("VERIFIED -> FAILED 不应合法")
	}
	if CanPaymentTransition(PaymentStatusFailed, PaymentStatusVerified) {
		t.Error("FAILED -> VERIFIED 不应合法")
	}
	if CanPaymentTransition(PaymentStatusVerified, PaymentStatusUploaded) {
		t.Error("VERIFIED -> UPLOADED 不应合法")
	}
}
