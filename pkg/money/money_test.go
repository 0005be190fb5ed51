package money

import (
	"testing"
)

func TestDeposit(t *testing.T) {
	cases := []struct {
		total   float64
		percent float64
		want    float64
	}{
		{200, 15, 30},
		{199.99, 15, 30},    // 29.9985 -> 30.00
		{100, 15, 15},
		{333.33, 15, 50},    // 49.9995 -> 50.00
		{0.03, 15, 0},       // 0.0045 -> 0.00
		{1, 50, 0.5},
		{100, 0, 0},
	}
	for _, c := range cases {
		got := Deposit(c.total, c.percent)
		if got != c.want {
			t.Fatalf("Deposit(%v, %v) = %v, want %v", c.total, c.percent, got, c.want)
		}
	}
}

func TestDepositNeverExceedsTotal(t *testing.T) {
	totals := []float64{0, 0.01, 1, 99.99, 200, 12345.67}
	percents := []float64{0, 10, 15, 50, 100}
	for _, total := range totals {
		for _, percent := range percents {
			d := Deposit(total, percent)
			if d < 0 || d > total+Tolerance {
				t.Fatalf("Deposit(%v, %v) = %v out of range [0, total]", total, percent, d)
			}
		}
	}
}

func TestBalance(t *testing.T) {
	if got := Balance(200, 30); got != 170 {
		t.Fatalf("Balance(200, 30) = %v, want 170", got)
	}
	if got := Balance(100.10, 15.02); got != 85.08 {
		t.Fatalf("Balance(100.10, 15.02) = %v, want 85.08", got)
	}
}

func TestReferral(t *testing.T) {
	// 转介金额独立于定金，对总额按同一公式计算
	if got := Referral(200, 10); got != 20 {
		t.Fatalf("Referral(200, 10) = %v, want 20", got)
	}
}

func TestAmountMatches(t *testing.T) {
	if !AmountMatches(30.00, 30.01) {
		t.Fatal("30.00 vs 30.01 should be within tolerance")
	}
	if !AmountMatches(30.01, 30.00) {
		t.Fatal("tolerance should be symmetric")
	}
	if AmountMatches(30.00, 30.02) {
		t.Fatal("30.00 vs 30.02 should exceed tolerance")
	}
}

func TestRound2HalfUp(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.125, 0.13}, // 二进制可精确表示的 half-up 边界
		{2.375, 2.38},
		{1.004, 1.00},
		{1.006, 1.01},
		{0, 0},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Fatalf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
