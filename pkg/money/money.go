package money

import (
	"math"
)

// ============================================================================
// 金额计算
// ============================================================================
//
// 纯函数，无任何 I/O。金额在预约创建时一次性算定并落库，
// 之后读取不再重算，服务基础价的后续调整不影响已报价的预约。
//
// 舍入规则：按货币最小单位（分）四舍五入（half-up），保留两位小数。
//
// ============================================================================

// Tolerance 凭证金额与应付金额的比对容差（货币舍入误差）
const Tolerance = 0.01

// Round2 half-up 保留两位小数
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Deposit 定金 = round2(总额 × 百分比 / 100)
func Deposit(total, percent float64) float64 {
	return Round2(total * percent / 100)
}

// Balance 尾款 = round2(总额 − 已核验定金)
func Balance(total, depositPaid float64) float64 {
	return Round2(total - depositPaid)
}

// Referral 转介金额与定金同一公式，对总额独立计算
func Referral(total, percent float64) float64 {
	return Round2(total * percent / 100)
}

// AmountMatches 判断两个金额在容差范围内是否一致
// 容差边界按包含处理，额外的 1e-9 吸收二进制表示误差
func AmountMatches(got, want float64) bool {
	return math.Abs(got-want) <= Tolerance+1e-9
}
