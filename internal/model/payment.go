package model

import (
	"time"
)

const (
	PaymentStatusUploaded = "UPLOADED"
	PaymentStatusVerified = "VERIFIED"
	PaymentStatusFailed   = "FAILED"
)

const (
	PaymentTypeDeposit  = "DEPOSIT"
	PaymentTypeBalance  = "BALANCE"
	PaymentTypeReferral = "REFERRAL"
)

const (
	PaymentMethodPayID        = "PAYID"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
)

// ValidPaymentTransitions 支付凭证状态机：UPLOADED -> VERIFIED | FAILED，终态不可回退
var ValidPaymentTransitions = map[string][]string{
	PaymentStatusUploaded: {PaymentStatusVerified, PaymentStatusFailed},
}

func CanPaymentTransition(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidPaymentTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// Payment 线下转账凭证（PayID / 银行转账），由管理员人工核验
type Payment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentNo string `gorm:"type:varchar(64);uniqueIndex;not null" json:"payment_no"`
	BookingID int64  `gorm:"index;not null" json:"booking_id"`

	Type          string  `gorm:"type:varchar(20);not null" json:"type"`
	Method        string  `gorm:"type:varchar(20);not null" json:"method"`
	Amount        float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	Reference     string  `gorm:"type:varchar(128)" json:"reference"`
	ReceiptRef    string  `gorm:"type:varchar(256)" json:"receipt_ref"`
	ExternalTxnID string  `gorm:"type:varchar(128)" json:"external_txn_id,omitempty"`

	Status string `gorm:"type:varchar(20);index;not null" json:"status"`
	Notes  string `gorm:"type:varchar(256)" json:"notes,omitempty"`

	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}
