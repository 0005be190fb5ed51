package model

import (
	"time"
)

// DenylistEntry 黑名单条目，邮箱或手机号任一命中即拦截
// 真实原因只记内部日志，绝不返回给调用方
type DenylistEntry struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email  string `gorm:"type:varchar(128);index" json:"email"`
	Phone  string `gorm:"type:varchar(32);index" json:"phone"`
	Reason string `gorm:"type:varchar(256)" json:"reason"`
	Active bool   `gorm:"index;not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DenylistEntry) TableName() string {
	return "denylist_entry"
}
