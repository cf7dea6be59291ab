package model

import "time"

type EnquiryStatus string

const (
	EnquiryStatusOpen     EnquiryStatus = "OPEN"
	EnquiryStatusResolved EnquiryStatus = "RESOLVED"
)

// 問い合わせ。adminがステータスを切り替える
type Enquiry struct {
	ID      int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64         `gorm:"not null;index" json:"user_id"`
	Name    string        `gorm:"type:varchar(255);not null" json:"name"`
	Email   string        `gorm:"type:varchar(255);not null" json:"email"`
	Phone   string        `gorm:"type:varchar(30)" json:"phone"`
	Subject string        `gorm:"type:varchar(255);not null" json:"subject"`
	Message string        `gorm:"type:text;not null" json:"message"`
	Status  EnquiryStatus `gorm:"type:varchar(20);not null;index;default:'OPEN'" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
