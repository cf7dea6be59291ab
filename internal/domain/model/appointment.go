package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPaymentPending AppointmentStatus = "PAYMENT_PENDING"
	AppointmentStatusConfirmed      AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted      AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled      AppointmentStatus = "CANCELLED"
)

// 終端状態か（終端からは変更不可）
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// サービス予約。予約時点のサービス名をスナップショット保存する
type Appointment struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	ServiceID           int64  `gorm:"not null;index" json:"service_id"`
	ServiceNameSnapshot string `gorm:"type:varchar(255);not null" json:"service_name"`

	//連絡先（予約フォーム入力値）
	CustomerName string `gorm:"type:varchar(255);not null" json:"customer_name"`
	Email        string `gorm:"type:varchar(255);not null" json:"email"`
	Phone        string `gorm:"type:varchar(30);not null" json:"phone"`
	Address      string `gorm:"type:text;not null" json:"address"`

	ScheduledAt time.Time         `gorm:"not null;index" json:"scheduled_at"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//決済確定後に埋まる（webhook経由のみ）
	PaymentID  string `gorm:"type:varchar(255)" json:"payment_id"`
	PaymentRef string `gorm:"type:varchar(255);index" json:"-"`
	PricePaid  int64  `gorm:"not null;default:0" json:"price_paid"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
