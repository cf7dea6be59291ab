package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminAppointmentListFilter struct {
	Page      int
	Limit     int
	Status    string
	ServiceID *int64
	UserID    *int64
	From      *time.Time
	To        *time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, a model.Appointment) (int64, error)
	FindByID(ctx context.Context, appointmentID int64) (model.Appointment, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Appointment, int64, error)
	UpdateStatus(ctx context.Context, appointmentID int64, status model.AppointmentStatus) error

	//決済参照の紐付けと、webhook確定時の書き込み。
	//MarkPaidはPAYMENT_PENDINGのときだけ確定する。状態が動いていたらfalse
	SetPaymentRef(ctx context.Context, appointmentID int64, paymentRef string) error
	FindByPaymentRef(ctx context.Context, paymentRef string) (model.Appointment, error)
	MarkPaid(ctx context.Context, appointmentID int64, paymentID string, pricePaid int64) (bool, error)

	//admin用の一覧
	ListAdmin(ctx context.Context, f AdminAppointmentListFilter) ([]model.Appointment, int64, error)

	//決済待ちのまま放置された予約（クリーンアップ用）
	ListStalePaymentPending(ctx context.Context, before time.Time, limit int) ([]model.Appointment, error)
}
