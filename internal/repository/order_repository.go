package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentMethod string
	UserID        *int64
	From          *time.Time
	To            *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)

	//決済参照の紐付けと、webhook確定時の書き込み。
	//MarkPaidはPLACEDのときだけ確定する。レースでPLACEDでなくなっていたらfalse
	SetPaymentRef(ctx context.Context, orderID int64, paymentRef string) error
	FindByPaymentRef(ctx context.Context, paymentRef string) (model.Order, error)
	MarkPaid(ctx context.Context, orderID int64, paymentID string) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//ONLINE未決済のまま放置された注文（クリーンアップ用）
	ListStaleOnlineUnpaid(ctx context.Context, before time.Time, limit int) ([]model.Order, error)
}
