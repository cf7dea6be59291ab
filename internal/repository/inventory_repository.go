package repository

import (
	"app/internal/domain/model"
	"context"
)

// 注文と管理画面の両方から在庫を触るので、操作はこのインターフェース経由に限定する
type InventoryRepository interface {
	// 在庫が足りるときだけ減算する。減らせなかったらfalse
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// キャンセル・期限切れで在庫を戻す
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 管理者による在庫の直接設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 調整履歴を残す
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
