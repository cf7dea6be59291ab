package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 監査ログの絞り込み条件。nilのフィールドは条件に使わない
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 監査ログは追記のみ。更新・削除のAPIは持たない
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//条件で一覧取得（新しい順）
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
