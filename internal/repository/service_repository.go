package repository

import (
	"app/internal/domain/model"
	"context"
)

type ServiceListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	//空なら全ステータス（admin用）
	Status string
}

// サービスメニューの保存・取得を約束
type ServiceRepository interface {
	List(ctx context.Context, q ServiceListQuery) ([]model.Service, int64, error)
	FindByID(ctx context.Context, id int64) (model.Service, error)

	Create(ctx context.Context, s model.Service) (model.Service, error)
	Update(ctx context.Context, s model.Service) error
	UpdateStatus(ctx context.Context, serviceID int64, status model.ServiceStatus) error
	SoftDelete(ctx context.Context, id int64) error
}
