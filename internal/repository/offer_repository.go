package repository

import (
	"context"

	"app/internal/domain/model"
)

type OfferRepository interface {
	//公開中（ACTIVEかつ掲載期間内）のみ
	ListLive(ctx context.Context) ([]model.Offer, error)
	//admin用（全件）
	ListAll(ctx context.Context, page int, limit int) ([]model.Offer, int64, error)
	FindByID(ctx context.Context, offerID int64) (model.Offer, error)

	Create(ctx context.Context, o model.Offer) (model.Offer, error)
	Update(ctx context.Context, o model.Offer) error
	UpdateStatus(ctx context.Context, offerID int64, status model.OfferStatus) error
	SoftDelete(ctx context.Context, offerID int64) error
}
