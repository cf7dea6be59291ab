package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type offerGormRepository struct {
	db *gorm.DB
}

func NewOfferGormRepository(db *gorm.DB) repo.OfferRepository {
	return &offerGormRepository{db: db}
}

// 公開中（ACTIVEかつ掲載期間内）のみ
func (r *offerGormRepository) ListLive(ctx context.Context) ([]model.Offer, error) {
	now := time.Now()

	var items []model.Offer
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OfferStatusActive).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *offerGormRepository) ListAll(ctx context.Context, page int, limit int) ([]model.Offer, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Offer{}).Count(&total).Error; err != nil {
		return []model.Offer{}, 0, err
	}

	var items []model.Offer
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Offer{}, 0, err
	}

	return items, total, nil
}

func (r *offerGormRepository) FindByID(ctx context.Context, offerID int64) (model.Offer, error) {
	var o model.Offer
	err := r.db.WithContext(ctx).First(&o, offerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Offer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Offer{}, err
	}
	return o, nil
}

func (r *offerGormRepository) Create(ctx context.Context, o model.Offer) (model.Offer, error) {
	if err := r.db.WithContext(ctx).Create(&o).Error; err != nil {
		return model.Offer{}, err
	}
	return o, nil
}

func (r *offerGormRepository) Update(ctx context.Context, o model.Offer) error {
	res := r.db.WithContext(ctx).Model(&model.Offer{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"title":               o.Title,
		"description":         o.Description,
		"discount_percentage": o.DiscountPercentage,
		"starts_at":           o.StartsAt,
		"ends_at":             o.EndsAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *offerGormRepository) UpdateStatus(ctx context.Context, offerID int64, status model.OfferStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Offer{}).
		Where("id = ?", offerID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *offerGormRepository) SoftDelete(ctx context.Context, offerID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Offer{}, offerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
