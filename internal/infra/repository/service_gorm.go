package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ServiceGormRepository struct {
	db *gorm.DB
}

// DI
func NewServiceGormRepository(db *gorm.DB) *ServiceGormRepository {
	return &ServiceGormRepository{db: db}
}

// 検索/カテゴリ/ステータス絞り込み付きの一覧。
// Statusが空なら全ステータス（admin用）。
func (r *ServiceGormRepository) List(ctx context.Context, q repo.ServiceListQuery) ([]model.Service, int64, error) {
	var services []model.Service
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Service{})

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if strings.TrimSpace(q.Category) != "" {
		tx = tx.Where("category = ?", strings.TrimSpace(q.Category))
	}
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ?", like)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Service{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	err := tx.Order("name asc").Order("id asc").
		Offset(offset).Limit(q.Limit).
		Find(&services).Error
	if err != nil {
		return []model.Service{}, 0, err
	}

	return services, total, nil
}

func (r *ServiceGormRepository) FindByID(ctx context.Context, id int64) (model.Service, error) {
	var s model.Service
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Service{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	return s, nil
}

func (r *ServiceGormRepository) Create(ctx context.Context, s model.Service) (model.Service, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Service{}, err
	}
	return s, nil
}

func (r *ServiceGormRepository) Update(ctx context.Context, s model.Service) error {
	res := r.db.WithContext(ctx).Model(&model.Service{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"name":             s.Name,
		"category":         s.Category,
		"description":      s.Description,
		"price":            s.Price,
		"duration_minutes": s.DurationMinutes,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 公開状態の切り替え
func (r *ServiceGormRepository) UpdateStatus(ctx context.Context, serviceID int64, status model.ServiceStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Service{}).
		Where("id = ?", serviceID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ServiceGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Service{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
