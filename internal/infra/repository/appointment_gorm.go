package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Create(ctx context.Context, a model.Appointment) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return 0, err
	}
	return a.ID, nil
}

func (r *AppointmentGormRepository) FindByID(ctx context.Context, appointmentID int64) (model.Appointment, error) {
	var a model.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", appointmentID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Appointment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Appointment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Appointment{}, 0, err
	}

	var items []model.Appointment
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Appointment{}, 0, err
	}

	return items, total, nil
}

func (r *AppointmentGormRepository) UpdateStatus(ctx context.Context, appointmentID int64, status model.AppointmentStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ?", appointmentID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) SetPaymentRef(ctx context.Context, appointmentID int64, paymentRef string) error {
	res := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ?", appointmentID).
		Update("payment_ref", paymentRef)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (model.Appointment, error) {
	var a model.Appointment
	err := r.db.WithContext(ctx).Where("payment_ref = ?", paymentRef).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Appointment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

// webhook確定時にステータス・payment_id・支払額をまとめて書く
// PAYMENT_PENDINGのときだけ確定する。キャンセルとのレースで状態が動いていたらfalse
func (r *AppointmentGormRepository) MarkPaid(ctx context.Context, appointmentID int64, paymentID string, pricePaid int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ? AND status = ?", appointmentID, model.AppointmentStatusPaymentPending).
		Updates(map[string]interface{}{
			"status":     model.AppointmentStatusConfirmed,
			"payment_id": paymentID,
			"price_paid": pricePaid,
		})

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentGormRepository) ListAdmin(ctx context.Context, f repo.AdminAppointmentListFilter) ([]model.Appointment, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Appointment{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ServiceID != nil {
		q = q.Where("service_id = ?", *f.ServiceID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("scheduled_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Appointment{}, 0, err
	}

	var items []model.Appointment
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Appointment{}, 0, err
	}

	return items, total, nil
}

// 決済待ちのまま放置された予約。クリーンアップjobが使う
func (r *AppointmentGormRepository) ListStalePaymentPending(ctx context.Context, before time.Time, limit int) ([]model.Appointment, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var items []model.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.AppointmentStatusPaymentPending, before).
		Order("id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
