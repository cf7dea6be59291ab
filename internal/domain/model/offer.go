package model

import (
	"time"

	"gorm.io/gorm"
)

type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "ACTIVE"
	OfferStatusInactive OfferStatus = "INACTIVE"
)

// キャンペーン・特売情報
type Offer struct {
	ID                 int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title              string      `gorm:"type:varchar(255);not null" json:"title"`
	Description        string      `gorm:"type:text" json:"description"`
	DiscountPercentage int64       `gorm:"not null;default:0" json:"discount_percentage"`
	Status             OfferStatus `gorm:"type:varchar(20);not null;index;default:'ACTIVE'" json:"status"`

	//掲載期間（未設定なら常時掲載）
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 現在掲載中か
func (o *Offer) IsLive(now time.Time) bool {
	if o.Status != OfferStatusActive {
		return false
	}
	if o.StartsAt != nil && now.Before(*o.StartsAt) {
		return false
	}
	if o.EndsAt != nil && now.After(*o.EndsAt) {
		return false
	}
	return true
}
