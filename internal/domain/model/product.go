package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 商品の状態（新品/中古）
type ProductCondition string

const (
	ProductConditionNew  ProductCondition = "NEW"
	ProductConditionUsed ProductCondition = "USED"
)

type Product struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Brand       string           `gorm:"type:varchar(255);not null" json:"brand"`
	Model       string           `gorm:"type:varchar(255);not null" json:"model"`
	Description string           `gorm:"type:text" json:"description"`
	//価格は最小通貨単位（円/paise）で保持する
	Price              int64            `gorm:"not null" json:"price"`
	DiscountPercentage int64            `gorm:"not null;default:0" json:"discount_percentage"`
	Stock              int64            `gorm:"not null" json:"stock"`
	Condition          ProductCondition `gorm:"type:varchar(10);not null;default:'NEW'" json:"condition"`
	Images             pq.StringArray   `gorm:"type:text[]" json:"images"`
	IsActive           bool             `gorm:"not null;default:false" json:"is_active"`
	CreatedAt          time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

// 割引後の表示価格。最小通貨単位のまま四捨五入（0.5切り上げ）
func (p *Product) DiscountedPrice() int64 {
	if p.DiscountPercentage <= 0 {
		return p.Price
	}
	if p.DiscountPercentage >= 100 {
		return 0
	}
	return (p.Price*(100-p.DiscountPercentage) + 50) / 100
}
