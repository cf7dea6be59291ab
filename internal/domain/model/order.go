package model

import "time"

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "ONLINE"
	PaymentMethodCOD    PaymentMethod = "COD"
)

// 注文。商品と配送先は注文時点の値をスナップショット保存する
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//商品スナップショット
	ProductID         int64  `gorm:"not null;index" json:"product_id"`
	BrandSnapshot     string `gorm:"type:varchar(255);not null" json:"brand"`
	ModelSnapshot     string `gorm:"type:varchar(255);not null" json:"model"`
	UnitPriceSnapshot int64  `gorm:"not null" json:"unit_price"`
	Quantity          int64  `gorm:"not null;default:1" json:"quantity"`
	TotalPrice        int64  `gorm:"not null" json:"total_price"`

	//配送先スナップショット
	ShipName       string `gorm:"type:varchar(255);not null" json:"ship_name"`
	ShipPhone      string `gorm:"type:varchar(30)" json:"ship_phone"`
	ShipPostalCode string `gorm:"type:varchar(20);not null" json:"ship_postal_code"`
	ShipLine1      string `gorm:"type:varchar(255);not null" json:"ship_line1"`
	ShipLine2      string `gorm:"type:varchar(255)" json:"ship_line2"`
	ShipCity       string `gorm:"type:varchar(255);not null" json:"ship_city"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method"`

	//決済確定後に埋まる（webhook経由のみ）
	PaymentID  string `gorm:"type:varchar(255)" json:"payment_id"`
	PaymentRef string `gorm:"type:varchar(255);index" json:"-"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
