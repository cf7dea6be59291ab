package model

import (
	"time"

	"gorm.io/gorm"
)

// 修理・点検などのサービスメニュー
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "ACTIVE"
	ServiceStatusInactive ServiceStatus = "INACTIVE"
)

type Service struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Category    string        `gorm:"type:varchar(100);not null;index" json:"category"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ServiceStatus `gorm:"type:varchar(20);not null;index;default:'ACTIVE'" json:"status"`

	//価格・所要時間は未設定も許す
	Price           *int64 `json:"price,omitempty"`
	DurationMinutes *int64 `json:"duration_minutes,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
