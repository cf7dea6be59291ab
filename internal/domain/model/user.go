package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// アカウント状態。ACTIVE以外はログイン不可
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "ACTIVE"
	AccountStatusSuspended   AccountStatus = "SUSPENDED"
	AccountStatusDeactivated AccountStatus = "DEACTIVATED"
)

type User struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string        `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string        `gorm:"column:password_hash;not null" json:"-"`
	Name          string        `gorm:"type:varchar(255)" json:"name"`
	Phone         string        `gorm:"type:varchar(30)" json:"phone"`
	Role          Role          `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	AccountStatus AccountStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"account_status"`
	TokenVersion  int           `gorm:"not null;default:0" json:"token_version"`
	LastLoginAt   *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ログイン可能かどうか
func (u *User) CanLogin() bool {
	return u.AccountStatus == AccountStatusActive
}
