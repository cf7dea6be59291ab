package model

import "time"

// 在庫更新、注文ステータス更新など
type AuditAction string

const (
	//在庫を更新した操作
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//注文ステータスを更新した操作
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//予約ステータスを更新した操作
	AuditActionUpdateAppointmentStatus AuditAction = "UPDATE_APPOINTMENT_STATUS"
	//サービスの公開状態を切り替えた操作
	AuditActionUpdateServiceStatus AuditAction = "UPDATE_SERVICE_STATUS"
	//ユーザーのアカウント状態を変更した操作
	AuditActionUpdateUserStatus AuditAction = "UPDATE_USER_STATUS"
	//問い合わせステータスを切り替えた操作
	AuditActionUpdateEnquiryStatus AuditAction = "UPDATE_ENQUIRY_STATUS"
	//オファーの掲載状態を切り替えた操作
	AuditActionUpdateOfferStatus AuditAction = "UPDATE_OFFER_STATUS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct     AuditResourceType = "product"
	AuditResourceService     AuditResourceType = "service"
	AuditResourceOrder       AuditResourceType = "order"
	AuditResourceAppointment AuditResourceType = "appointment"
	AuditResourceUser        AuditResourceType = "user"
	AuditResourceEnquiry     AuditResourceType = "enquiry"
	AuditResourceOffer       AuditResourceType = "offer"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザー（主に管理者）のID
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//変更前後をJSON文字列で保存する
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
