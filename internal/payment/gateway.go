package payment

import (
	"context"
	"errors"
)

// 署名検証に失敗したwebhook
var ErrInvalidSignature = errors.New("invalid webhook signature")

// 決済確定イベント
const EventPaymentSucceeded = "payment_intent.succeeded"

// サーバー側で作成した決済の参照。
// ClientSecretだけをフロントに渡す
type Intent struct {
	Ref          string
	ClientSecret string
}

// 署名検証済みのwebhookイベント
type Event struct {
	Type       string
	PaymentRef string
	PaymentID  string
	Amount     int64
	Metadata   map[string]string
}

// 決済ゲートウェイの約束。
// ローカルのステータスはここを通った確定イベントでしか進めない
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (Intent, error)
	VerifyWebhook(payload []byte, sigHeader string) (Event, error)
}
