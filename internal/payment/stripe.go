package payment

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

type StripeGateway struct {
	sc            *client.API
	webhookSecret string
}

// DI
func NewStripeGateway(secretKey string, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeGateway{
		sc:            sc,
		webhookSecret: webhookSecret,
	}
}

// PaymentIntentをサーバー側で作成する。
// metadataにorder_id/appointment_idを入れてwebhookで突き合わせる
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, err
	}

	return Intent{
		Ref:          pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// 署名を検証してからイベントを返す。
// 検証できないpayloadは中身を見ずに弾く
func (g *StripeGateway) VerifyWebhook(payload []byte, sigHeader string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return Event{}, ErrInvalidSignature
	}

	out := Event{Type: string(ev.Type)}

	if out.Type != EventPaymentSucceeded {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return Event{}, err
	}

	out.PaymentRef = pi.ID
	out.PaymentID = pi.ID
	out.Amount = pi.Amount
	out.Metadata = pi.Metadata

	if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
		out.PaymentID = pi.LatestCharge.ID
	}

	return out, nil
}
