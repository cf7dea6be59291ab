package handler

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"app/internal/payment"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// webhookのbody上限（署名検証前に読むので制限する）
const webhookMaxBody = 64 << 10

// /webhooks/payment。決済ゲートウェイからの通知だけを受ける。
// 認証は署名検証のみ（JWT不要）
type PaymentWebhookHandler struct {
	gateway payment.Gateway
	uc      *usecase.PaymentUsecase
}

func NewPaymentWebhookHandler(gateway payment.Gateway, uc *usecase.PaymentUsecase) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		gateway: gateway,
		uc:      uc,
	}
}

func (h *PaymentWebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/payment", h.handle)
}

func (h *PaymentWebhookHandler) handle(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	ev, err := h.gateway.VerifyWebhook(payload, sig)
	if err != nil {
		//署名が合わないものは処理しない
		zap.L().Warn("webhook signature verification failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid signature"})
	}

	if err := h.uc.HandleEvent(c.Request().Context(), ev); err != nil {
		//500を返せばゲートウェイ側がリトライする
		zap.L().Error("webhook handling failed", zap.String("type", ev.Type), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
