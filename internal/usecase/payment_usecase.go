package usecase

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
)

// PaymentUsecaseは署名検証済みのwebhookイベントをローカルの状態に反映する。
// ここ以外の経路で決済を確定させない
type PaymentUsecase struct {
	txManager repo.TransactionManager
}

func NewPaymentUsecase(txManager repo.TransactionManager) *PaymentUsecase {
	return &PaymentUsecase{txManager: txManager}
}

// HandleEventは同じイベントの再送に対して冪等。
// 処理できないイベントはackして捨てる（リトライ地獄を避ける）
func (u *PaymentUsecase) HandleEvent(ctx context.Context, ev payment.Event) error {
	if ev.Type != payment.EventPaymentSucceeded {
		zap.L().Debug("webhook event ignored", zap.String("type", ev.Type))
		return nil
	}

	if raw, ok := ev.Metadata["order_id"]; ok {
		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || orderID <= 0 {
			zap.L().Warn("webhook with bad order_id", zap.String("order_id", raw))
			return nil
		}
		return u.confirmOrder(ctx, orderID, ev)
	}

	if raw, ok := ev.Metadata["appointment_id"]; ok {
		appointmentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || appointmentID <= 0 {
			zap.L().Warn("webhook with bad appointment_id", zap.String("appointment_id", raw))
			return nil
		}
		return u.confirmAppointment(ctx, appointmentID, ev)
	}

	zap.L().Warn("webhook without target metadata", zap.String("payment_ref", ev.PaymentRef))
	return nil
}

func (u *PaymentUsecase) confirmOrder(ctx context.Context, orderID int64, ev payment.Event) error {
	return u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			zap.L().Warn("webhook for unknown order", zap.Int64("order_id", orderID))
			return nil
		}
		if err != nil {
			return err
		}

		//参照が一致しないイベントは反映しない
		if o.PaymentRef != "" && o.PaymentRef != ev.PaymentRef {
			zap.L().Warn("webhook payment_ref mismatch",
				zap.Int64("order_id", orderID),
				zap.String("got", ev.PaymentRef))
			return nil
		}

		//再送：すでに確定済みなら何もしない
		if o.Status == model.OrderStatusConfirmed || o.Status.IsTerminal() {
			return nil
		}
		if o.Status != model.OrderStatusPlaced {
			//SHIPPEDなどまで進んでいる＝過去に確定済み
			return nil
		}

		updated, err := r.Orders().MarkPaid(ctx, orderID, ev.PaymentID)
		if err != nil {
			return err
		}
		if !updated {
			//確定の直前にキャンセル等で状態が動いた。上書きしない
			zap.L().Warn("order moved before payment confirm",
				zap.Int64("order_id", orderID),
				zap.String("payment_id", ev.PaymentID))
			return nil
		}
		zap.L().Info("order payment confirmed",
			zap.Int64("order_id", orderID),
			zap.String("payment_id", ev.PaymentID))
		return nil
	})
}

func (u *PaymentUsecase) confirmAppointment(ctx context.Context, appointmentID int64, ev payment.Event) error {
	return u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Appointments().FindByID(ctx, appointmentID)
		if err == repo.ErrNotFound {
			zap.L().Warn("webhook for unknown appointment", zap.Int64("appointment_id", appointmentID))
			return nil
		}
		if err != nil {
			return err
		}

		if a.PaymentRef != "" && a.PaymentRef != ev.PaymentRef {
			zap.L().Warn("webhook payment_ref mismatch",
				zap.Int64("appointment_id", appointmentID),
				zap.String("got", ev.PaymentRef))
			return nil
		}

		if a.Status == model.AppointmentStatusConfirmed || a.Status.IsTerminal() {
			return nil
		}

		updated, err := r.Appointments().MarkPaid(ctx, appointmentID, ev.PaymentID, ev.Amount)
		if err != nil {
			return err
		}
		if !updated {
			zap.L().Warn("appointment moved before payment confirm",
				zap.Int64("appointment_id", appointmentID),
				zap.String("payment_id", ev.PaymentID))
			return nil
		}
		zap.L().Info("appointment payment confirmed",
			zap.Int64("appointment_id", appointmentID),
			zap.String("payment_id", ev.PaymentID))
		return nil
	})
}
