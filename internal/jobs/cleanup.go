package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 1回の実行で処理する上限
const cleanupBatchSize = 100

// 定期ジョブのまとめ役。
// 決済待ちのまま放置された注文/予約の破棄と、期限切れrefresh tokenの掃除
type Scheduler struct {
	cron            *cron.Cron
	txManager       repo.TransactionManager
	orderRepo       repo.OrderRepository
	appointmentRepo repo.AppointmentRepository
	rtRepo          repo.RefreshTokenRepository
	pendingTTL      time.Duration
}

func NewScheduler(
	txManager repo.TransactionManager,
	orderRepo repo.OrderRepository,
	appointmentRepo repo.AppointmentRepository,
	rtRepo repo.RefreshTokenRepository,
	pendingTTL time.Duration,
) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		txManager:       txManager,
		orderRepo:       orderRepo,
		appointmentRepo: appointmentRepo,
		rtRepo:          rtRepo,
		pendingTTL:      pendingTTL,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.expireStalePayments); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 1h", s.purgeExpiredRefreshTokens); err != nil {
		return err
	}
	s.cron.Start()
	zap.L().Info("cleanup scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.L().Info("cleanup scheduler stopped")
}

// 決済待ちのまま放置されたONLINE注文と予約をキャンセルする
func (s *Scheduler) expireStalePayments() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	before := time.Now().Add(-s.pendingTTL)

	s.expireStaleOrders(ctx, before)
	s.expireStaleAppointments(ctx, before)
}

// 在庫を戻してキャンセル（注文ごとに独立したTx）
func (s *Scheduler) expireStaleOrders(ctx context.Context, before time.Time) {
	orders, err := s.orderRepo.ListStaleOnlineUnpaid(ctx, before, cleanupBatchSize)
	if err != nil {
		zap.L().Error("stale order scan failed", zap.Error(err))
		return
	}

	for _, o := range orders {
		orderID := o.ID
		err := s.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
			//Tx内で再取得（実行中にwebhookが来ているかもしれない）
			cur, err := r.Orders().FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			if cur.Status != model.OrderStatusPlaced {
				return nil
			}
			if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
				return err
			}
			return r.Inventory().IncreaseStock(ctx, cur.ProductID, cur.Quantity)
		})
		if err != nil {
			zap.L().Error("stale order expire failed", zap.Int64("order_id", orderID), zap.Error(err))
			continue
		}
		zap.L().Info("stale order expired", zap.Int64("order_id", orderID))
	}
}

func (s *Scheduler) expireStaleAppointments(ctx context.Context, before time.Time) {
	appointments, err := s.appointmentRepo.ListStalePaymentPending(ctx, before, cleanupBatchSize)
	if err != nil {
		zap.L().Error("stale appointment scan failed", zap.Error(err))
		return
	}

	for _, a := range appointments {
		if a.Status != model.AppointmentStatusPaymentPending {
			continue
		}
		if err := s.appointmentRepo.UpdateStatus(ctx, a.ID, model.AppointmentStatusCancelled); err != nil {
			zap.L().Error("stale appointment expire failed", zap.Int64("appointment_id", a.ID), zap.Error(err))
			continue
		}
		zap.L().Info("stale appointment expired", zap.Int64("appointment_id", a.ID))
	}
}

// 期限切れrefresh tokenを削除する
func (s *Scheduler) purgeExpiredRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	n, err := s.rtRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		zap.L().Error("refresh token purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("expired refresh tokens purged", zap.Int64("count", n))
	}
}
