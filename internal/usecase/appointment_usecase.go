package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
)

type AppointmentUsecase struct {
	txManager       repo.TransactionManager
	appointmentRepo repo.AppointmentRepository
	serviceRepo     repo.ServiceRepository
	gateway         payment.Gateway
	currency        string
	//予約は固定料金の前払い
	fee int64
}

func NewAppointmentUsecase(
	txManager repo.TransactionManager,
	appointmentRepo repo.AppointmentRepository,
	serviceRepo repo.ServiceRepository,
	gateway payment.Gateway,
	currency string,
	fee int64,
) *AppointmentUsecase {
	return &AppointmentUsecase{
		txManager:       txManager,
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		gateway:         gateway,
		currency:        currency,
		fee:             fee,
	}
}

type BookAppointmentInput struct {
	ServiceID    int64
	CustomerName string
	Email        string
	Phone        string
	Address      string
	ScheduledAt  time.Time
}

type AppointmentOutput struct {
	ID           int64     `json:"id"`
	ServiceID    int64     `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	CustomerName string    `json:"customer_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Status       string    `json:"status"`
	PaymentID    string    `json:"payment_id,omitempty"`
	PricePaid    int64     `json:"price_paid"`
	CreatedAt    time.Time `json:"created_at"`

	//作成直後だけ返す
	ClientSecret string `json:"client_secret,omitempty"`
	Fee          int64  `json:"fee,omitempty"`
}

type AppointmentListOutput struct {
	Items []AppointmentOutput `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// BookAppointmentは予約をPAYMENT_PENDINGで作成し、前払い用の決済を発行する。
// CONFIRMEDへの昇格はwebhook確定のみ
func (u *AppointmentUsecase) BookAppointment(ctx context.Context, userID int64, in BookAppointmentInput) (AppointmentOutput, error) {
	if userID <= 0 {
		return AppointmentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ServiceID <= 0 {
		return AppointmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return AppointmentOutput{}, NewHTTPError(http.StatusBadRequest, "customer_name required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return AppointmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return AppointmentOutput{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return AppointmentOutput{}, NewHTTPError(http.StatusBadRequest, "address required")
	}
	if in.ScheduledAt.Before(time.Now()) {
		return AppointmentOutput{}, NewHTTPError(http.StatusBadRequest, "scheduled_at must be future")
	}

	svc, err := u.serviceRepo.FindByID(ctx, in.ServiceID)
	if err == repo.ErrNotFound {
		return AppointmentOutput{}, NewHTTPError(http.StatusNotFound, "service not found")
	}
	if err != nil {
		return AppointmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if svc.Status != model.ServiceStatusActive {
		return AppointmentOutput{}, NewHTTPError(http.StatusNotFound, "service not found")
	}

	a := model.Appointment{
		UserID:              userID,
		ServiceID:           svc.ID,
		ServiceNameSnapshot: svc.Name,
		CustomerName:        strings.TrimSpace(in.CustomerName),
		Email:               strings.TrimSpace(in.Email),
		Phone:               strings.TrimSpace(in.Phone),
		Address:             strings.TrimSpace(in.Address),
		ScheduledAt:         in.ScheduledAt,
		Status:              model.AppointmentStatusPaymentPending,
	}
	appointmentID, err := u.appointmentRepo.Create(ctx, a)
	if err != nil {
		return AppointmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	a.ID = appointmentID
	a.CreatedAt = time.Now()

	intent, err := u.gateway.CreateIntent(ctx, u.fee, u.currency, map[string]string{
		"appointment_id": strconv.FormatInt(appointmentID, 10),
	})
	if err != nil {
		zap.L().Error("payment intent create failed", zap.Int64("appointment_id", appointmentID), zap.Error(err))
		//決済が作れなければ予約は不成立
		if cErr := u.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusCancelled); cErr != nil {
			zap.L().Error("appointment cancel failed", zap.Int64("appointment_id", appointmentID), zap.Error(cErr))
		}
		return AppointmentOutput{}, NewHTTPError(http.StatusBadGateway, "payment init failed")
	}
	if err := u.appointmentRepo.SetPaymentRef(ctx, appointmentID, intent.Ref); err != nil {
		return AppointmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := toAppointmentOutput(&a)
	out.ClientSecret = intent.ClientSecret
	out.Fee = u.fee
	return out, nil
}

func (u *AppointmentUsecase) ListMyAppointments(ctx context.Context, userID int64, page, limit int) (AppointmentListOutput, error) {
	if userID <= 0 {
		return AppointmentListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return AppointmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return AppointmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.appointmentRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return AppointmentListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]AppointmentOutput, 0, len(items))
	for i := range items {
		outs = append(outs, toAppointmentOutput(&items[i]))
	}
	return AppointmentListOutput{Items: outs, Total: total, Page: page, Limit: limit}, nil
}

func (u *AppointmentUsecase) GetMyAppointmentDetail(ctx context.Context, userID int64, appointmentID int64) (AppointmentOutput, error) {
	if userID <= 0 {
		return AppointmentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if appointmentID <= 0 {
		return AppointmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	a, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err == repo.ErrNotFound {
		return AppointmentOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return AppointmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if a.UserID != userID {
		return AppointmentOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return toAppointmentOutput(&a), nil
}

// 自分の予約のキャンセル。決済待ちの間だけ許す。
// webhook確定と同じTx経路を通して、確認と書き込みの間に確定が割り込まないようにする
func (u *AppointmentUsecase) CancelMyAppointment(ctx context.Context, userID int64, appointmentID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if appointmentID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Appointments().FindByID(ctx, appointmentID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if a.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if a.Status == model.AppointmentStatusCancelled {
			return nil
		}
		if a.Status != model.AppointmentStatusPaymentPending {
			return NewHTTPError(http.StatusConflict, "cannot cancel")
		}

		return r.Appointments().UpdateStatus(ctx, appointmentID, model.AppointmentStatusCancelled)
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return err
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toAppointmentOutput(a *model.Appointment) AppointmentOutput {
	return AppointmentOutput{
		ID:           a.ID,
		ServiceID:    a.ServiceID,
		ServiceName:  a.ServiceNameSnapshot,
		CustomerName: a.CustomerName,
		Email:        a.Email,
		Phone:        a.Phone,
		Address:      a.Address,
		ScheduledAt:  a.ScheduledAt,
		Status:       string(a.Status),
		PaymentID:    a.PaymentID,
		PricePaid:    a.PricePaid,
		CreatedAt:    a.CreatedAt,
	}
}
