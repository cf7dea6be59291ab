package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 予約ステータスの遷移表。
// 決済確定（PAYMENT_PENDING→CONFIRMED）はwebhook専用なのでadminには開放しない
var appointmentTransitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusPaymentPending: {model.AppointmentStatusCancelled},
	model.AppointmentStatusConfirmed:      {model.AppointmentStatusCompleted, model.AppointmentStatusCancelled},
}

func canTransitionAppointment(from, to model.AppointmentStatus) bool {
	for _, s := range appointmentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type AdminAppointmentUsecase struct {
	appointmentRepo repo.AppointmentRepository
	auditRepo       repo.AuditLogRepository
}

func NewAdminAppointmentUsecase(
	appointmentRepo repo.AppointmentRepository,
	auditRepo repo.AuditLogRepository,
) *AdminAppointmentUsecase {
	return &AdminAppointmentUsecase{
		appointmentRepo: appointmentRepo,
		auditRepo:       auditRepo,
	}
}

type AdminListAppointmentsInput struct {
	Page      int
	Limit     int
	Status    string
	ServiceID *int64
	UserID    *int64
	From      *time.Time
	To        *time.Time
}

func (u *AdminAppointmentUsecase) ListAppointments(ctx context.Context, in AdminListAppointmentsInput) (AppointmentListOutput, error) {
	if in.Page < 1 {
		return AppointmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AppointmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch model.AppointmentStatus(in.Status) {
	case "", model.AppointmentStatusPaymentPending, model.AppointmentStatusConfirmed,
		model.AppointmentStatusCompleted, model.AppointmentStatusCancelled:
	default:
		return AppointmentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	items, total, err := u.appointmentRepo.ListAdmin(ctx, repo.AdminAppointmentListFilter{
		Page:      in.Page,
		Limit:     in.Limit,
		Status:    in.Status,
		ServiceID: in.ServiceID,
		UserID:    in.UserID,
		From:      in.From,
		To:        in.To,
	})
	if err != nil {
		return AppointmentListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]AppointmentOutput, 0, len(items))
	for i := range items {
		outs = append(outs, toAppointmentOutput(&items[i]))
	}
	return AppointmentListOutput{Items: outs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *AdminAppointmentUsecase) GetAppointmentDetail(ctx context.Context, appointmentID int64) (AppointmentOutput, error) {
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
	return toAppointmentOutput(&a), nil
}

// 同じステータスへの再送は成功扱い
func (u *AdminAppointmentUsecase) UpdateAppointmentStatus(ctx context.Context, adminUserID int64, appointmentID int64, status string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if appointmentID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	next := model.AppointmentStatus(status)
	switch next {
	case model.AppointmentStatusCompleted, model.AppointmentStatusCancelled:
	default:
		//CONFIRMEDへはwebhookでしか進めない
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	a, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if a.Status == next {
		return nil
	}
	if !canTransitionAppointment(a.Status, next) {
		return NewHTTPError(http.StatusConflict, "invalid status transition")
	}

	if err := u.appointmentRepo.UpdateStatus(ctx, appointmentID, next); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateAppointmentStatus,
		ResourceType: model.AuditResourceAppointment,
		ResourceID:   appointmentID,
		BeforeJSON:   statusJSON(string(a.Status)),
		AfterJSON:    statusJSON(string(next)),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
