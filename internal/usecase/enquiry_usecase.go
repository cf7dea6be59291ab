package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type EnquiryUsecase struct {
	enquiryRepo repo.EnquiryRepository
	auditRepo   repo.AuditLogRepository
}

func NewEnquiryUsecase(enquiryRepo repo.EnquiryRepository, auditRepo repo.AuditLogRepository) *EnquiryUsecase {
	return &EnquiryUsecase{
		enquiryRepo: enquiryRepo,
		auditRepo:   auditRepo,
	}
}

type CreateEnquiryInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

type EnquiryListOutput struct {
	Items []model.Enquiry `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *EnquiryUsecase) CreateEnquiry(ctx context.Context, userID int64, in CreateEnquiryInput) (int64, error) {
	if userID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if strings.TrimSpace(in.Message) == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "message required")
	}
	if len(in.Message) > 5000 {
		return 0, NewHTTPError(http.StatusBadRequest, "message too long")
	}

	id, err := u.enquiryRepo.Create(ctx, model.Enquiry{
		UserID:  userID,
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
		Status:  model.EnquiryStatusOpen,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return id, nil
}

func (u *EnquiryUsecase) ListMyEnquiries(ctx context.Context, userID int64, page, limit int) (EnquiryListOutput, error) {
	if userID <= 0 {
		return EnquiryListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return EnquiryListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return EnquiryListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.enquiryRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return EnquiryListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return EnquiryListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *EnquiryUsecase) AdminListEnquiries(ctx context.Context, page, limit int, status string) (EnquiryListOutput, error) {
	if page < 1 {
		return EnquiryListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return EnquiryListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch model.EnquiryStatus(status) {
	case "", model.EnquiryStatusOpen, model.EnquiryStatusResolved:
	default:
		return EnquiryListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	items, total, err := u.enquiryRepo.List(ctx, repo.EnquiryListFilter{
		Page:   page,
		Limit:  limit,
		Status: status,
	})
	if err != nil {
		return EnquiryListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return EnquiryListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// OPEN⇄RESOLVEDの切り替え。同じステータスへの再送は成功扱い
func (u *EnquiryUsecase) AdminUpdateEnquiryStatus(ctx context.Context, adminUserID int64, enquiryID int64, status string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if enquiryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid enquiry id")
	}
	next := model.EnquiryStatus(status)
	if next != model.EnquiryStatusOpen && next != model.EnquiryStatusResolved {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	e, err := u.enquiryRepo.FindByID(ctx, enquiryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if e.Status == next {
		return nil
	}

	if err := u.enquiryRepo.UpdateStatus(ctx, enquiryID, next); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateEnquiryStatus,
		ResourceType: model.AuditResourceEnquiry,
		ResourceID:   enquiryID,
		BeforeJSON:   statusJSON(string(e.Status)),
		AfterJSON:    statusJSON(string(next)),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
