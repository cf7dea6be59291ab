package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OfferUsecase struct {
	offerRepo repo.OfferRepository
	auditRepo repo.AuditLogRepository
}

func NewOfferUsecase(offerRepo repo.OfferRepository, auditRepo repo.AuditLogRepository) *OfferUsecase {
	return &OfferUsecase{
		offerRepo: offerRepo,
		auditRepo: auditRepo,
	}
}

type OfferListOutput struct {
	Items []model.Offer `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 公開中（ACTIVEかつ掲載期間内）のみ
func (u *OfferUsecase) ListLiveOffers(ctx context.Context) ([]model.Offer, error) {
	items, err := u.offerRepo.ListLive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if items == nil {
		items = []model.Offer{}
	}
	return items, nil
}

func (u *OfferUsecase) AdminListOffers(ctx context.Context, page, limit int) (OfferListOutput, error) {
	if page < 1 {
		return OfferListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OfferListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.offerRepo.ListAll(ctx, page, limit)
	if err != nil {
		return OfferListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OfferListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

type AdminOfferInput struct {
	Title              string
	Description        string
	DiscountPercentage int64
	StartsAt           *time.Time
	EndsAt             *time.Time
}

func (u *OfferUsecase) AdminCreateOffer(ctx context.Context, adminUserID int64, in AdminOfferInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateOfferInput(in); err != nil {
		return 0, err
	}

	o, err := u.offerRepo.Create(ctx, model.Offer{
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		DiscountPercentage: in.DiscountPercentage,
		Status:             model.OfferStatusActive,
		StartsAt:           in.StartsAt,
		EndsAt:             in.EndsAt,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return o.ID, nil
}

func (u *OfferUsecase) AdminUpdateOffer(ctx context.Context, adminUserID int64, offerID int64, in AdminOfferInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if offerID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid offer id")
	}
	if err := validateOfferInput(in); err != nil {
		return err
	}

	current, err := u.offerRepo.FindByID(ctx, offerID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	current.Title = strings.TrimSpace(in.Title)
	current.Description = in.Description
	current.DiscountPercentage = in.DiscountPercentage
	current.StartsAt = in.StartsAt
	current.EndsAt = in.EndsAt
	current.UpdatedAt = time.Now()

	if err := u.offerRepo.Update(ctx, current); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *OfferUsecase) AdminUpdateOfferStatus(ctx context.Context, adminUserID int64, offerID int64, status string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if offerID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid offer id")
	}
	next := model.OfferStatus(status)
	if next != model.OfferStatusActive && next != model.OfferStatusInactive {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	current, err := u.offerRepo.FindByID(ctx, offerID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if current.Status == next {
		return nil
	}

	if err := u.offerRepo.UpdateStatus(ctx, offerID, next); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateOfferStatus,
		ResourceType: model.AuditResourceOffer,
		ResourceID:   offerID,
		BeforeJSON:   statusJSON(string(current.Status)),
		AfterJSON:    statusJSON(string(next)),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *OfferUsecase) AdminDeleteOffer(ctx context.Context, adminUserID int64, offerID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if offerID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid offer id")
	}

	err := u.offerRepo.SoftDelete(ctx, offerID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateOfferInput(in AdminOfferInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if in.DiscountPercentage < 0 || in.DiscountPercentage > 90 {
		return NewHTTPError(http.StatusBadRequest, "discount_percentage must be 0-90")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return NewHTTPError(http.StatusBadRequest, "ends_at must be after starts_at")
	}
	return nil
}
