package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ServiceUsecase struct {
	serviceRepo repo.ServiceRepository
	auditRepo   repo.AuditLogRepository
}

func NewServiceUsecase(serviceRepo repo.ServiceRepository, auditRepo repo.AuditLogRepository) *ServiceUsecase {
	return &ServiceUsecase{
		serviceRepo: serviceRepo,
		auditRepo:   auditRepo,
	}
}

type ListServicesInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	//adminのみ指定可。publicは常にACTIVE固定
	Status string
}

type ServiceListOutput struct {
	Items []model.Service `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ServiceUsecase) ListPublicServices(ctx context.Context, in ListServicesInput) (ServiceListOutput, error) {
	if in.Page < 1 {
		return ServiceListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ServiceListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.serviceRepo.List(ctx, repo.ServiceListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		Status:   string(model.ServiceStatusActive),
	})
	if err != nil {
		return ServiceListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ServiceListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 非公開サービスは404扱い
func (u *ServiceUsecase) GetServiceDetail(ctx context.Context, serviceID int64) (model.Service, error) {
	if serviceID <= 0 {
		return model.Service{}, NewHTTPError(http.StatusBadRequest, "invalid service id")
	}

	s, err := u.serviceRepo.FindByID(ctx, serviceID)
	if err == repo.ErrNotFound {
		return model.Service{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Service{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if s.Status != model.ServiceStatusActive {
		return model.Service{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return s, nil
}

func (u *ServiceUsecase) AdminListServices(ctx context.Context, in ListServicesInput) (ServiceListOutput, error) {
	if in.Page < 1 {
		return ServiceListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ServiceListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch in.Status {
	case "", string(model.ServiceStatusActive), string(model.ServiceStatusInactive):
	default:
		return ServiceListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	items, total, err := u.serviceRepo.List(ctx, repo.ServiceListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		Status:   in.Status,
	})
	if err != nil {
		return ServiceListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ServiceListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

type AdminServiceInput struct {
	Name            string
	Category        string
	Description     string
	Price           *int64
	DurationMinutes *int64
}

func (u *ServiceUsecase) AdminCreateService(ctx context.Context, adminUserID int64, in AdminServiceInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateServiceInput(in); err != nil {
		return 0, err
	}

	s, err := u.serviceRepo.Create(ctx, model.Service{
		Name:            strings.TrimSpace(in.Name),
		Category:        strings.TrimSpace(in.Category),
		Description:     in.Description,
		Status:          model.ServiceStatusActive,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s.ID, nil
}

func (u *ServiceUsecase) AdminUpdateService(ctx context.Context, adminUserID int64, serviceID int64, in AdminServiceInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if serviceID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	if err := validateServiceInput(in); err != nil {
		return err
	}

	current, err := u.serviceRepo.FindByID(ctx, serviceID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	current.Name = strings.TrimSpace(in.Name)
	current.Category = strings.TrimSpace(in.Category)
	current.Description = in.Description
	current.Price = in.Price
	current.DurationMinutes = in.DurationMinutes
	current.UpdatedAt = time.Now()

	if err := u.serviceRepo.Update(ctx, current); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 同じステータスへの変更は何もしない
func (u *ServiceUsecase) AdminUpdateServiceStatus(ctx context.Context, adminUserID int64, serviceID int64, status string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if serviceID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	next := model.ServiceStatus(status)
	if next != model.ServiceStatusActive && next != model.ServiceStatusInactive {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	current, err := u.serviceRepo.FindByID(ctx, serviceID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if current.Status == next {
		return nil
	}

	if err := u.serviceRepo.UpdateStatus(ctx, serviceID, next); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateServiceStatus,
		ResourceType: model.AuditResourceService,
		ResourceID:   serviceID,
		BeforeJSON:   statusJSON(string(current.Status)),
		AfterJSON:    statusJSON(string(next)),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ServiceUsecase) AdminDeleteService(ctx context.Context, adminUserID int64, serviceID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if serviceID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid service id")
	}

	err := u.serviceRepo.SoftDelete(ctx, serviceID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateServiceInput(in AdminServiceInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "category required")
	}
	if in.Price != nil && *in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return NewHTTPError(http.StatusBadRequest, "duration_minutes must be > 0")
	}
	return nil
}

// 監査ログ用の {"status":"..."} を作る
func statusJSON(status string) string {
	b, _ := json.Marshal(map[string]string{"status": status})
	return string(b)
}
