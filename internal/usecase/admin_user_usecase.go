package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminUserUsecase struct {
	userRepo  repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminUserUsecase(
	userRepo repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	auditRepo repo.AuditLogRepository,
) *AdminUserUsecase {
	return &AdminUserUsecase{
		userRepo:  userRepo,
		rtRepo:    rtRepo,
		auditRepo: auditRepo,
	}
}

type AdminListUsersInput struct {
	Page          int
	Limit         int
	Q             string
	AccountStatus string
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *AdminUserUsecase) ListUsers(ctx context.Context, in AdminListUsersInput) (UserListOutput, error) {
	if in.Page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch model.AccountStatus(in.AccountStatus) {
	case "", model.AccountStatusActive, model.AccountStatusSuspended, model.AccountStatusDeactivated:
	default:
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid account status")
	}

	items, total, err := u.userRepo.List(ctx, repo.UserListQuery{
		Page:          in.Page,
		Limit:         in.Limit,
		Q:             strings.TrimSpace(in.Q),
		AccountStatus: in.AccountStatus,
	})
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]UserDTO, 0, len(items))
	for i := range items {
		outs = append(outs, toUserDTO(&items[i]))
	}
	return UserListOutput{Items: outs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// UpdateAccountStatusはアカウント状態を変更する。
// ACTIVE以外に落とすときはトークンも無効化して即締め出す
func (u *AdminUserUsecase) UpdateAccountStatus(ctx context.Context, adminUserID int64, targetUserID int64, status string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	//自分自身は変更禁止（締め出し事故防止）
	if targetUserID == adminUserID {
		return NewHTTPError(http.StatusBadRequest, "cannot change own status")
	}
	next := model.AccountStatus(status)
	switch next {
	case model.AccountStatusActive, model.AccountStatusSuspended, model.AccountStatusDeactivated:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid account status")
	}

	target, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if target == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	//冪等：変化なしは成功
	if target.AccountStatus == next {
		return nil
	}

	if err := u.userRepo.UpdateAccountStatus(ctx, targetUserID, next); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//締め出し：token_versionを進めてrefreshも全削除
	if next != model.AccountStatusActive {
		if err := u.userRepo.IncrementTokenVersion(ctx, targetUserID); err != nil {
			zap.L().Error("token version bump failed", zap.Int64("user_id", targetUserID), zap.Error(err))
		}
		if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
			zap.L().Error("refresh token purge failed", zap.Int64("user_id", targetUserID), zap.Error(err))
		}
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateUserStatus,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   statusJSON(string(target.AccountStatus)),
		AfterJSON:    statusJSON(string(next)),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
