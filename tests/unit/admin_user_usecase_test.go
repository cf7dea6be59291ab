package unit

import (
	"app/internal/domain/model"
	"app/internal/usecase"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminUserFixture() (*AuthUserRepoMock, *AuthRTRepoMock, *AdminAuditRepoMock, *usecase.AdminUserUsecase) {
	users := new(AuthUserRepoMock)
	rts := new(AuthRTRepoMock)
	auditRepo := new(AdminAuditRepoMock)
	uc := usecase.NewAdminUserUsecase(users, rts, auditRepo)
	return users, rts, auditRepo, uc
}

// 自分自身の状態変更は禁止（締め出し事故防止）
func TestAdminUserUsecase_UpdateAccountStatus_SelfChangeRejected(t *testing.T) {
	_, _, _, uc := newAdminUserFixture()

	err := uc.UpdateAccountStatus(context.Background(), 99, 99, "SUSPENDED")
	assertErrContains(t, err, "cannot change own status")
}

// SUSPENDEDに落とすとトークンも無効化される
func TestAdminUserUsecase_UpdateAccountStatus_SuspendLocksOut(t *testing.T) {
	users, rts, auditRepo, uc := newAdminUserFixture()

	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:            5,
		AccountStatus: model.AccountStatusActive,
	}, nil)
	users.On("UpdateAccountStatus", mock.Anything, int64(5), model.AccountStatusSuspended).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(5)).Return(nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(5)).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 99 && l.ResourceID == 5
	})).Return(nil)

	err := uc.UpdateAccountStatus(context.Background(), 99, 5, "SUSPENDED")
	assert.NoError(t, err)

	users.AssertExpectations(t)
	rts.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

// ACTIVEへの復帰ではトークンは触らない
func TestAdminUserUsecase_UpdateAccountStatus_ReactivateKeepsTokens(t *testing.T) {
	users, rts, auditRepo, uc := newAdminUserFixture()

	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:            5,
		AccountStatus: model.AccountStatusSuspended,
	}, nil)
	users.On("UpdateAccountStatus", mock.Anything, int64(5), model.AccountStatusActive).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateAccountStatus(context.Background(), 99, 5, "ACTIVE")
	assert.NoError(t, err)

	users.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, mock.Anything)
	rts.AssertNotCalled(t, "DeleteAllByUserID", mock.Anything, mock.Anything)
}

// 冪等：変化なしは成功
func TestAdminUserUsecase_UpdateAccountStatus_SameStatusNoop(t *testing.T) {
	users, _, auditRepo, uc := newAdminUserFixture()

	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:            5,
		AccountStatus: model.AccountStatusSuspended,
	}, nil)

	err := uc.UpdateAccountStatus(context.Background(), 99, 5, "SUSPENDED")
	assert.NoError(t, err)

	users.AssertNotCalled(t, "UpdateAccountStatus", mock.Anything, mock.Anything, mock.Anything)
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUserUsecase_UpdateAccountStatus_UnknownStatus(t *testing.T) {
	_, _, _, uc := newAdminUserFixture()

	err := uc.UpdateAccountStatus(context.Background(), 99, 5, "BANNED")
	assertErrContains(t, err, "invalid account status")
}

func TestAdminUserUsecase_UpdateAccountStatus_UserNotFound(t *testing.T) {
	users, _, _, uc := newAdminUserFixture()

	users.On("FindByID", mock.Anything, int64(5)).Return(nil, nil)

	err := uc.UpdateAccountStatus(context.Background(), 99, 5, "SUSPENDED")
	assertErrContains(t, err, "not found")
}
