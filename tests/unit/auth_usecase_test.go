package unit

import (
	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mocks（auth向け：衝突回避の命名）
// =====================

type AuthUserRepoMock struct{ mock.Mock }

func (m *AuthUserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *AuthUserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *AuthUserRepoMock) UpdateAccountStatus(ctx context.Context, userID int64, status model.AccountStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *AuthUserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *AuthUserRepoMock) List(ctx context.Context, q repo.UserListQuery) ([]model.User, int64, error) {
	panic("not used in AuthUsecase tests")
}

type AuthRTRepoMock struct{ mock.Mock }

func (m *AuthRTRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *AuthRTRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *AuthRTRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *AuthRTRepoMock) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	panic("not used in AuthUsecase tests")
}

func (m *AuthRTRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *AuthRTRepoMock) DeleteByID(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *AuthRTRepoMock) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	panic("not used in AuthUsecase tests")
}

// validatorは素通しのスタブで、usecase本体の分岐だけを見る
type authStubValidator struct{}

func (v *authStubValidator) ValidateRegister(ctx context.Context, email, password, name string) error {
	return nil
}
func (v *authStubValidator) ValidateLogin(ctx context.Context, email, password string) error {
	return nil
}
func (v *authStubValidator) ValidateRefresh(ctx context.Context, refreshToken, userAgent string) error {
	return nil
}
func (v *authStubValidator) ValidateLogout(ctx context.Context) error { return nil }
func (v *authStubValidator) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	return nil
}

func newAuthFixture() (*AuthUserRepoMock, *AuthRTRepoMock, *usecase.AuthUsecase) {
	users := new(AuthUserRepoMock)
	rts := new(AuthRTRepoMock)
	cfg := config.Config{JWTSecret: "test-secret"}
	uc := usecase.NewAuthUsecase(cfg, users, rts, &authStubValidator{})
	return users, rts, uc
}

func mustHashPassword(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(h)
}

// =====================
// Register
// =====================

// パスワードは平文で保存されない
func TestAuthUsecase_Register_HashesPassword(t *testing.T) {
	users, _, uc := newAuthFixture()

	var saved *model.User
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved, _ = args.Get(1).(*model.User)
	}).Return(nil)

	res, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "u@example.com",
		Password: "password123",
		Name:     "Taro",
	})
	assert.NoError(t, err)
	assert.Equal(t, "u@example.com", res.User.Email)
	assert.Equal(t, "USER", res.User.Role)
	assert.Equal(t, "ACTIVE", res.User.AccountStatus)

	if assert.NotNil(t, saved) {
		assert.NotEqual(t, "password123", saved.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("password123")))
	}
}

// email重複などCreate失敗はConflict
func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	users, _, uc := newAuthFixture()

	users.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "u@example.com",
		Password: "password123",
		Name:     "Taro",
	})
	assert.ErrorIs(t, err, usecase.ErrConflict)
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	users, rts, uc := newAuthFixture()

	users.On("FindByEmail", mock.Anything, "u@example.com").Return(&model.User{
		ID:            1,
		Email:         "u@example.com",
		PasswordHash:  mustHashPassword(t, "correct-password"),
		Role:          model.RoleUser,
		AccountStatus: model.AccountStatusActive,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "u@example.com",
		Password: "wrong-password",
	}, "ua-test")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	// 失敗時にrefresh tokenは発行されない
	rts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Login_SuspendedUser(t *testing.T) {
	users, _, uc := newAuthFixture()

	users.On("FindByEmail", mock.Anything, "u@example.com").Return(&model.User{
		ID:            1,
		Email:         "u@example.com",
		PasswordHash:  mustHashPassword(t, "password123"),
		Role:          model.RoleUser,
		AccountStatus: model.AccountStatusSuspended,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "u@example.com",
		Password: "password123",
	}, "ua-test")
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	users, rts, uc := newAuthFixture()

	users.On("FindByEmail", mock.Anything, "u@example.com").Return(&model.User{
		ID:            1,
		Email:         "u@example.com",
		PasswordHash:  mustHashPassword(t, "password123"),
		Role:          model.RoleUser,
		TokenVersion:  3,
		AccountStatus: model.AccountStatusActive,
	}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	rts.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		// DBには平文ではなくhashが入る
		return rt.UserID == 1 && rt.TokenHash != "" && rt.UserAgent == "ua-test" && rt.UsedAt == nil
	})).Return(nil)

	res, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "u@example.com",
		Password: "password123",
	}, "ua-test")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.Token.AccessToken)
	assert.Equal(t, 3, res.Body.Token.TokenVersion)
	assert.NotEmpty(t, res.RefreshTokenPlain)
	assert.NotEmpty(t, res.CsrfTokenPlain)

	rts.AssertExpectations(t)
}

// =====================
// Refresh
// =====================

func TestAuthUsecase_Refresh_ExpiredTokenDeleted(t *testing.T) {
	_, rts, uc := newAuthFixture()

	past := time.Now().Add(-time.Hour)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: past,
	}, nil)
	rts.On("DeleteByID", mock.Anything, "rt-1").Return(nil)

	_, err := uc.Refresh(context.Background(), "some-plain-token", "ua-test")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	rts.AssertExpectations(t)
}

// 使用済みtokenの再提示＝replay。全セッションを落とす
func TestAuthUsecase_Refresh_ReplayPurgesAllSessions(t *testing.T) {
	_, rts, uc := newAuthFixture()

	used := time.Now().Add(-time.Minute)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &used,
	}, nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	_, err := uc.Refresh(context.Background(), "some-plain-token", "ua-test")
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)

	rts.AssertExpectations(t)
}

// user_agentが変わっていたら再認証扱い
func TestAuthUsecase_Refresh_UserAgentMismatch(t *testing.T) {
	_, rts, uc := newAuthFixture()

	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(time.Hour),
		UserAgent: "ua-original",
	}, nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	_, err := uc.Refresh(context.Background(), "some-plain-token", "ua-other")
	assert.ErrorIs(t, err, usecase.ErrSecurityIncident)

	rts.AssertExpectations(t)
}

// 正常系：旧tokenがusedになり、新しいtokenが発行される（回転）
func TestAuthUsecase_Refresh_RotatesToken(t *testing.T) {
	users, rts, uc := newAuthFixture()

	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(time.Hour),
		UserAgent: "ua-test",
	}, nil)
	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:            1,
		Email:         "u@example.com",
		Role:          model.RoleUser,
		TokenVersion:  2,
		AccountStatus: model.AccountStatusActive,
	}, nil)
	rts.On("MarkUsed", mock.Anything, "rt-1", mock.Anything).Return(nil)
	rts.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.ID != "rt-1" && rt.UserID == 1 && rt.TokenHash != ""
	})).Return(nil)

	res, err := uc.Refresh(context.Background(), "some-plain-token", "ua-test")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.AccessToken)
	assert.Equal(t, 2, res.Body.TokenVersion)
	assert.NotEmpty(t, res.RefreshTokenPlain)

	rts.AssertExpectations(t)
}

// =====================
// ForceLogout
// =====================

func TestAuthUsecase_ForceLogout(t *testing.T) {
	users, rts, uc := newAuthFixture()

	users.On("IncrementTokenVersion", mock.Anything, int64(5)).Return(nil)
	rts.On("DeleteAllByUserID", mock.Anything, int64(5)).Return(nil)
	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID:           5,
		TokenVersion: 4,
	}, nil)

	res, err := uc.ForceLogout(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), res.UserID)
	assert.Equal(t, 4, res.NewTokenVersion)

	users.AssertExpectations(t)
	rts.AssertExpectations(t)
}
