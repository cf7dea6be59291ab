package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// 登録→ログイン→/auth/me→refresh→ログアウトの一連の流れ
func TestAuth_FullFlow(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	email := fmt.Sprintf("auth-flow-%d@example.com", time.Now().UnixNano())

	b := mustMarshal(t, RegisterRequest{
		Email:    email,
		Password: "password123",
		Name:     "E2E Auth",
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", nil, b)
	requireStatus(t, resp, http.StatusOK, body)

	// 同じメールは409
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", nil, b)
	requireStatus(t, resp, http.StatusConflict, body)

	// パスワード誤りは401
	b = mustMarshal(t, LoginRequest{Email: email, Password: "wrong-password"})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", nil, b)
	requireStatus(t, resp, http.StatusUnauthorized, body)

	b = mustMarshal(t, LoginRequest{Email: email, Password: "password123"})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", nil, b)
	requireStatus(t, resp, http.StatusOK, body)

	var login AuthLoginResponse
	mustUnmarshal(t, body, &login)
	if login.User.Role != "USER" {
		t.Errorf("role=%s want USER", login.User.Role)
	}
	if login.User.AccountStatus != "ACTIVE" {
		t.Errorf("account_status=%s want ACTIVE", login.User.AccountStatus)
	}

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/auth/me", login.Token.AccessToken, nil, nil)
	requireStatus(t, resp, http.StatusOK, body)

	var me UserDTO
	mustUnmarshal(t, body, &me)
	if me.Email != email {
		t.Errorf("email=%s want %s", me.Email, email)
	}

	// cookiejarがrefresh cookieを運ぶ
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/refresh", "", nil, nil)
	requireStatus(t, resp, http.StatusOK, body)

	var refreshed AuthLoginResponse
	mustUnmarshal(t, body, &refreshed)
	if refreshed.Token.AccessToken == "" {
		t.Fatalf("refreshed access token empty: body=%s", string(body))
	}

	// 新しいaccess tokenで保護エンドポイントに届く
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/auth/me", refreshed.Token.AccessToken, nil, nil)
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/logout", "", nil, nil)
	requireStatus(t, resp, http.StatusOK, body)

	// ログアウト後のrefreshは401
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/refresh", "", nil, nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}

// tokenなしでは保護エンドポイントに入れない
func TestAuth_ProtectedWithoutToken(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/auth/me", "", nil, nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders", "", nil, nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}

// 一般ユーザーはadminエンドポイントに入れない
func TestAuth_AdminOnlyGuard(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	access := registerAndLogin(t, c, ctx, "auth-nonadmin")

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/admin/orders", access, nil, nil)
	requireStatus(t, resp, http.StatusForbidden, body)
}
