package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"testing"
	"time"
)

// E2E_BASE_URLが設定されているときだけ走る。
// ローカルは docker compose up でAPIとDBを立ててから実行する
type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("E2E_BASE_URL not set; skipping e2e test")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type UserDTO struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	TokenVersion  int    `json:"token_version"`
	AccountStatus string `json:"account_status"`
}

type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthLoginResponse struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddressCreateRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postal_code"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
}

type AddressDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	IsDefault  bool   `json:"is_default"`
	PostalCode string `json:"postal_code"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	headers map[string]string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return b
}

func mustUnmarshal(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, string(body))
	}
}

// 新規ユーザーを登録してログインし、access tokenを返す
func registerAndLogin(t *testing.T, c *TestClient, ctx context.Context, prefix string) string {
	t.Helper()

	email := fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())

	b := mustMarshal(t, RegisterRequest{
		Email:    email,
		Password: "password123",
		Name:     "E2E User",
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", nil, b)
	requireStatus(t, resp, http.StatusOK, body)

	b = mustMarshal(t, LoginRequest{Email: email, Password: "password123"})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", nil, b)
	requireStatus(t, resp, http.StatusOK, body)

	var login AuthLoginResponse
	mustUnmarshal(t, body, &login)
	if strings.TrimSpace(login.Token.AccessToken) == "" {
		t.Fatalf("access token is empty: body=%s", string(body))
	}

	return login.Token.AccessToken
}

// 管理者でログインしてaccess_tokenを取得（seedされた管理者が前提）
func adminLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()

	email := os.Getenv("E2E_ADMIN_EMAIL")
	password := os.Getenv("E2E_ADMIN_PASSWORD")
	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "password123"
	}

	b := mustMarshal(t, LoginRequest{Email: email, Password: password})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", nil, b)
	requireStatus(t, resp, http.StatusOK, body)

	var login AuthLoginResponse
	mustUnmarshal(t, body, &login)
	if login.User.Role != "ADMIN" {
		t.Fatalf("expected ADMIN login, got role=%s", login.User.Role)
	}

	return login.Token.AccessToken
}

// 配送先住所を1件作ってIDを返す
func createAddress(t *testing.T, c *TestClient, ctx context.Context, access string) int64 {
	t.Helper()

	b := mustMarshal(t, AddressCreateRequest{
		Name:       "E2E Receiver",
		Phone:      "09012345678",
		PostalCode: "100-0001",
		Line1:      "1-1-1",
		City:       "Chiyoda",
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/me/addresses", access, nil, b)
	requireStatus(t, resp, http.StatusOK, body)

	var addr AddressDTO
	mustUnmarshal(t, body, &addr)
	if addr.ID <= 0 {
		t.Fatalf("address id missing: body=%s", string(body))
	}
	return addr.ID
}
