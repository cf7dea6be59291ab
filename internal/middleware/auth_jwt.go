package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

type accessClaims struct {
	userID       int64
	role         string
	tokenVersion int
}

// Bearer tokenのJWT検証ミドルウェア。
// 検証できたらsub/role/tvをcontextに積む
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken := bearerToken(c)
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//HS256以外の署名は受け付けない
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := extractAccessClaims(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.userID)
			c.Set(CtxUserRoleKey, claims.role)
			c.Set(CtxTokenVersionKey, claims.tokenVersion)

			return next(c)
		}
	}
}

// AuthorizationヘッダからBearer tokenを抜く。形式が違えば空文字
func bearerToken(c echo.Context) string {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return ""
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func extractAccessClaims(token *jwt.Token) (accessClaims, error) {
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return accessClaims{}, errors.New("invalid claims")
	}

	userID, err := parseUserID(mc["sub"])
	if err != nil || userID <= 0 {
		return accessClaims{}, errors.New("invalid sub")
	}

	role, ok := mc["role"].(string)
	if !ok || role == "" {
		return accessClaims{}, errors.New("invalid role")
	}

	tv, err := parseInt(mc["tv"])
	if err != nil || tv < 0 {
		return accessClaims{}, errors.New("invalid tv")
	}

	return accessClaims{userID: userID, role: role, tokenVersion: tv}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// subはfloat64でも文字列でも来る
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}
