package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// アップロード上限（10MB）
const uploadMaxBytes = 10 << 20

// 画像アップロード（admin用）
type UploadHandler struct {
	uploadDir string
}

func NewUploadHandler(cfg config.Config) *UploadHandler {
	return &UploadHandler{uploadDir: cfg.UploadDir}
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *UploadHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/uploads", h.upload)
}

func (h *UploadHandler) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Success: false, Error: "file required"})
	}
	if fh.Size > uploadMaxBytes {
		return c.JSON(http.StatusBadRequest, uploadResponse{Success: false, Error: "file too large"})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.JSON(http.StatusBadRequest, uploadResponse{Success: false, Error: "unsupported file type"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Success: false, Error: "upload failed"})
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Success: false, Error: "upload failed"})
	}

	//衝突しないファイル名（タイムスタンプ + uuid）
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	dstPath := filepath.Join(h.uploadDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Success: false, Error: "upload failed"})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return c.JSON(http.StatusInternalServerError, uploadResponse{Success: false, Error: "upload failed"})
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Success: true,
		Path:    "/uploads/" + name,
	})
}
