package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /offers の公開API（掲載中キャンペーンのみ）
type OfferHandler struct {
	uc *usecase.OfferUsecase
}

func NewOfferHandler(uc *usecase.OfferUsecase) *OfferHandler {
	return &OfferHandler{uc: uc}
}

func (h *OfferHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/offers", h.list)
}

func (h *OfferHandler) list(c echo.Context) error {
	items, err := h.uc.ListLiveOffers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
