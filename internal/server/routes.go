package server

import (
	"github.com/labstack/echo/v4"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/repository"
)

// 全ハンドラのまとめ
type Handlers struct {
	Auth             *handler.AuthHandler
	Product          *handler.ProductHandler
	Service          *handler.ServiceHandler
	Offer            *handler.OfferHandler
	Enquiry          *handler.EnquiryHandler
	Address          *handler.AddressHandler
	Order            *handler.OrderHandler
	Appointment      *handler.AppointmentHandler
	PaymentWebhook   *handler.PaymentWebhookHandler
	Upload           *handler.UploadHandler
	AdminProduct     *handler.AdminProductHandler
	AdminService     *handler.AdminServiceHandler
	AdminOrder       *handler.AdminOrderHandler
	AdminAppointment *handler.AdminAppointmentHandler
	AdminUser        *handler.AdminUserHandler
	AdminEnquiry     *handler.AdminEnquiryHandler
	AdminOffer       *handler.AdminOfferHandler
	AdminAudit       *handler.AdminAuditHandler
}

// ルート登録。認可はハンドラ側のグループで行う
func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	//公開
	h.Product.RegisterRoutes(e)
	h.Service.RegisterRoutes(e)
	h.Offer.RegisterRoutes(e)
	h.PaymentWebhook.RegisterRoutes(e)

	//認証
	h.Auth.RegisterRoutes(e, cfg, userRepo)

	//ログイン必須
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Appointment.RegisterRoutes(e, cfg, userRepo)
	h.Enquiry.RegisterRoutes(e, cfg, userRepo)

	me := e.Group("/me")
	me.Use(middleware.AuthJWT(cfg))
	me.Use(middleware.TokenVersionGuard(userRepo))
	h.Address.RegisterRoutes(me)

	//admin
	h.Upload.RegisterRoutes(e, cfg, userRepo)
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminService.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminAppointment.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
	h.AdminEnquiry.RegisterRoutes(e, cfg, userRepo)
	h.AdminOffer.RegisterRoutes(e, cfg, userRepo)
	h.AdminAudit.RegisterRoutes(e, cfg, userRepo)
}
