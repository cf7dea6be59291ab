package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infrarepo "app/internal/infra/repository"
	"app/internal/jobs"
	"app/internal/logger"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"
)

func main() {
	//.envはローカル用。無ければ環境変数のみで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.GoEnv, cfg.LogFile)
	defer func() { _ = zap.L().Sync() }()

	gormDB, err := db.Connect()
	if err != nil {
		zap.L().Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Service{},
		&model.Address{},
		&model.Order{},
		&model.Appointment{},
		&model.Enquiry{},
		&model.Offer{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		zap.L().Fatal("migration failed", zap.Error(err))
	}

	//repository
	userRepo := infrarepo.NewUserGormRepository(gormDB)
	rtRepo := infrarepo.NewRefreshTokenRepository(gormDB)
	productRepo := infrarepo.NewProductGormRepository(gormDB)
	serviceRepo := infrarepo.NewServiceGormRepository(gormDB)
	addressRepo := infrarepo.NewAddressGormRepository(gormDB)
	orderRepo := infrarepo.NewOrderGormRepository(gormDB)
	appointmentRepo := infrarepo.NewAppointmentGormRepository(gormDB)
	enquiryRepo := infrarepo.NewEnquiryGormRepository(gormDB)
	offerRepo := infrarepo.NewOfferGormRepository(gormDB)
	auditRepo := infrarepo.NewAuditLogGormRepository(gormDB)
	inventoryRepo := infrarepo.NewInventoryGormRepository(gormDB)
	txManager := infrarepo.NewTxManagerGorm(gormDB)

	//payment gateway
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	//usecase
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	serviceUC := usecase.NewServiceUsecase(serviceRepo, auditRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, gateway, cfg.Currency)
	appointmentUC := usecase.NewAppointmentUsecase(txManager, appointmentRepo, serviceRepo, gateway, cfg.Currency, cfg.AppointmentFee)
	paymentUC := usecase.NewPaymentUsecase(txManager)
	enquiryUC := usecase.NewEnquiryUsecase(enquiryRepo, auditRepo)
	offerUC := usecase.NewOfferUsecase(offerRepo, auditRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, orderRepo)
	adminAppointmentUC := usecase.NewAdminAppointmentUsecase(appointmentRepo, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, rtRepo, auditRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//handler
	handlers := server.Handlers{
		Auth:             handler.NewAuthHandler(authUC),
		Product:          handler.NewProductHandler(productUC),
		Service:          handler.NewServiceHandler(serviceUC),
		Offer:            handler.NewOfferHandler(offerUC),
		Enquiry:          handler.NewEnquiryHandler(enquiryUC),
		Address:          handler.NewAddressHandler(addressUC),
		Order:            handler.NewOrderHandler(orderUC),
		Appointment:      handler.NewAppointmentHandler(appointmentUC),
		PaymentWebhook:   handler.NewPaymentWebhookHandler(gateway, paymentUC),
		Upload:           handler.NewUploadHandler(cfg),
		AdminProduct:     handler.NewAdminProductHandler(productUC),
		AdminService:     handler.NewAdminServiceHandler(serviceUC),
		AdminOrder:       handler.NewAdminOrderHandler(adminOrderUC),
		AdminAppointment: handler.NewAdminAppointmentHandler(adminAppointmentUC),
		AdminUser:        handler.NewAdminUserHandler(adminUserUC, authUC),
		AdminEnquiry:     handler.NewAdminEnquiryHandler(enquiryUC),
		AdminOffer:       handler.NewAdminOfferHandler(offerUC),
		AdminAudit:       handler.NewAdminAuditHandler(auditUC),
	}

	e := server.New(cfg)
	server.RegisterRoutes(e, cfg, userRepo, handlers)

	//定期ジョブ
	scheduler := jobs.NewScheduler(txManager, orderRepo, appointmentRepo, rtRepo, cfg.PaymentPendingTTL)
	if err := scheduler.Start(); err != nil {
		zap.L().Fatal("scheduler start failed", zap.Error(err))
	}

	go func() {
		zap.L().Info("server starting", zap.String("port", cfg.Port))
		if err := server.Start(e, cfg.Port); err != nil {
			zap.L().Info("server stopped", zap.Error(err))
		}
	}()

	//SIGINT/SIGTERMで落ち着いて止める
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx, e); err != nil {
		zap.L().Error("shutdown failed", zap.Error(err))
	}
}
