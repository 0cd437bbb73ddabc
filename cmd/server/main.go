package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/handlers"
	"boxoffice/internal/middleware"
	"boxoffice/internal/monitoring"
	"boxoffice/internal/repositories"
	"boxoffice/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database ready")

	inventoryRepo := repositories.NewInventoryRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	revenueRepo := repositories.NewRevenueRepository(db.DB)
	affiliateRepo := repositories.NewAffiliateRepository(db.DB)
	scanLogRepo := repositories.NewScanLogRepository(db.DB)
	staffRepo := repositories.NewStaffRepository(db.DB)
	idempotencyRepo := repositories.NewIdempotencyRepository(db.DB)

	inventoryService := services.NewInventoryService(inventoryRepo, staffRepo)
	issuerService := services.NewIssuerService(
		inventoryRepo, ticketRepo, staffRepo, idempotencyRepo,
		cfg.Tickets.QRBaseURL, cfg.Tickets.CodeLength,
	)
	checkinService := services.NewCheckinService(ticketRepo, scanLogRepo, staffRepo)
	revenueService := services.NewRevenueService(
		revenueRepo, affiliateRepo, ticketRepo, inventoryRepo, idempotencyRepo,
		cfg.Fees,
	)
	accessService := services.NewAccessService(staffRepo)

	registry := prometheus.NewRegistry()
	metrics := monitoring.New(registry)

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)

	webhookHandler := handlers.NewWebhookHandler(revenueService, issuerService, metrics, logger)
	checkinHandler := handlers.NewCheckinHandler(checkinService, accessService, metrics)
	ticketHandler := handlers.NewTicketHandler(issuerService, inventoryService, accessService)
	sellerHandler := handlers.NewSellerHandler(revenueService)
	adminHandler := handlers.NewAdminHandler(revenueService, accessService, metrics)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Post("/webhooks/payment", webhookHandler.HandlePaymentConfirmed)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/scan", checkinHandler.HandleScan)
		r.Post("/scan/bundle", checkinHandler.HandleScanBundle)
		r.Post("/checkin/manual", checkinHandler.HandleManualCheckIn)

		r.Get("/tickets/{id}", ticketHandler.HandleGetTicket)
		r.Get("/tickets/{id}/qr", ticketHandler.HandleTicketQR)
		r.Delete("/ticket-types/{id}", ticketHandler.HandleDeactivateTicketType)
		r.Get("/purchases/{ref}/tickets", ticketHandler.HandleTicketsByPurchase)

		r.Post("/events", adminHandler.HandleCreateEvent)
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Post("/ticket-types", ticketHandler.HandleCreateTicketType)
			r.Get("/ticket-types", ticketHandler.HandleListTicketTypes)
			r.Post("/comp-tickets", ticketHandler.HandleCompTickets)
			r.Get("/scan-logs", checkinHandler.HandleScanLogs)
			r.Get("/attendance", checkinHandler.HandleAttendance)
			r.Post("/staff", adminHandler.HandleGrantRole)
			r.Delete("/staff/{userID}", adminHandler.HandleRevokeRole)
			r.Post("/affiliates", adminHandler.HandleCreateAffiliateProgram)
		})

		r.Route("/sellers/{id}", func(r chi.Router) {
			r.Get("/balance", sellerHandler.HandleBalance)
			r.Get("/transactions", sellerHandler.HandleTransactions)
			r.Get("/payouts", sellerHandler.HandleListPayouts)
			r.Post("/payouts", sellerHandler.HandleRequestPayout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/refunds", adminHandler.HandleRefund)
			r.Post("/payouts/{id}/complete", adminHandler.HandleCompletePayout)
			r.Post("/ticket-types/{id}/allocate", ticketHandler.HandleAllocate)
		})
	})

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
