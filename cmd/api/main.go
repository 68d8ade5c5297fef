package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/tkaykim/modoouniformshop-sub000/config"
	"github.com/tkaykim/modoouniformshop-sub000/internal/delivery/http/middleware"
	v1 "github.com/tkaykim/modoouniformshop-sub000/internal/delivery/http/v1"
	"github.com/tkaykim/modoouniformshop-sub000/internal/infrastructure/cache"
	"github.com/tkaykim/modoouniformshop-sub000/internal/infrastructure/easypay"
	"github.com/tkaykim/modoouniformshop-sub000/internal/infrastructure/facebook"
	sqlcrepo "github.com/tkaykim/modoouniformshop-sub000/internal/repository/sqlc"
	"github.com/tkaykim/modoouniformshop-sub000/internal/usecase"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/storage"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/utils"
	"golang.org/x/time/rate"
)

const (
	serviceName    = "modoo-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.Env, cfg.LogLevel, cfg.LogFile)
	log := logger.Get()
	utils.SetSecret(cfg.JWTSecret)

	pgxPool, err := sqlcrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	logger.Info().Msg("Successfully connected to PostgreSQL via pgx/sqlc")

	orderRepo := sqlcrepo.NewOrderRepository(pgxPool)
	leadRepo := sqlcrepo.NewLeadRepository(pgxPool)
	txManager := sqlcrepo.NewTransactionManager(pgxPool)

	// Approval lookups and wizard sessions set their own TTLs.
	memCache := cache.NewMemoryCache(30*time.Minute, 10*time.Minute)

	// --- Payment (EasyPay) ---
	gateway := easypay.NewClient(cfg.PGBaseURL, cfg.PGMallID, cfg.PGSecretKey, cfg.PGTimeout)
	builder := usecase.NewRefundBuilder(cfg.PGMallID)
	orderUC := usecase.NewOrderUsecase(orderRepo, gateway, txManager, memCache, builder, cfg.PGLookupCacheTTL)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC)

	// --- Storage Module (R2) ---
	var refStore usecase.ReferenceStore
	var process usecase.ImageProcessor
	if cfg.R2AccountID != "" && cfg.R2BucketName != "" {
		r2Storage, err := storage.NewR2Storage(
			context.Background(),
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		refStore = r2Storage
		process = utils.ProcessImage
	} else {
		log.Warn().Msg("R2 not configured, lead reference uploads disabled")
	}

	// --- Lead Wizard ---
	capi := facebook.NewCAPIClient(cfg.FBPixelID, cfg.FBAccessToken, cfg.FBAPIVersion)
	leadUC := usecase.NewLeadUsecase(leadRepo, memCache, refStore, capi, process, cfg.LeadSessionTTL, cfg.MaxLeadReferenceFiles)
	leadHandler := v1.NewLeadHandler(leadUC, cfg.MaxUploadSizeMB)
	adminLeadHandler := v1.NewAdminLeadHandler(leadUC)

	mux := http.NewServeMux()

	// Admin (Protected): AuthMiddleware -> AdminMiddleware -> Handler
	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Payments
	mux.Handle("POST /api/v1/admin/payments/revise", adminMiddleware(adminOrderHandler.Revise))
	mux.Handle("POST /api/v1/admin/orders/{id}/refund", adminMiddleware(adminOrderHandler.RefundOrder))

	// Admin Orders
	mux.Handle("GET /api/v1/admin/orders", adminMiddleware(adminOrderHandler.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", adminMiddleware(adminOrderHandler.GetOrder))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", adminMiddleware(adminOrderHandler.GetOrderHistory))
	mux.Handle("GET /api/v1/admin/orders/{id}/refunds", adminMiddleware(adminOrderHandler.GetRefunds))
	mux.Handle("GET /api/v1/admin/orders/{id}/payment", adminMiddleware(adminOrderHandler.GetPayment))

	// Admin Leads
	mux.Handle("GET /api/v1/admin/leads", adminMiddleware(adminLeadHandler.ListLeads))
	mux.Handle("PATCH /api/v1/admin/leads/{id}/status", adminMiddleware(adminLeadHandler.UpdateStatus))

	// Lead Wizard (Public)
	mux.HandleFunc("POST /api/v1/leads/sessions", leadHandler.StartSession)
	mux.HandleFunc("GET /api/v1/leads/sessions/{id}", leadHandler.GetSession)
	mux.HandleFunc("PUT /api/v1/leads/sessions/{id}/steps/{step}", leadHandler.Answer)
	mux.HandleFunc("POST /api/v1/leads/sessions/{id}/back", leadHandler.Back)
	mux.HandleFunc("POST /api/v1/leads/sessions/{id}/uploads", leadHandler.UploadReference)
	mux.HandleFunc("POST /api/v1/leads/sessions/{id}/submit", leadHandler.Submit)

	// Health Check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pgxPool.Ping(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
	})

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// CORS -> Request Logger -> Rate Limit -> Gzip
	handler := middleware.NewCORSMiddleware(cfg.AllowedOrigin)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Refund calls wait on the gateway.
		WriteTimeout: cfg.PGTimeout + 15*time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart(serviceName, serviceVersion, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.ServiceStop(serviceName)
}
