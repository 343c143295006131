package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storefront-backend/config"
	"storefront-backend/internal/delivery/http/middleware"
	v1 "storefront-backend/internal/delivery/http/v1"
	"storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/gateway"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/refund"
	pgrepo "storefront-backend/internal/repository/postgres"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)

	// Initialize Database with pgx
	pgxPool, err := pgrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	logger.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Initialize Repositories
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	catalogRepo := pgrepo.NewCatalogRepository(pgxPool)
	requestRepo := pgrepo.NewCancellationRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	// Quotes expire on their own TTL; cleanup runs twice per quote lifetime
	memCache := cache.NewMemoryCache(cfg.QuoteCacheTTL, cfg.QuoteCacheTTL/2)

	// --- Pricing & Refund Engine ---
	resolver := pricing.NewResolver(cfg.Sizes)
	policy, err := refund.NewPolicyEngine(cfg.Refund)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid refund policy")
	}
	calculator := refund.NewCalculator(resolver, policy)
	refundGateway := gateway.NewLoggingRefundGateway()

	logger.Info().
		Bool("policy_override", cfg.Refund.UsePolicyOverride).
		Float64("minimum_percent", cfg.Refund.MinimumRefundPercentage).
		Strs("sizes", cfg.Sizes.Codes()).
		Msg("Refund policy loaded")

	// --- Modules Initialization ---

	// Order Pricing Module
	pricingUC := usecase.NewOrderPricingUsecase(orderRepo, catalogRepo, resolver)
	pricingHandler := v1.NewOrderPricingHandler(pricingUC)

	// Cancellation Module
	cancelUC := usecase.NewCancellationUsecase(orderRepo, requestRepo, txManager, calculator, refundGateway, memCache, cfg.QuoteCacheTTL)
	cancelHandler := v1.NewCancellationHandler(cancelUC)
	adminCancelHandler := v1.NewAdminCancellationHandler(cancelUC)

	// Config Handler
	configHandler := v1.NewConfigHandler(memCache, resolver.Sizes(), calculator.Policy().Config(), cfg.EnumCacheTTL)

	// Set up Router
	mux := http.NewServeMux()

	// Config (Public)
	mux.HandleFunc("GET /api/v1/config/enums", configHandler.GetEnums)

	// Pricing (Public)
	mux.HandleFunc("GET /api/v1/orders/{id}/pricing", pricingHandler.GetPricing)
	mux.HandleFunc("GET /api/v1/products/{id}/size-prices", pricingHandler.GetSizePrices)
	mux.HandleFunc("GET /api/v1/bundles/{id}/pricing", pricingHandler.GetBundlePricing)

	// Cancellation (Customer)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancellation/quote", cancelHandler.Quote)
	mux.HandleFunc("POST /api/v1/cancellation-requests", cancelHandler.Submit)

	// Admin (actor required)
	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireActor(h)
	}
	mux.Handle("GET /api/v1/admin/cancellation-requests", adminMiddleware(adminCancelHandler.List))
	mux.Handle("POST /api/v1/admin/cancellation-requests/{id}/approve", adminMiddleware(adminCancelHandler.Approve))
	mux.Handle("POST /api/v1/admin/cancellation-requests/{id}/reject", adminMiddleware(adminCancelHandler.Reject))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", adminMiddleware(adminCancelHandler.OrderHistory))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pgxPool.Ping(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	// cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply Actor, CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.Actor(mux)
	handler = middleware.NewCORSMiddleware(cfg)(handler)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart("storefront-backend", "1.0.0", cfg.Port)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")

	// Stop rate limiter cleanup goroutine
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	memCache.Flush()
	logger.ServiceStop("storefront-backend")
}
