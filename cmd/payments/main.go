package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	nrecho "github.com/newrelic/go-agent/v3/integrations/nrecho-v4"

	"github.com/givehub/payments/internal/pkg/circuitbreaker"
	"github.com/givehub/payments/internal/pkg/config"
	"github.com/givehub/payments/internal/pkg/database"
	"github.com/givehub/payments/internal/pkg/health"
	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/middleware"
	natspkg "github.com/givehub/payments/internal/pkg/nats"
	nrpkg "github.com/givehub/payments/internal/pkg/newrelic"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/internal/pkg/retry"
	"github.com/givehub/payments/internal/pkg/server"
	"github.com/givehub/payments/services/payments/gateway"
	"github.com/givehub/payments/services/payments/handler"
	"github.com/givehub/payments/services/payments/repository"
	"github.com/givehub/payments/services/payments/usecase"
)

func main() {
	appName := "payments-service"
	configs := config.InitConfig(os.Getenv("CONFIG_PATH"))

	nrApp := nrpkg.InitNewRelic(configs)
	if nrApp != nil {
		if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	zapLogger, err := logger.NewZapLogger(logger.ZapConfig{
		Level:    configs.Logger.Level,
		FilePath: configs.Logger.FilePath,
	}, nrApp)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment))

	db, err := database.NewPostgresDB(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	natsClient, err := natspkg.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}

	shutdownMgr := server.NewShutdownManager(zapLogger)
	shutdownMgr.Register(func(ctx context.Context) error { return db.Close() })
	shutdownMgr.Register(func(ctx context.Context) error { return redisClient.Close() })
	shutdownMgr.Register(func(ctx context.Context) error { natsClient.Close(); return nil })

	txRepo := repository.NewTransactionRepository(db)

	callTimeout := time.Duration(configs.Resilience.CallTimeoutSeconds) * time.Second
	omnipay := gateway.NewOmniPayGateway(configs.Gateways.OmniPay, callTimeout, zapLogger)
	shekel := gateway.NewShekelGateway(configs.Gateways.Shekel, callTimeout, zapLogger)

	// Business declines must not trip the breaker; only transient processor
	// faults count against it.
	breakerCfg := circuitbreaker.Config{
		FailureThreshold: configs.Resilience.BreakerFailureThreshold,
		Cooldown:         time.Duration(configs.Resilience.BreakerCooldownSeconds) * time.Second,
		IsFailure:        payerrors.IsRetryable,
	}
	breakerMgr := circuitbreaker.NewManager(zapLogger)

	retrier := retry.New(retry.Config{
		MaxAttempts:   configs.Resilience.RetryMaxAttempts,
		BaseDelay:     time.Duration(configs.Resilience.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:      10 * time.Second,
		Multiplier:    2.0,
		Jitter:        true,
		RetryableFunc: payerrors.IsRetryable,
	}, zapLogger)

	registry := gateway.NewRegistry(configs.Payment.CurrencyRoutes,
		gateway.NewResilientGateway(omnipay, breakerMgr, breakerCfg, retrier),
		gateway.NewResilientGateway(shekel, breakerMgr, breakerCfg, retrier),
	)

	donationGW := gateway.NewDonationServiceGW(configs.Services.DonationServiceURL, callTimeout)
	eventGW := gateway.NewNATSEventGW(natspkg.NewProducer(natsClient.GetConn()))

	paymentUC := usecase.NewPaymentUC(configs, txRepo, registry, donationGW, donationGW, eventGW, redisClient, zapLogger)
	webhookUC := usecase.NewWebhookUC(paymentUC, registry, zapLogger)

	paymentHandler := handler.NewPaymentHandler(paymentUC, webhookUC)

	e := echo.New()
	e.HideBanner = true

	if nrApp != nil {
		e.Use(nrecho.Middleware(nrApp))
	}
	e.Use(middleware.PanicRecovery(zapLogger))
	e.Use(middleware.RequestLogger(zapLogger))

	e.GET("/health", health.NewPingHandler(appName, configs.App.Version))
	paymentHandler.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Error("Server shutdown with error", logger.Err(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	shutdownMgr.Shutdown(ctx)
}
