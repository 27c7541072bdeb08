package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bankofshash/support-ai/internal/api/router"
	"github.com/bankofshash/support-ai/internal/audit"
	appconfig "github.com/bankofshash/support-ai/internal/config"
	"github.com/bankofshash/support-ai/internal/conversation"
	"github.com/bankofshash/support-ai/internal/directory"
	"github.com/bankofshash/support-ai/internal/http/handlers"
	"github.com/bankofshash/support-ai/internal/notify"
	"github.com/bankofshash/support-ai/internal/observability/metrics"
	"github.com/bankofshash/support-ai/internal/verification"
	"github.com/bankofshash/support-ai/internal/webchat"
	"github.com/bankofshash/support-ai/internal/worker"
	"github.com/bankofshash/support-ai/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bank support API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Customer directory
	dir, err := loadDirectory(cfg)
	if err != nil {
		logger.Error("failed to load customer directory", "error", err)
		os.Exit(1)
	}

	// Session storage
	redisClient := buildRedisClient(cfg)
	var sessions verification.SessionStore
	var history conversation.HistoryStore
	if redisClient != nil {
		sessions = verification.NewRedisSessionStore(redisClient, cfg.SessionTTL)
		history = conversation.NewHistoryStore(redisClient)
		logger.Info("using redis session storage", "addr", cfg.RedisAddr)
	} else {
		sessions = verification.NewMemorySessionStore()
		history = conversation.NewMemoryHistoryStore()
		logger.Warn("redis not configured; sessions are in-memory and will not survive restarts")
	}

	// Audit trail (optional)
	var recorder audit.Recorder = audit.Nop{}
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		svc := audit.NewService(db)
		if err := svc.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare audit schema", "error", err)
			os.Exit(1)
		}
		recorder = svc
		logger.Info("audit trail enabled")
	}

	// Lockout alerts (optional)
	var notifier conversation.Notifier
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil && cfg.FraudDeskEmail != "" {
		notifier = notify.NewLockoutAlerter(sender, cfg.FraudDeskEmail, logger)
		logger.Info("lockout alerts enabled", "fraud_desk", cfg.FraudDeskEmail)
	}

	// Chat-completion backend (optional; verification works without it)
	llm := buildLLMClient(ctx, cfg, logger)

	verificationMetrics := metrics.NewVerificationMetrics(prometheus.DefaultRegisterer)

	flow := verification.NewFlow(dir,
		verification.WithMaxRetries(cfg.VerificationMaxRetries),
		verification.WithSupportPhone(cfg.SupportPhone),
	)

	opts := []conversation.OrchestratorOption{
		conversation.WithAudit(recorder),
		conversation.WithMetrics(verificationMetrics),
		conversation.WithHistory(history),
		conversation.WithLLMParams(cfg.LLMMaxTokens, cfg.LLMTemperature, cfg.LLMRequestTimeout),
	}
	if llm != nil {
		opts = append(opts, conversation.WithLLM(llm))
	}
	if notifier != nil {
		opts = append(opts, conversation.WithNotifier(notifier))
	}
	orchestrator := conversation.NewOrchestrator(flow, sessions, logger, opts...)

	// Webchat gateway with inline worker pool
	queue := worker.NewMemoryQueue(256)
	publisher := worker.NewPublisher(queue)
	webchatHandler := webchat.NewHandler(publisher, orchestrator.Greeting(), logger)
	messenger := webchat.NewReplyMessenger(webchatHandler, logger)
	pool := worker.NewWorker(orchestrator, queue, messenger, logger,
		worker.WithWorkerCount(cfg.WorkerCount),
	)
	workerCtx, stopWorkers := context.WithCancel(ctx)
	pool.Start(workerCtx)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(orchestrator, logger),
		HistoryHandler:     handlers.NewHistoryHandler(history, logger),
		TutorHandler:       handlers.NewTutorHandler(logger),
		AdminSessions:      handlers.NewAdminSessionsHandler(orchestrator, logger),
		HealthHandler:      handlers.NewHealthHandler("support-ai"),
		WebchatHandler:     webchatHandler,
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	stopWorkers()
	pool.Wait()

	logger.Info("server stopped")
}

func loadDirectory(cfg *appconfig.Config) (directory.Directory, error) {
	if cfg.DirectoryPath != "" {
		return directory.LoadFile(cfg.DirectoryPath)
	}
	return directory.Seed(), nil
}

func buildRedisClient(cfg *appconfig.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) conversation.LLMClient {
	switch cfg.LLMProvider {
	case "azure":
		client, err := conversation.NewAzureLLMClient(conversation.AzureConfig{
			Endpoint:   cfg.AzureOpenAIEndpoint,
			APIKey:     cfg.AzureOpenAIKey,
			APIVersion: cfg.AzureOpenAIVersion,
			Deployment: cfg.AzureOpenAIDeploy,
		})
		if err != nil {
			logger.Warn("azure openai not configured; general questions get a fixed reply", "error", err)
			return nil
		}
		logger.Info("using azure openai backend", "deployment", cfg.AzureOpenAIDeploy)
		return client
	case "gemini":
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini not configured; general questions get a fixed reply", "error", err)
			return nil
		}
		logger.Info("using gemini backend", "model", cfg.GeminiModelID)
		return client
	default:
		logger.Warn("unknown LLM provider; general questions get a fixed reply", "provider", cfg.LLMProvider)
		return nil
	}
}
