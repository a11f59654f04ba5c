package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"quickenrich-workers/internal/common/camunda"
	"quickenrich-workers/internal/common/config"
	"quickenrich-workers/internal/common/credentials"
	"quickenrich-workers/internal/common/database"
	"quickenrich-workers/internal/common/logger"
	"quickenrich-workers/internal/common/observability"
	"quickenrich-workers/internal/common/quickenrich"

	employeesearch "quickenrich-workers/internal/workers/enrichment/employee-search"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.TraceSampling, zapLog)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Zeebe ---
	camundaClient, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, zapLog)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer camundaClient.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Credentials: redis first when configured, then the static key ---
	var stores credentials.Chain
	if cfg.Redis.Address != "" {
		redisClient, err := database.NewRedis(cfg.Redis)
		if err != nil {
			zapLog.Fatal("redis client init failed", zap.Error(err))
		}
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		stores = append(stores, credentials.NewRedisStore(redisClient.Client))
		zapLog.Info("Redis credential store connected", zap.String("address", cfg.Redis.Address))
	}
	if cfg.QuickEnrich.APIKey != "" {
		stores = append(stores, credentials.NewStaticStore(cfg.QuickEnrich.APIKey))
	}

	apiClient := quickenrich.NewClient(quickenrich.Options{
		BaseURL:        cfg.QuickEnrich.BaseURL,
		Timeout:        config.GetDuration(cfg.QuickEnrich.Timeout),
		Credentials:    stores,
		CredentialName: cfg.QuickEnrich.CredentialName,
		Logger:         log,
	})

	// --- Workers ---
	handler, err := employeesearch.NewHandler(employeesearch.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       camundaClient,
		Client:        apiClient,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("employee search handler init failed", zap.Error(err))
	}

	checkCtx, cancelCheck := context.WithTimeout(ctx, 15*time.Second)
	if err := handler.HealthCheck(checkCtx); err != nil {
		zapLog.Warn("startup health check failed", zap.Error(err))
	}
	cancelCheck()

	var workers []*camunda.CamundaWorker
	if handler.IsEnabled() {
		workers = append(workers, camunda.StartWorker(camundaClient.GetClient(), handler.WorkerOptions(), handler, zapLog))
	} else {
		zapLog.Info("Worker disabled by configuration", zap.String("taskType", handler.GetTaskType()))
	}

	// --- Health & metrics ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := camundaClient.HealthCheck(readyCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Health/Metrics server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped")
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
