// cmd/chatbot-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lira-chatbot/internal/catalog"
	"lira-chatbot/internal/common/config"
	"lira-chatbot/internal/common/database"
	"lira-chatbot/internal/common/logger"
	"lira-chatbot/internal/common/observability"
	"lira-chatbot/internal/gateway"
	"lira-chatbot/internal/model"
	"lira-chatbot/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
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
		bootstrap := logger.New("info", "console")
		bootstrap.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chatbot server...",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("chatbot-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// Knowledge base is loaded once at boot; failures degrade, never abort.
	cat := catalog.LoadCatalog(cfg.Catalog.ProductsPath, log)
	article := catalog.LoadArticle(cfg.Catalog.ArticlePath, log)

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Session.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	store := session.NewRedisStore(rdb, time.Duration(cfg.Session.TTL)*time.Second)

	// --- Init Gemini client ---
	gemini, err := model.NewGeminiClient(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
	if err != nil {
		zapLog.Fatal("gemini client initialization failed", zap.Error(err))
	}
	defer gemini.Close()
	zapLog.Info("Gemini client initialized", zap.String("model", cfg.GenAI.Model))

	handler := gateway.NewHandler(store, gemini, cat, article, cfg.GenAI,
		cfg.App.Version, obs, log, rdb.Ping)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	gateway.RegisterRoutes(engine, handler, gateway.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secret: cfg.Session.SecretKey,
		TTL:    time.Duration(cfg.Session.TTL) * time.Second,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      engine,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Server stopped")
}
