package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ebarney/aibarney/internal/config"
	"github.com/ebarney/aibarney/internal/handler"
	chatHandler "github.com/ebarney/aibarney/internal/handler/chat"
	"github.com/ebarney/aibarney/internal/model/persona"
	"github.com/ebarney/aibarney/internal/service/ai"
	"github.com/ebarney/aibarney/internal/service/chat"
	"github.com/ebarney/aibarney/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = logger.Init("info", "console")
	if err := godotenv.Load(); err != nil {
		logger.Warnf("failed to load .env file: %v; continuing with system environment variables only", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatal("failed to initialize logger", err)
	}
	defer logger.Sync()

	assistant := persona.Default()
	chatService := chat.NewService()

	var replies chatHandler.ReplyStreamer
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, assistant)
		if err != nil {
			logger.Warnf("failed to initialize AI service: %v; /chat will answer 503", err)
		} else {
			replies = aiService
			logger.Info("AI service initialized successfully")
		}
	} else {
		logger.Info("Ark credentials not configured, skipping AI initialization")
	}

	router := handler.NewRouter(assistant, chatService, replies, cfg.Chat.MaxMessageLength)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Infof("AI-Barney backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
