package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"modhub/backend/internal/alerts"
	"modhub/backend/internal/api/handler"
	"modhub/backend/internal/auth"
	"modhub/backend/internal/chathub"
	"modhub/backend/internal/config"
	"modhub/backend/internal/discord"
	"modhub/backend/internal/localization"
	"modhub/backend/internal/logger"
	"modhub/backend/internal/markup"
	"modhub/backend/internal/moderation"
	"modhub/backend/internal/storage"
	"modhub/backend/internal/telegram"
	"modhub/backend/internal/upload"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.WithComponent("main")
	log.Info("starting ModHub backend", "addr", cfg.Server.Addr(), "storage", cfg.Storage.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Сховище
	persister, closeStore, err := storage.OpenPersister(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()
	store := storage.NewStorageService(ctx, persister)

	if err := seedAdmin(store, cfg.Auth, log); err != nil {
		return err
	}

	// 2. Chat Hub, relay і сповіщення
	filter := moderation.NewFilter()
	hub := chathub.NewManagerService(store, filter)

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		hub.SetRelay(chathub.NewRedisRelay(rdb, cfg.Redis.Channel))
		log.Info("redis relay enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	dispatcher, err := setupAlerts(cfg, log)
	if err != nil {
		return err
	}
	if dispatcher.Enabled() {
		hub.AddSink(dispatcher)
		go dispatcher.Run(ctx)
	}

	go hub.Run(ctx)

	// 3. HTTP
	secret, err := tokenSecret(cfg.Auth.JWTSecret, log)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenService(secret, cfg.Auth.TokenTTL)
	enforcer, err := auth.NewEnforcer()
	if err != nil {
		return err
	}
	uploader, err := upload.NewUploader(cfg.Upload.Dir, cfg.Upload.PublicPrefix, cfg.Upload.MaxSize)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	h := handler.NewHandler(store, hub, tokens, enforcer, filter, markup.NewRenderer(), uploader, handler.Options{
		BcryptCost:     cfg.Auth.BcryptCost,
		AllowedOrigins: cfg.Server.CORSOrigins,
	})
	router := handler.NewRouter(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// seedAdmin creates the admin account on an empty store. Without a configured
// password a random one is generated and logged once.
func seedAdmin(store *storage.Service, cfg config.AuthConfig, log *slog.Logger) error {
	password := cfg.AdminPassword
	generated := password == ""
	if generated {
		var err error
		if password, err = randomHex(12); err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
	}

	hash, err := auth.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin, created, err := store.EnsureAdmin(cfg.AdminUsername, hash)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if !created {
		return nil
	}

	if generated {
		log.Warn("admin account created with a generated password, change it with the admin CLI",
			"username", admin.Username, "password", password)
	} else {
		log.Info("admin account created", "username", admin.Username)
	}
	return nil
}

// tokenSecret returns the configured signing key or, when there is none, a random
// one that lives as long as the process.
func tokenSecret(configured string, log *slog.Logger) (string, error) {
	if configured != "" {
		return configured, nil
	}
	secret, err := randomHex(config.MinJWTSecretLength)
	if err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	log.Warn("auth.jwt_secret is not set, using a random key; tokens will not survive a restart")
	return secret, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// setupAlerts підключає Telegram і Discord, якщо для них є токени.
func setupAlerts(cfg *config.Config, log *slog.Logger) (*alerts.Dispatcher, error) {
	localizer, err := localization.NewBundled()
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	lang := cfg.Alerts.Language
	if !localizer.HasLanguage(lang) {
		log.Warn("unknown alert language, falling back", "language", lang, "fallback", localization.DefaultLanguage)
		lang = localization.DefaultLanguage
	}

	var senders []alerts.Sender
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := telegram.NewSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			// Сповіщення не критичні: сервер працює й без Telegram.
			log.Error("telegram alerts disabled", "error", err)
		} else {
			senders = append(senders, tg)
		}
	}
	if cfg.Discord.BotToken != "" && cfg.Discord.ChannelID != "" {
		dc, err := discord.NewSender(cfg.Discord.BotToken, cfg.Discord.ChannelID)
		if err != nil {
			log.Error("discord alerts disabled", "error", err)
		} else {
			senders = append(senders, dc)
		}
	}

	return alerts.NewDispatcher(localizer, lang, senders...), nil
}
