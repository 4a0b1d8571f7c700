package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"zerobuild/internal/app"
	"zerobuild/internal/config"
	"zerobuild/internal/server"
	"zerobuild/internal/util"
	"zerobuild/pkg/ai"
	"zerobuild/pkg/storage"
	"zerobuild/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	revoker := store.NewRedisTokenRevoker(cfg.RedisAddr, cfg.RedisPassword)
	sessions, err := store.NewJWTSessionStore(cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute, revoker)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		log.Fatalf("failed to init renderer: %v", err)
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
		objects = minioStore
	}

	appCore, err := app.New(app.Config{
		Store:    dataStore,
		Sessions: sessions,
		Renderer: renderer,
		Objects:  objects,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: time.Duration(cfg.AuthRateWindowSeconds) * time.Second,
		TrustedProxies: trustedProxies,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr, "storage", cfg.StorageBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func newStore(cfg config.FileConfig) (store.Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return store.NewGormStore(cfg.DatabaseURL)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewFileStore(cfg.DataDir)
	}
}

func newRenderer(cfg config.FileConfig) (ai.Renderer, error) {
	client, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	opts := []ai.RendererOption{}
	if cfg.ImageModel != "" {
		opts = append(opts, ai.WithImageModel(cfg.ImageModel))
	}
	if cfg.DraftingModel != "" {
		opts = append(opts, ai.WithDraftingModel(cfg.DraftingModel))
	}
	if cfg.ReasoningModel != "" {
		opts = append(opts, ai.WithReasoningModel(cfg.ReasoningModel))
	}
	if cfg.ChatProvider == "openai" {
		gen := ai.NewOpenAICompatGenerator(cfg.ChatBaseURL, cfg.ChatAPIKey, cfg.ChatModel)
		opts = append(opts, ai.WithChatGenerator(gen))
	}
	return ai.NewGeminiRenderer(client, opts...)
}
