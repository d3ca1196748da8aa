package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/academyhq/academy-client/internal/clock"
	"github.com/academyhq/academy-client/internal/core/ports"
	"github.com/academyhq/academy-client/internal/core/service"
	"github.com/academyhq/academy-client/internal/infrastructure/api"
	"github.com/academyhq/academy-client/internal/infrastructure/config"
	"github.com/academyhq/academy-client/internal/infrastructure/storage"
	"github.com/academyhq/academy-client/pkg/logger"
)

// app wires the full client stack for one CLI invocation.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *api.Client
	session *service.Session
	guard   *service.RouteGuard
	cache   *service.ResourceCache
}

func newApp(ctx context.Context) (*app, error) {
	log := logger.Init(logger.Options{Level: os.Getenv("ACADEMY_LOG_LEVEL"), Pretty: true})
	cfg := config.Load(log)

	stateDir := cfg.StateDir
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".academy")
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	store, err := newProjectionStore(ctx, cfg, stateDir)
	if err != nil {
		return nil, err
	}

	jar, err := api.NewFileJar(filepath.Join(stateDir, "cookies.json"), cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	client, err := api.NewClientWithJar(cfg.APIBaseURL, cfg.RequestTimeout, jar, log)
	if err != nil {
		return nil, err
	}

	verifier := service.NewVerifier(client, cfg.VerifyTimeout, log)
	session := service.NewSession(client, store, verifier, log)

	return &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		session: session,
		guard:   service.NewRouteGuard(session, log),
		cache:   service.NewResourceCache(client, clock.New(), cfg.CacheTTL, log),
	}, nil
}

func newProjectionStore(ctx context.Context, cfg *config.Config, stateDir string) (ports.ProjectionStore, error) {
	switch cfg.ProjectionStore {
	case "file", "":
		return storage.NewFileStore(stateDir)
	case "redis":
		rdb, err := storage.Connect(ctx, storage.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("connect projection redis: %w", err)
		}
		return storage.NewRedisStore(rdb, cfg.Seat), nil
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown projection store %q", cfg.ProjectionStore)
	}
}

// restore bootstraps the session from the persisted projection and reports
// whether an authenticated session is available.
func (a *app) restore(ctx context.Context) bool {
	a.session.Bootstrap(ctx)
	return a.session.IsAuthenticated()
}
