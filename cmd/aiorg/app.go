package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sgx-labs/aiorg/internal/config"
	"github.com/sgx-labs/aiorg/internal/credential"
	"github.com/sgx-labs/aiorg/internal/intent"
	"github.com/sgx-labs/aiorg/internal/logging"
	aimcp "github.com/sgx-labs/aiorg/internal/mcp"
	"github.com/sgx-labs/aiorg/internal/organiser"
	"github.com/sgx-labs/aiorg/internal/quickadd"
)

// app is the wired service graph shared by serve, stdio and save.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	svc       *organiser.Service
	tokenFile *credential.FileSecret
}

func newApp(cfg *config.Config) (*app, error) {
	logger := logging.New(cfg.Log)
	aimcp.Version = Version

	parser, err := newParser(cfg)
	if err != nil {
		return nil, err
	}

	fallback := credential.Chain{credential.StaticSecret(cfg.Auth.IntegrationToken)}
	var tokenFile *credential.FileSecret
	if cfg.Auth.IntegrationTokenFile != "" {
		tokenFile, err = credential.NewFileSecret(cfg.Auth.IntegrationTokenFile, logger)
		if err != nil {
			return nil, err
		}
		fallback = append(fallback, tokenFile)
	}

	var guard *intent.Guard
	if cfg.Intent.Guard {
		guard = intent.NewGuard()
	}

	if !cfg.BackendConfigured() {
		logger.Warn("backend anon key not set; saves will fail until AI_ORGANISER_ANON_KEY is configured")
	}

	svc := organiser.NewService(organiser.Options{
		Backend: quickadd.NewClient(quickadd.Options{
			FunctionURL: cfg.Backend.FunctionURL,
			AnonKey:     cfg.Backend.AnonKey,
			Timeout:     cfg.Backend.Timeout,
		}),
		Resolver: credential.NewResolver(fallback, logger),
		Parser:   parser,
		Guard:    guard,
		Logger:   logger,
	})

	return &app{cfg: cfg, logger: logger, svc: svc, tokenFile: tokenFile}, nil
}

// watchTokenFile keeps the file-based fallback secret fresh until ctx ends.
func (a *app) watchTokenFile(ctx context.Context) {
	if a.tokenFile == nil {
		return
	}
	go func() {
		if err := a.tokenFile.Watch(ctx); err != nil {
			a.logger.Warn("token file watch stopped", "path", a.tokenFile.Path(), "error", err)
		}
	}()
}

func newParser(cfg *config.Config) (*intent.Parser, error) {
	triggers := make([]intent.Trigger, 0, len(cfg.Intent.Triggers))
	for _, t := range cfg.Intent.Triggers {
		triggers = append(triggers, intent.Trigger{Keyword: t.Keyword, Preposition: t.Preposition})
	}
	p, err := intent.NewParser(triggers...)
	if err != nil {
		return nil, fmt.Errorf("intent triggers: %w", err)
	}
	return p, nil
}
