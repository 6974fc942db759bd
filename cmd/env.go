package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prodscope/prodscope/internal/llm"
	"github.com/prodscope/prodscope/internal/store"
	"github.com/prodscope/prodscope/pkg/anthropic"
)

// initStore opens the configured store and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newLLM picks the model client. Without an API key (or in demo mode) the
// deterministic offline client is used so every command still works.
func newLLM() llm.Client {
	if cfg.DemoMode || cfg.Anthropic.Key == "" {
		if !cfg.DemoMode {
			zap.L().Warn("no anthropic key configured, using offline demo client")
		}
		return llm.NewMock()
	}
	client := anthropic.NewClient(cfg.Anthropic.Key,
		anthropic.WithTimeout(time.Duration(cfg.Anthropic.TimeoutSecs)*time.Second),
	)
	return llm.NewClaude(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
}
