package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"user-webclient/internal/adapter/httpclient"
	"user-webclient/internal/config"
)

// NewAPIClient creates the HTTP client for the remote user API
func NewAPIClient(cfg *config.Config, l *zap.Logger) (*httpclient.Client, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL:        cfg.API.BaseURL,
		ConnectTimeout: cfg.API.ConnectTimeout,
		ReadTimeout:    cfg.API.ReadTimeout,
		WriteTimeout:   cfg.API.WriteTimeout,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	l.Info("API client configured",
		zap.String("base_url", cfg.API.BaseURL),
		zap.Duration("connect_timeout", cfg.API.ConnectTimeout),
		zap.Duration("read_timeout", cfg.API.ReadTimeout),
		zap.Duration("write_timeout", cfg.API.WriteTimeout),
	)

	return client, nil
}
