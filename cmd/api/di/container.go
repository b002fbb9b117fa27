package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"user-webclient/cmd/api/infrastructure"
	"user-webclient/internal/adapter/cache"
	ginhandler "user-webclient/internal/adapter/gin/handler"
	"user-webclient/internal/adapter/gin/middleware"
	"user-webclient/internal/adapter/httpclient"
	"user-webclient/internal/adapter/httpclient/cached"
	"user-webclient/internal/config"
	"user-webclient/internal/usecase/user"
	redisclient "user-webclient/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	RedisClient *redisclient.Client // nil unless the cache or rate limiter is enabled
	APIClient   *httpclient.Client
	UserUC      *user.Usecase
	CachedAPI   *cached.Client          // nil unless the cache is enabled
	RateLimiter *middleware.RateLimiter // nil unless enabled
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: l,
	}

	// Initialize Redis client
	if cfg.Cache.Enabled || cfg.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
	}

	// Initialize API client
	api, err := infrastructure.NewAPIClient(cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.APIClient = api

	var client user.Client = api
	if cfg.Cache.Enabled {
		responseCache := cache.NewRedisResponseCache(c.RedisClient.Client, cfg.Cache.TTL, l)
		c.CachedAPI = cached.NewClient(api, responseCache, l)
		client = c.CachedAPI
		l.Info("response cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	// Initialize use case
	c.UserUC = user.New(client, l, user.WithRetryPolicy(cfg.Retry.MaxRetries, cfg.Retry.Delay))

	// Initialize rate limiter
	if cfg.RateLimit.Enabled {
		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	// Initialize Gin handler
	var handlerOpts []ginhandler.Option
	if c.CachedAPI != nil {
		handlerOpts = append(handlerOpts, ginhandler.WithResponseEvicter(c.CachedAPI))
	}
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l, handlerOpts...)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.APIClient != nil {
		c.APIClient.CloseIdleConnections()
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	return errors.Join(errs...)
}
