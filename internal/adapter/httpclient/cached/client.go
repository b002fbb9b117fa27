package cached

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-webclient/internal/adapter/cache"
	"user-webclient/internal/usecase/user"
	"user-webclient/pkg/logger"
)

// Client decorates a user.Client with a response cache.
// Only successful responses are cached; failures always reach the API.
type Client struct {
	next  user.Client
	cache cache.ResponseCache
	group singleflight.Group
	log   *zap.Logger
}

var _ user.Client = (*Client)(nil)

// NewClient creates a new cached client.
func NewClient(next user.Client, rc cache.ResponseCache, log *zap.Logger) *Client {
	return &Client{
		next:  next,
		cache: rc,
		log:   log,
	}
}

// Get serves the response from cache when present, otherwise fetches it.
// Cache errors are logged and never fail the request.
func (c *Client) Get(ctx context.Context, template, param string) (*user.Response, error) {
	log := logger.WithContext(ctx, c.log)
	key := cache.Key(http.MethodGet, template, param)

	if resp, err := c.cache.Get(ctx, key); err != nil {
		log.Warn("failed to get from cache, fetching from API", zap.String("key", key), zap.Error(err))
	} else if resp != nil {
		log.Debug("response served from cache", zap.String("key", key))
		return resp, nil
	}

	// The shared fetch outlives any single caller; each caller stops
	// waiting on its own cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		resp, err := c.next.Get(flightCtx, template, param)
		if err != nil {
			return nil, err
		}

		if resp.Successful() {
			if err := c.cache.Set(flightCtx, key, resp); err != nil {
				log.Warn("failed to cache response", zap.String("key", key), zap.Error(err))
			}
		}
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug("response shared with concurrent caller", zap.String("key", key))
		}
		return res.Val.(*user.Response), nil
	}
}

// Invalidate drops the cached response of a templated request.
func (c *Client) Invalidate(ctx context.Context, template string, params ...string) error {
	keys := make([]string, 0, len(params))
	for _, p := range params {
		keys = append(keys, cache.Key(http.MethodGet, template, p))
	}
	return c.cache.DeleteMultiple(ctx, keys...)
}
