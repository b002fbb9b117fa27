package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-webclient/internal/domain/user"
	"user-webclient/internal/usecase/user"
	apperrors "user-webclient/pkg/errors"
	"user-webclient/pkg/logger"
	"user-webclient/pkg/security"
)

// Request policies accepted by GetUser.
const (
	PolicyPlain    = "plain"
	PolicyAsync    = "async"
	PolicyRetry    = "retry"
	PolicyFallback = "fallback"
	PolicyMapped   = "mapped"
)

// ResponseEvicter drops cached upstream responses of a templated request.
type ResponseEvicter interface {
	Invalidate(ctx context.Context, template string, params ...string) error
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	exec    user.Executor
	evicter ResponseEvicter // nil when the response cache is disabled
	log     *zap.Logger
}

// Option configures a UserHandler.
type Option func(*UserHandler)

// WithResponseEvicter enables DELETE /v1/users/:id/cache.
func WithResponseEvicter(e ResponseEvicter) Option {
	return func(h *UserHandler) {
		h.evicter = e
	}
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(exec user.Executor, log *zap.Logger, opts ...Option) *UserHandler {
	h := &UserHandler{
		exec: exec,
		log:  log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetUserQuery holds the query parameters of GET /v1/users/:id
type GetUserQuery struct {
	Policy string `form:"policy" binding:"omitempty,oneof=plain async retry fallback mapped"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	var q GetUserQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		log.Warn("Invalid get user query", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}
	if q.Policy == "" {
		q.Policy = PolicyPlain
	}

	id := c.Param("id")
	log.Info("Gin GetUser request", zap.String("id", id), zap.String("policy", q.Policy))

	var (
		u   domain.User
		err error
	)
	switch q.Policy {
	case PolicyAsync:
		u, err = h.exec.GetByIDAsync(ctx, id).Await(ctx)
	case PolicyRetry:
		u, err = h.exec.GetWithRetry(ctx, id)
	case PolicyFallback:
		u = h.exec.GetWithFallback(ctx, id)
	case PolicyMapped:
		u, err = h.exec.GetWithErrorMapping(ctx, id)
	default:
		u, err = h.exec.GetByID(ctx, id)
	}
	if err != nil {
		log.Error("Gin GetUser failed", zap.String("policy", q.Policy), zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	})
}

// EvictUser handles DELETE /v1/users/:id/cache. It drops the cached
// responses of every user URL template for id.
func (h *UserHandler) EvictUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	if h.evicter == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "cache_disabled",
			Message: "response cache is not enabled",
		})
		return
	}

	id, err := security.ValidatePathParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	for _, template := range []string{user.UsersURLTemplate, user.BrokenURLTemplate} {
		if err := h.evicter.Invalidate(ctx, template, id); err != nil {
			log.Error("Gin EvictUser failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "cache_unavailable",
				Message: "failed to evict cached responses",
			})
			return
		}
	}

	log.Info("Gin EvictUser", zap.String("id", id))
	c.Status(http.StatusNoContent)
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "An internal error occurred"
	}
	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

func statusFor(err error) (int, string) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest, "validation_error"
	case apperrors.KindMapped:
		var mapped *apperrors.MappedError
		if errors.As(err, &mapped) && mapped.StatusCode >= 400 && mapped.StatusCode < 500 {
			if mapped.StatusCode == http.StatusNotFound {
				return http.StatusNotFound, "not_found"
			}
			return mapped.StatusCode, "upstream_client_error"
		}
		return http.StatusBadGateway, "upstream_unavailable"
	case apperrors.KindClient:
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.StatusCode, "upstream_client_error"
		}
		return http.StatusBadGateway, "upstream_client_error"
	case apperrors.KindServer, apperrors.KindUnexpectedStatus, apperrors.KindDecode:
		return http.StatusBadGateway, "upstream_error"
	case apperrors.KindRetryExhausted:
		return http.StatusBadGateway, "retries_exhausted"
	case apperrors.KindTransientNetwork:
		return http.StatusGatewayTimeout, "upstream_unreachable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
