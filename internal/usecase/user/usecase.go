package user

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	domain "user-webclient/internal/domain/user"
	apperrors "user-webclient/pkg/errors"
	"user-webclient/pkg/logger"
	"user-webclient/pkg/security"
)

// URL templates of the remote user API.
const (
	UsersURLTemplate  = "/users/{id}"
	BrokenURLTemplate = "/broken-url/{id}"
)

// Usecase applies request policies (plain, retry, fallback, error mapping)
// on top of a Client. It holds no per-call state and is safe for concurrent use.
type Usecase struct {
	client   Client              // Client for the remote user API
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request arguments
	retry    retryPolicy
	rules    []StatusRule
}

// New creates a new instance of Usecase with the provided client and logger.
func New(c Client, log *zap.Logger, opts ...Option) *Usecase {
	uc := &Usecase{
		client:   c,
		log:      log,
		validate: validator.New(),
		retry: retryPolicy{
			maxRetries: DefaultMaxRetries,
			delay:      DefaultRetryDelay,
		},
		rules: DefaultStatusRules(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetByID fetches /users/{id} once and returns the user or the failure as is.
func (uc *Usecase) GetByID(ctx context.Context, id string) (domain.User, error) {
	id, err := uc.validateID(id)
	if err != nil {
		return domain.User{}, err
	}

	uc.logger(ctx).Debug("fetching user", zap.String("id", id))
	return uc.fetch(ctx, UsersURLTemplate, id, uc.httpError)
}

// GetByIDAsync starts GetByID in the background and returns at once.
func (uc *Usecase) GetByIDAsync(ctx context.Context, id string) *Future {
	return runAsync(func() (domain.User, error) {
		return uc.GetByID(ctx, id)
	})
}

// GetWithRetry fetches /broken-url/{id}, retrying failed attempts with a
// fixed delay. When every attempt fails the result is a RetryExhaustedError.
func (uc *Usecase) GetWithRetry(ctx context.Context, id string) (domain.User, error) {
	id, err := uc.validateID(id)
	if err != nil {
		return domain.User{}, err
	}

	uc.logger(ctx).Debug("fetching user with retry",
		zap.String("id", id),
		zap.Int("max_retries", uc.retry.maxRetries),
		zap.Duration("delay", uc.retry.delay),
	)
	return uc.doRetry(ctx, func(ctx context.Context) (domain.User, error) {
		return uc.fetch(ctx, BrokenURLTemplate, id, uc.httpError)
	})
}

// GetWithRetryAsync starts GetWithRetry in the background and returns at once.
func (uc *Usecase) GetWithRetryAsync(ctx context.Context, id string) *Future {
	return runAsync(func() (domain.User, error) {
		return uc.GetWithRetry(ctx, id)
	})
}

// GetWithFallback fetches /broken-url/{id}. Any failure is logged and
// replaced by the empty user.
func (uc *Usecase) GetWithFallback(ctx context.Context, id string) domain.User {
	log := uc.logger(ctx)

	clean, err := uc.validateID(id)
	if err == nil {
		var u domain.User
		u, err = uc.fetch(ctx, BrokenURLTemplate, clean, uc.httpError)
		if err == nil {
			return u
		}
	}

	log.Error("An error has occurred", zap.String("id", id), zap.Error(err))
	return domain.User{}
}

// GetWithErrorMapping fetches /broken-url/{id} and rewrites known statuses
// into application errors before the body is read. Unmapped failures are
// returned unchanged.
func (uc *Usecase) GetWithErrorMapping(ctx context.Context, id string) (domain.User, error) {
	id, err := uc.validateID(id)
	if err != nil {
		return domain.User{}, err
	}

	u, err := uc.fetch(ctx, BrokenURLTemplate, id, uc.mappedError)
	if err != nil {
		uc.logger(ctx).Warn("request failed", zap.String("id", id), zap.Error(err))
	}
	return u, err
}

// fetch performs one request. onStatus turns a non-2xx response into an error.
func (uc *Usecase) fetch(ctx context.Context, template, id string, onStatus func(*Response) error) (domain.User, error) {
	resp, err := uc.client.Get(ctx, template, id)
	if err != nil {
		return domain.User{}, err
	}

	if !resp.Successful() {
		return domain.User{}, onStatus(resp)
	}

	return decodeUser(resp)
}

func (uc *Usecase) httpError(resp *Response) error {
	return apperrors.NewHTTPError(resp.StatusCode, resp.Status, resp.Method, resp.URL, resp.Body)
}

func (uc *Usecase) mappedError(resp *Response) error {
	if err := mapStatus(uc.rules, resp.StatusCode); err != nil {
		return err
	}
	return uc.httpError(resp)
}

// validateID checks that id is usable as a single path segment.
func (uc *Usecase) validateID(id string) (string, error) {
	if err := uc.validate.Var(id, "required"); err != nil {
		return "", apperrors.NewValidationError("id", "is required")
	}

	clean, err := security.ValidatePathParam(id)
	if err != nil {
		return "", apperrors.NewValidationError("id", err.Error())
	}
	return clean, nil
}

func (uc *Usecase) logger(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, uc.log)
}

// decodeUser parses a 2xx body. An empty body yields the empty user.
func decodeUser(resp *Response) (domain.User, error) {
	var u domain.User
	if len(resp.Body) == 0 {
		return u, nil
	}

	if err := json.Unmarshal(resp.Body, &u); err != nil {
		return domain.User{}, apperrors.NewDecodeError(resp.URL, fmt.Errorf("user payload: %w", err))
	}
	return u, nil
}
