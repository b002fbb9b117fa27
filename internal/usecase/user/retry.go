package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "user-webclient/internal/domain/user"
	apperrors "user-webclient/pkg/errors"
)

// attemptFailureMessage prefixes every failed attempt of a retried request.
const attemptFailureMessage = "Something went wrong"

type retryPolicy struct {
	maxRetries int
	delay      time.Duration
	retryIf    func(error) bool // nil retries every failure
}

// doRetry runs fn until it succeeds or maxRetries retries have failed,
// waiting a fixed delay between attempts. Each failure is wrapped with
// attemptFailureMessage; the terminal error wraps the last one.
func (uc *Usecase) doRetry(ctx context.Context, fn func(context.Context) (domain.User, error)) (domain.User, error) {
	log := uc.logger(ctx)
	p := uc.retry

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		u, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info("request succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return u, nil
		}

		lastErr = apperrors.NewInternalError(attemptFailureMessage, err)

		if p.retryIf != nil && !p.retryIf(err) {
			log.Warn("failure is not retryable", zap.Int("attempt", attempt+1), zap.Error(err))
			return domain.User{}, lastErr
		}

		if attempt == p.maxRetries {
			break
		}

		log.Warn("attempt failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", p.maxRetries),
			zap.Duration("delay", p.delay),
			zap.Error(err),
		)

		timer := time.NewTimer(p.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return domain.User{}, ctx.Err()
		}
	}

	exhausted := apperrors.NewRetryExhaustedError(p.maxRetries, p.maxRetries, lastErr)
	log.Error("retries exhausted", zap.Int("max_retries", p.maxRetries), zap.Error(lastErr))
	return domain.User{}, exhausted
}
