package app

import (
	"context"

	"go.uber.org/zap"

	"user-webclient/pkg/logger"
)

// runDemo fetches the configured user asynchronously and logs the result.
func (a *App) runDemo(ctx context.Context) {
	ctx, _ = logger.EnsureRequestID(ctx)
	log := logger.WithContext(ctx, a.Logger)

	id := a.Config.App.DemoUserID
	u, err := a.Container.UserUC.GetByIDAsync(ctx, id).Await(ctx)
	if err != nil {
		log.Error("Get user async failed", zap.String("id", id), zap.Error(err))
		return
	}

	log.Info("Get user async",
		zap.Int64("id", u.ID),
		zap.String("name", u.Name),
		zap.String("email", u.Email),
	)
}
