package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionCleaner deletes sessions that expired long enough ago.
type SessionCleaner interface {
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// RunSessionJanitor cleans expired sessions every interval until ctx is done.
func RunSessionJanitor(ctx context.Context, cleaner SessionCleaner, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		return
	}
	log = log.With(zap.String("component", "session_janitor"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := cleaner.CleanExpiredSessions(ctx); err != nil && ctx.Err() == nil {
				log.Error("Failed to clean expired sessions", zap.Error(err))
			}
		}
	}
}
