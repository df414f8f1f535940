package shell

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/client/api"
)

// StartAutoSync refreshes the cache every interval while a user is signed
// in, until ctx is done.
func (s *Shell) StartAutoSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			sess := s.auth.Session()
			if !sess.Valid() {
				continue
			}
			if err := s.engine.SyncAll(ctx, sess); err != nil {
				s.log.Warn("background sync failed", zap.Error(err))
				if api.IsUnauthorized(err) {
					if err := s.auth.Logout(ctx); err != nil {
						s.log.Warn("cannot clear rejected session", zap.Error(err))
					}
				}
				continue
			}
			s.log.Debug("background sync done", zap.Int64("user_id", sess.UserID))
		}
	}()
}
