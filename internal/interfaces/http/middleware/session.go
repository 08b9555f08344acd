package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
)

// SessionLocker leases a session for the duration of one search.
type SessionLocker interface {
	Acquire(ctx context.Context, sessionID string) (func(context.Context) error, error)
}

// SessionGuardConfig configures SessionGuard.
type SessionGuardConfig struct {
	// Header carries the caller's session id. Requests without it are not
	// guarded.
	Header string
	// OnConflict is called for every rejected request. Optional.
	OnConflict func()
}

// SessionGuard rejects a request with 409 while another request of the same
// session is still being served. If the locker itself fails the request is
// served unguarded.
func SessionGuard(locker SessionLocker, logger logging.Logger, config SessionGuardConfig) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("session_guard")
	header := config.Header
	if header == "" {
		header = "X-Session-ID"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(header))
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			release, err := locker.Acquire(r.Context(), sessionID)
			switch {
			case errors.IsConflict(err):
				if config.OnConflict != nil {
					config.OnConflict()
				}
				handlers.WriteAppError(w, err)
				return
			case err != nil:
				logger.Warn("session guard unavailable, serving unguarded",
					logging.String("session_id", sessionID), logging.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			defer func() {
				_ = release(context.WithoutCancel(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending
