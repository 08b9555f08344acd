package redis

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Insight/internal/config"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
)

// SessionGuard admits at most one in-flight search per session id.
type SessionGuard struct {
	client *Client
	ttl    time.Duration
	logger logging.Logger
}

// NewSessionGuard creates a guard whose leases expire after ttl if a holder
// dies without releasing. A live holder keeps its lease alive.
func NewSessionGuard(client *Client, ttl time.Duration, log logging.Logger) *SessionGuard {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if ttl <= 0 {
		ttl = config.DefaultSessionLockTTL
	}
	return &SessionGuard{client: client, ttl: ttl, logger: log.Named("session")}
}

// Acquire takes the session's lease without waiting. It returns
// errors.ErrSearchInProgress when another search holds it. The returned
// release func is safe to call once.
func (g *SessionGuard) Acquire(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.InvalidParam("session id is empty")
	}

	lock := NewMutex(g.client, "session:"+sessionID, g.logger, WithLockTTL(g.ttl), WithWatchdog(true))
	ok, err := lock.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.logger.Debug("session busy", logging.String("session_id", sessionID))
		return nil, errors.New(errors.ErrCodeSearchInProgress, "a search is already in progress for this session").
			WithDetail("session_id=" + sessionID)
	}

	return func(ctx context.Context) error {
		if err := lock.Unlock(ctx); err != nil {
			g.logger.Warn("failed to release session", logging.String("session_id", sessionID), logging.Err(err))
			return err
		}
		return nil
	}, nil
}

//Personal.AI order the ending
