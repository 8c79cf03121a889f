package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ssonotify/internal/model"
)

// DedupWindow is how long a (member, category) pair is considered
// already-notified after a send.
const DedupWindow = 24 * time.Hour

type recencyStore interface {
	SentWithin(ctx context.Context, memberID string, category model.Category, window time.Duration) (bool, error)
}

// DedupGuard suppresses repeat notifications of the same category to the
// same member within DedupWindow. The notifications table is the source
// of truth; redis is an optional fast path in front of it. Any lookup
// error answers "not a duplicate" — a missed notification is worse than
// an occasional double send, so the guard never fails closed.
type DedupGuard struct {
	store  recencyStore
	cache  *redis.Client
	window time.Duration
	logger *zap.Logger
}

// NewDedupGuard builds a guard over the notification store. cache may be
// nil to run without the redis fast path.
func NewDedupGuard(store recencyStore, cache *redis.Client, logger *zap.Logger) *DedupGuard {
	return &DedupGuard{
		store:  store,
		cache:  cache,
		window: DedupWindow,
		logger: logger,
	}
}

// IsDuplicate reports whether an equivalent notification was already sent
// within the window, evaluated against the wall clock at call time.
func (g *DedupGuard) IsDuplicate(ctx context.Context, memberID string, category model.Category) bool {
	if g.cache != nil {
		n, err := g.cache.Exists(ctx, dedupKey(memberID, category)).Result()
		if err != nil {
			g.logger.Warn("Redis dedup check failed, falling through to DB",
				zap.String("member_id", memberID),
				zap.String("type", string(category)),
				zap.Error(err),
			)
		} else if n > 0 {
			return true
		}
	}

	dup, err := g.store.SentWithin(ctx, memberID, category, g.window)
	if err != nil {
		g.logger.Warn("Dedup query failed, allowing delivery",
			zap.String("member_id", memberID),
			zap.String("type", string(category)),
			zap.Error(err),
		)
		return false
	}
	return dup
}

// MarkSent records a successful in-app send in the cache so the next run
// can skip the DB query. Best effort.
func (g *DedupGuard) MarkSent(ctx context.Context, memberID string, category model.Category) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, dedupKey(memberID, category), 1, g.window).Err(); err != nil {
		g.logger.Warn("Failed to cache dedup key",
			zap.String("member_id", memberID),
			zap.String("type", string(category)),
			zap.Error(err),
		)
	}
}

func dedupKey(memberID string, category model.Category) string {
	return fmt.Sprintf("notif:dedup:%s:%s", category, memberID)
}
