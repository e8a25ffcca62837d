package tracking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailtrace/internal/pkg/logger"
)

const (
	liveOpensKey  = "mailtrace:live:opens"
	liveClicksKey = "mailtrace:live:clicks"
	liveRecentKey = "mailtrace:live:recent"

	recentEventLimit = 50
)

// LiveEvent is one entry in the capped recent-activity feed.
type LiveEvent struct {
	Type  string    `json:"type"`
	Token string    `json:"token"`
	At    time.Time `json:"at"`
}

// LiveSnapshot is the current state of the live counters.
type LiveSnapshot struct {
	Opens  int64       `json:"opens"`
	Clicks int64       `json:"clicks"`
	Recent []LiveEvent `json:"recent"`
}

// LiveCounters mirrors open/click totals into Redis for a cheap live view.
// The database remains the source of truth; everything here is best-effort
// and a nil client turns the whole feature off.
type LiveCounters struct {
	rdb *redis.Client
}

// NewLiveCounters creates live counters over an optional Redis client.
func NewLiveCounters(rdb *redis.Client) *LiveCounters {
	return &LiveCounters{rdb: rdb}
}

// Enabled reports whether a Redis client is attached.
func (l *LiveCounters) Enabled() bool {
	return l != nil && l.rdb != nil
}

// RecordOpen bumps the open counter and appends to the recent feed.
func (l *LiveCounters) RecordOpen(ctx context.Context, token string) {
	l.record(ctx, liveOpensKey, LiveEvent{Type: "open", Token: token, At: time.Now().UTC()})
}

// RecordClick bumps the click counter and appends to the recent feed.
func (l *LiveCounters) RecordClick(ctx context.Context, token string) {
	l.record(ctx, liveClicksKey, LiveEvent{Type: "click", Token: token, At: time.Now().UTC()})
}

func (l *LiveCounters) record(ctx context.Context, counterKey string, evt LiveEvent) {
	if !l.Enabled() {
		return
	}
	if err := l.rdb.Incr(ctx, counterKey).Err(); err != nil {
		logger.Debug("live counter incr failed", "key", counterKey, "error", err)
		return
	}
	data, _ := json.Marshal(evt)
	pipe := l.rdb.Pipeline()
	pipe.LPush(ctx, liveRecentKey, data)
	pipe.LTrim(ctx, liveRecentKey, 0, recentEventLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Debug("live recent push failed", "error", err)
	}
}

// Snapshot reads the counters and the recent feed.
func (l *LiveCounters) Snapshot(ctx context.Context) (*LiveSnapshot, error) {
	snap := &LiveSnapshot{Recent: []LiveEvent{}}
	if !l.Enabled() {
		return snap, nil
	}

	opens, err := l.rdb.Get(ctx, liveOpensKey).Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	clicks, err := l.rdb.Get(ctx, liveClicksKey).Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	snap.Opens = opens
	snap.Clicks = clicks

	items, err := l.rdb.LRange(ctx, liveRecentKey, 0, recentEventLimit-1).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	for _, item := range items {
		var evt LiveEvent
		if json.Unmarshal([]byte(item), &evt) == nil {
			snap.Recent = append(snap.Recent, evt)
		}
	}
	return snap, nil
}
