package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

// DedupGate suppresses repeat alerts inside a monitor's lookback window.
// It holds no state of its own: the append-only notification log is the
// source of truth. The gate is a cheap pre-filter; the storage layer's
// unique dedup index is what makes overlapping runs race-free.
type DedupGate struct {
	store storage.Store
}

// NewDedupGate creates a dedup gate over the given store.
func NewDedupGate(store storage.Store) *DedupGate {
	return &DedupGate{store: store}
}

// AlreadyNotified reports whether an alert with the given type was already
// emitted for the entity at or after since.
func (g *DedupGate) AlreadyNotified(ctx context.Context, typeTag, entityID string, since time.Time) (bool, error) {
	count, err := g.store.CountNotificationsSince(ctx, typeTag, entityID, since)
	if err != nil {
		return false, fmt.Errorf("dedup query: %w", err)
	}
	return count > 0, nil
}
