package monitor

import (
	"context"
	"log/slog"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

// FanoutResult counts what happened to each resolved recipient of one alert.
// Every recipient ends in exactly one bucket; none is silently dropped.
type FanoutResult struct {
	Created int
	Skipped int
	Failed  int
}

// Fanout delivers one logical alert as one notification record per
// recipient.
type Fanout struct {
	store  storage.Store
	logger *slog.Logger
}

// NewFanout creates a fanout over the given store.
func NewFanout(store storage.Store, logger *slog.Logger) *Fanout {
	return &Fanout{store: store, logger: logger}
}

// Emit composes and inserts one notification per recipient. A failed insert
// for one recipient is counted and logged but does not stop delivery to the
// rest; records already created stay committed. An insert that hits the
// dedup index counts as Skipped, not Failed, since the alert exists.
func (f *Fanout) Emit(ctx context.Context, m Monitor, s Subject, th Threshold, recipients []string, bucket string) FanoutResult {
	var res FanoutResult
	for _, recipient := range recipients {
		toSubject := s.UserID != "" && recipient == s.UserID
		title, message := m.Compose(s, th, toSubject)

		created, err := f.store.InsertNotification(ctx, &model.Notification{
			UserID:       recipient,
			Title:        title,
			Message:      message,
			Type:         th.Type,
			EntityType:   m.EntityType(),
			EntityID:     s.ID,
			PeriodBucket: bucket,
		})
		if err != nil {
			res.Failed++
			f.logger.Error("insert notification",
				"monitor", m.Name(),
				"recipient", recipient,
				"entity_id", s.ID,
				"type", th.Type,
				"error", err,
			)
			continue
		}
		if !created {
			res.Skipped++
			continue
		}
		res.Created++
	}
	return res
}
