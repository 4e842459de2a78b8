package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Monitor is one scheduled check: it loads subjects with their metrics and
// supplies the threshold table, dedup window and message templates. The two
// concrete monitors (credit limits, document expiration) differ only in
// these; the run orchestration is shared.
type Monitor interface {
	// Name identifies the monitor in logs and run summaries.
	Name() string

	// EntityType tags the notification records this monitor creates.
	EntityType() string

	// LoadSubjects returns every candidate subject with its metric already
	// computed. A failure here aborts the whole run: with partial data the
	// monitor cannot make a sound decision and must not notify anyone.
	LoadSubjects(ctx context.Context, now time.Time) ([]Subject, error)

	// Thresholds returns the severity table, most severe first.
	Thresholds() []Threshold

	// Window returns the dedup lookback start and the period bucket used
	// for the storage-level uniqueness of this run's notifications.
	Window(now time.Time) (since time.Time, bucket string)

	// Compose renders the title and message for one recipient. toSubject is
	// true when the recipient is the monitored person rather than an admin.
	Compose(s Subject, th Threshold, toSubject bool) (title, message string)
}

// Summary is the machine-readable result of one monitor run. It is always
// produced, even on failure, so a scheduler can alert on success=false.
type Summary struct {
	Monitor              string `json:"monitor"`
	Success              bool   `json:"success"`
	SubjectsChecked      int    `json:"subjects_checked"`
	NotificationsCreated int    `json:"notifications_created"`
	NotificationsFailed  int    `json:"notifications_failed"`
	Error                string `json:"error,omitempty"`
}

// Runner executes a monitor batch: load subjects, classify each against the
// threshold table, drop the already-notified, resolve recipients and fan
// out. Subjects are independent and processed by a bounded worker pool.
type Runner struct {
	gate     *DedupGate
	resolver *RecipientResolver
	fanout   *Fanout
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	now      func() time.Time
}

// NewRunner wires a runner from its collaborators. workers bounds the
// per-subject concurrency; timeout caps the store work for one subject.
func NewRunner(gate *DedupGate, resolver *RecipientResolver, fanout *Fanout, logger *slog.Logger, workers int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Runner{
		gate:     gate,
		resolver: resolver,
		fanout:   fanout,
		logger:   logger,
		workers:  workers,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Run executes one batch of the given monitor. Per-subject failures are
// counted in the summary and never abort the run; only a subject-loading
// failure does.
func (r *Runner) Run(ctx context.Context, m Monitor) Summary {
	now := r.now().UTC()
	summary := Summary{Monitor: m.Name()}

	r.logger.Info("monitor run started", "monitor", m.Name())

	subjects, err := m.LoadSubjects(ctx, now)
	if err != nil {
		r.logger.Error("load subjects", "monitor", m.Name(), "error", err)
		summary.Error = err.Error()
		return summary
	}
	summary.SubjectsChecked = len(subjects)

	since, bucket := m.Window(now)
	thresholds := m.Thresholds()

	var created, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for _, s := range subjects {
		// Cooperative cancellation between subjects. Notifications already
		// committed stay valid; each is an independently idempotent alert.
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r.checkSubject(ctx, m, s, thresholds, since, bucket, &created, &failed)
			return nil
		})
	}
	_ = g.Wait()

	summary.NotificationsCreated = int(created.Load())
	summary.NotificationsFailed = int(failed.Load())
	summary.Success = ctx.Err() == nil

	r.logger.Info("monitor run completed",
		"monitor", m.Name(),
		"subjects_checked", summary.SubjectsChecked,
		"notifications_created", summary.NotificationsCreated,
		"notifications_failed", summary.NotificationsFailed,
	)
	return summary
}

func (r *Runner) checkSubject(ctx context.Context, m Monitor, s Subject, thresholds []Threshold, since time.Time, bucket string, created, failed *atomic.Int64) {
	sctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	th, ok := Classify(s.Metric, thresholds)
	if !ok {
		return
	}

	notified, err := r.gate.AlreadyNotified(sctx, th.Type, s.ID, since)
	if err != nil {
		failed.Add(1)
		r.logger.Error("dedup check", "monitor", m.Name(), "entity_id", s.ID, "error", err)
		return
	}
	if notified {
		r.logger.Debug("already notified in window",
			"monitor", m.Name(), "entity_id", s.ID, "type", th.Type)
		return
	}

	recipients, err := r.resolver.Resolve(sctx, s.UserID)
	if err != nil {
		failed.Add(1)
		r.logger.Error("resolve recipients", "monitor", m.Name(), "entity_id", s.ID, "error", err)
		return
	}

	res := r.fanout.Emit(sctx, m, s, th, recipients, bucket)
	created.Add(int64(res.Created))
	failed.Add(int64(res.Failed))

	r.logger.Info("alert emitted",
		"monitor", m.Name(),
		"entity_id", s.ID,
		"subject", s.Name,
		"type", th.Type,
		"created", res.Created,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
}
