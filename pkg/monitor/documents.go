package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

// Document expiration notification types.
const (
	TypeDocumentExpired          = "document_expired"
	TypeDocumentExpiringCritical = "document_expiring_critical"
	TypeDocumentExpiring         = "document_expiring"
)

// DocumentWindow bounds the expiration scan: documents expiring within
// LookaheadDays, or expired up to LookbackDays ago, are evaluated.
// CriticalDays separates "expiring soon" from the critical tier.
type DocumentWindow struct {
	LookaheadDays int
	LookbackDays  int
	CriticalDays  int
}

// DefaultDocumentWindow matches the production schedule: scan 30 days
// ahead and 7 days back, critical inside 7 days.
func DefaultDocumentWindow() DocumentWindow {
	return DocumentWindow{LookaheadDays: 30, LookbackDays: 7, CriticalDays: 7}
}

// DocumentMonitor watches collaborator documents approaching or past their
// expiration date. Only administrators are notified; document owners are
// not necessarily system users. A daily run re-alerts at most once per day
// per document.
type DocumentMonitor struct {
	store  storage.Store
	labels *Labels
	window DocumentWindow
}

// NewDocumentMonitor creates a document expiration monitor.
func NewDocumentMonitor(store storage.Store, labels *Labels, window DocumentWindow) *DocumentMonitor {
	if labels == nil {
		labels = DefaultLabels()
	}
	if window.LookaheadDays <= 0 {
		window = DefaultDocumentWindow()
	}
	return &DocumentMonitor{store: store, labels: labels, window: window}
}

func (m *DocumentMonitor) Name() string       { return "document_expiration" }
func (m *DocumentMonitor) EntityType() string { return "collaborator_document" }

func (m *DocumentMonitor) Thresholds() []Threshold {
	critical := m.window.CriticalDays
	lookahead := m.window.LookaheadDays
	return []Threshold{
		{
			Type:  TypeDocumentExpired,
			Title: "Documento Vencido",
			Emoji: "⚠️",
			Match: func(me Metric) bool { return me.DaysUntil < 0 },
		},
		{
			Type:  TypeDocumentExpiringCritical,
			Title: "Documento Vencendo",
			Emoji: "🚨",
			Match: func(me Metric) bool { return me.DaysUntil <= critical },
		},
		{
			Type:  TypeDocumentExpiring,
			Title: "Documento Próximo do Vencimento",
			Emoji: "📄",
			Match: func(me Metric) bool { return me.DaysUntil <= lookahead },
		},
	}
}

// Window returns the trailing 24 hours: repeated runs inside one day do
// not duplicate, while tomorrow's run re-alerts until the document is
// renewed.
func (m *DocumentMonitor) Window(now time.Time) (time.Time, string) {
	return now.Add(-24 * time.Hour), model.DayBucket(now)
}

// LoadSubjects fetches every document expiring inside the scan range and
// computes the whole days remaining until expiration (negative when past).
func (m *DocumentMonitor) LoadSubjects(ctx context.Context, now time.Time) ([]Subject, error) {
	today := model.DateOf(now)
	from := today.AddDate(0, 0, -m.window.LookbackDays)
	to := today.AddDate(0, 0, m.window.LookaheadDays)

	docs, err := m.store.DocumentsExpiringBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load expiring documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	profileIDs := make([]string, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if !seen[d.ProfileID] {
			seen[d.ProfileID] = true
			profileIDs = append(profileIDs, d.ProfileID)
		}
	}

	names, err := m.store.ProfileNames(ctx, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("load profile names: %w", err)
	}

	subjects := make([]Subject, 0, len(docs))
	for _, d := range docs {
		days := daysUntil(d.ExpirationDate, today)
		subjects = append(subjects, Subject{
			ID:   d.ID,
			Name: names[d.ProfileID],
			Metric: Metric{
				DaysUntil: days,
				Expired:   days < 0,
			},
			Doc: &d,
		})
	}
	return subjects, nil
}

// Compose renders the admin-facing message. Document alerts have a single
// phrasing since only admins receive them.
func (m *DocumentMonitor) Compose(s Subject, th Threshold, _ bool) (string, string) {
	title := th.Emoji + " " + th.Title
	label := m.labels.Label(s.Doc.Type)

	switch th.Type {
	case TypeDocumentExpired:
		return title, fmt.Sprintf("O documento %q (%s) do colaborador %s está vencido há %d dias.",
			s.Doc.Name, label, s.Name, -s.Metric.DaysUntil)
	case TypeDocumentExpiringCritical:
		return title, fmt.Sprintf("O documento %q (%s) do colaborador %s vence em %d %s.",
			s.Doc.Name, label, s.Name, s.Metric.DaysUntil, dayWord(s.Metric.DaysUntil))
	default:
		return title, fmt.Sprintf("O documento %q (%s) do colaborador %s vence em %d dias.",
			s.Doc.Name, label, s.Name, s.Metric.DaysUntil)
	}
}

func dayWord(days int) string {
	if days == 1 {
		return "dia"
	}
	return "dias"
}
