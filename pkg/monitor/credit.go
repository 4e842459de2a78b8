package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

// Credit limit notification types.
const (
	TypeCreditExceeded = "credit_limit_exceeded"
	TypeCreditCritical = "credit_limit_critical"
	TypeCreditWarning  = "credit_limit_warning"
)

var creditThresholds = []Threshold{
	{
		Type:  TypeCreditExceeded,
		Title: "Limite de Crédito Excedido",
		Emoji: "🚫",
		Match: func(m Metric) bool { return m.Percent >= 100 },
	},
	{
		Type:  TypeCreditCritical,
		Title: "Limite de Crédito Crítico",
		Emoji: "🔴",
		Match: func(m Metric) bool { return m.Percent >= 90 },
	},
	{
		Type:  TypeCreditWarning,
		Title: "Limite de Crédito em Alerta",
		Emoji: "⚠️",
		Match: func(m Metric) bool { return m.Percent >= 80 },
	},
}

// CreditMonitor watches how much of the monthly credit limit each
// collaborator has consumed. It alerts the collaborator and every admin,
// at most once per severity tier per calendar month.
type CreditMonitor struct {
	store storage.Store
}

// NewCreditMonitor creates a credit limit monitor over the given store.
func NewCreditMonitor(store storage.Store) *CreditMonitor {
	return &CreditMonitor{store: store}
}

func (m *CreditMonitor) Name() string       { return "credit_limits" }
func (m *CreditMonitor) EntityType() string { return "credit_limit" }

func (m *CreditMonitor) Thresholds() []Threshold { return creditThresholds }

// Window returns the start of the current calendar month: each severity
// tier fires at most once per subject per month.
func (m *CreditMonitor) Window(now time.Time) (time.Time, string) {
	start, _ := model.MonthBounds(now)
	return start, model.MonthBucket(now)
}

// LoadSubjects computes the percentage of the monthly limit consumed by
// each collaborator with a positive limit. Approved and completed requests
// created in the current calendar month count toward usage.
func (m *CreditMonitor) LoadSubjects(ctx context.Context, now time.Time) ([]Subject, error) {
	profiles, err := m.store.ProfilesWithCreditLimit(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	start, end := model.MonthBounds(now)
	usage, err := m.store.ApprovedUsageBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load monthly usage: %w", err)
	}

	subjects := make([]Subject, 0, len(profiles))
	for _, p := range profiles {
		if p.CreditLimit <= 0 {
			continue
		}
		subjects = append(subjects, Subject{
			ID:     p.ID,
			Name:   p.FullName,
			UserID: p.ID,
			Metric: creditMetric(usage[p.ID], p.CreditLimit),
		})
	}
	return subjects, nil
}

// Compose phrases the alert in first person for the collaborator and in
// third person for admins. Both share the same type tag, so the dedup
// window suppresses them together.
func (m *CreditMonitor) Compose(s Subject, th Threshold, toSubject bool) (string, string) {
	if toSubject {
		return th.Title, fmt.Sprintf("%s Você utilizou %.0f%% do seu limite mensal (R$ %.2f de R$ %.2f)",
			th.Emoji, s.Metric.Percent, s.Metric.Used, s.Metric.Limit)
	}
	return th.Title, fmt.Sprintf("%s %s atingiu %.0f%% do limite (R$ %.2f de R$ %.2f)",
		th.Emoji, s.Name, s.Metric.Percent, s.Metric.Used, s.Metric.Limit)
}
