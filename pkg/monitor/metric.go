package monitor

import (
	"time"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
)

// Metric is the value computed for one subject in one run. The credit
// monitor fills the spend fields; the document monitor fills DaysUntil.
type Metric struct {
	Used      float64
	Limit     float64
	Percent   float64
	DaysUntil int
	Expired   bool
}

// Subject is one entity under evaluation: a collaborator for the credit
// monitor, a document for the expiration monitor. UserID is set when the
// subject itself should be notified alongside the administrators.
type Subject struct {
	ID     string
	Name   string
	UserID string
	Metric Metric
	Doc    *model.Document
}

// creditMetric computes the percentage of the monthly limit used. Callers
// must not pass limit <= 0; profiles without a positive limit are filtered
// out before metrics are computed.
func creditMetric(used, limit float64) Metric {
	return Metric{
		Used:    used,
		Limit:   limit,
		Percent: (used / limit) * 100,
	}
}

// daysUntil returns the number of whole days from today until the given
// expiration date. Negative when the date is already past.
func daysUntil(expiration, today time.Time) int {
	expiration = model.DateOf(expiration)
	today = model.DateOf(today)
	return int(expiration.Sub(today).Hours() / 24)
}
