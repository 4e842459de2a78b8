package model

import "time"

// Profile represents a collaborator with an optional monthly credit limit.
type Profile struct {
	ID          string  `json:"id" db:"id"`
	FullName    string  `json:"full_name" db:"full_name"`
	CreditLimit float64 `json:"credit_limit" db:"credit_limit"`
}

// Benefit request statuses. Only approved and completed requests count
// toward monthly credit usage.
const (
	StatusPending   = "pendente"
	StatusApproved  = "aprovada"
	StatusCompleted = "concluida"
	StatusRejected  = "recusada"
)

// BenefitRequest is a single benefit request with its approved value.
type BenefitRequest struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	ApprovedValue float64   `json:"approved_value" db:"approved_value"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Document is a collaborator document with an expiration date.
type Document struct {
	ID             string    `json:"id" db:"id"`
	ProfileID      string    `json:"profile_id" db:"profile_id"`
	Name           string    `json:"document_name" db:"document_name"`
	Type           string    `json:"document_type" db:"document_type"`
	ExpirationDate time.Time `json:"expiration_date" db:"expiration_date"`
}

// Notification is a single alert delivered to one recipient. Records are
// append-only: once created they are never mutated, and the notification
// log itself is what the dedup check reads back on the next run.
type Notification struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	Message      string    `json:"message" db:"message"`
	Type         string    `json:"type" db:"type"`
	EntityType   string    `json:"entity_type" db:"entity_type"`
	EntityID     string    `json:"entity_id" db:"entity_id"`
	PeriodBucket string    `json:"period_bucket" db:"period_bucket"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NotificationFilter controls which notifications are returned by listings.
type NotificationFilter struct {
	UserID string    `json:"user_id,omitempty"`
	Type   string    `json:"type,omitempty"`
	Since  time.Time `json:"since,omitempty"`
	Limit  int       `json:"limit,omitempty"`
}

// MonthBounds returns the first instant of the month containing t and the
// first instant of the following month. The credit monitor uses this both
// as the usage observation window and as the dedup window.
func MonthBounds(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// MonthBucket returns the calendar-month dedup bucket for t, e.g. "2026-08".
func MonthBucket(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// DayBucket returns the calendar-day dedup bucket for t, e.g. "2026-08-31".
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
