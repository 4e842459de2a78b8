package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence layer the monitors depend on. Subjects and
// their limits are owned by the administrative CRUD surface; the monitors
// only read them and append notifications.
type Store interface {
	// ProfilesWithCreditLimit returns profiles with a positive credit limit.
	// Profiles with limit <= 0 are never monitored.
	ProfilesWithCreditLimit(ctx context.Context) ([]model.Profile, error)

	// ApprovedUsageBetween sums approved values of benefit requests created
	// in [from, to), grouped by user.
	ApprovedUsageBetween(ctx context.Context, from, to time.Time) (map[string]float64, error)

	// DocumentsExpiringBetween returns documents with a non-null expiration
	// date inside the inclusive [from, to] range.
	DocumentsExpiringBetween(ctx context.Context, from, to time.Time) ([]model.Document, error)

	// AdminUserIDs returns the ids of all users holding the admin role.
	AdminUserIDs(ctx context.Context) ([]string, error)

	// ProfileNames resolves profile ids to full names.
	ProfileNames(ctx context.Context, ids []string) (map[string]string, error)

	// CountNotificationsSince counts notifications of the given type for the
	// given entity created at or after since. Used by the dedup gate.
	CountNotificationsSince(ctx context.Context, typeTag, entityID string, since time.Time) (int, error)

	// InsertNotification appends a notification. It returns created=false
	// with a nil error when an identical alert (same recipient, type, entity
	// and period bucket) already exists, so concurrent runs converge on a
	// single record per recipient.
	InsertNotification(ctx context.Context, n *model.Notification) (created bool, err error)

	// ListNotifications returns notifications matching the filter, newest first.
	ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, error)

	// UpsertProfile creates or updates a profile.
	UpsertProfile(ctx context.Context, p *model.Profile) error

	// SetUserRole grants a role to a user. Granting twice is a no-op.
	SetUserRole(ctx context.Context, userID, role string) error

	// InsertBenefitRequest persists a benefit request.
	InsertBenefitRequest(ctx context.Context, r *model.BenefitRequest) error

	// InsertDocument persists a collaborator document.
	InsertDocument(ctx context.Context, d *model.Document) error

	// Close releases resources.
	Close() error
}
