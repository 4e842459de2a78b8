package monitor

import (
	"context"
	"fmt"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

// RecipientResolver expands a subject into the set of notification targets.
type RecipientResolver struct {
	store storage.Store
}

// NewRecipientResolver creates a resolver over the given store.
func NewRecipientResolver(store storage.Store) *RecipientResolver {
	return &RecipientResolver{store: store}
}

// Resolve returns every administrator plus, when subjectUserID is non-empty,
// the subject itself. The result is deduplicated: an admin who is also the
// subject appears once.
func (r *RecipientResolver) Resolve(ctx context.Context, subjectUserID string) ([]string, error) {
	admins, err := r.store.AdminUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}

	seen := make(map[string]bool, len(admins)+1)
	var recipients []string

	if subjectUserID != "" {
		seen[subjectUserID] = true
		recipients = append(recipients, subjectUserID)
	}
	for _, id := range admins {
		if seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	return recipients, nil
}
