package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_ProfilesWithCreditLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertProfile(ctx, &model.Profile{FullName: "Com Limite", CreditLimit: 500}))
	require.NoError(t, db.UpsertProfile(ctx, &model.Profile{FullName: "Sem Limite", CreditLimit: 0}))

	profiles, err := db.ProfilesWithCreditLimit(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Com Limite", profiles[0].FullName)
	assert.InDelta(t, 500.0, profiles[0].CreditLimit, 0.001)
}

func TestSQLite_UpsertProfile_Updates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := &model.Profile{FullName: "Maria", CreditLimit: 100}
	require.NoError(t, db.UpsertProfile(ctx, p))
	assert.NotEmpty(t, p.ID)

	p.CreditLimit = 200
	require.NoError(t, db.UpsertProfile(ctx, p))

	profiles, err := db.ProfilesWithCreditLimit(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.InDelta(t, 200.0, profiles[0].CreditLimit, 0.001)
}

func TestSQLite_ApprovedUsageBetween(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	from, to := model.MonthBounds(now)

	requests := []model.BenefitRequest{
		{UserID: "u1", ApprovedValue: 100, Status: model.StatusApproved, CreatedAt: now},
		{UserID: "u1", ApprovedValue: 50, Status: model.StatusCompleted, CreatedAt: now},
		{UserID: "u1", ApprovedValue: 999, Status: model.StatusPending, CreatedAt: now},
		{UserID: "u2", ApprovedValue: 70, Status: model.StatusApproved, CreatedAt: now},
		{UserID: "u2", ApprovedValue: 80, Status: model.StatusApproved, CreatedAt: now.AddDate(0, -2, 0)},
	}
	for _, r := range requests {
		require.NoError(t, db.InsertBenefitRequest(ctx, &r))
	}

	usage, err := db.ApprovedUsageBetween(ctx, from, to)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, usage["u1"], 0.001)
	assert.InDelta(t, 70.0, usage["u2"], 0.001)
}

func TestSQLite_DocumentsExpiringBetween(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	today := model.DateOf(time.Now().UTC())
	docs := []model.Document{
		{ProfileID: "p1", Name: "Dentro", Type: "contrato", ExpirationDate: today.AddDate(0, 0, 10)},
		{ProfileID: "p1", Name: "Na Borda", Type: "contrato", ExpirationDate: today.AddDate(0, 0, 30)},
		{ProfileID: "p1", Name: "Fora", Type: "contrato", ExpirationDate: today.AddDate(0, 0, 31)},
		{ProfileID: "p2", Name: "Vencido", Type: "atestado", ExpirationDate: today.AddDate(0, 0, -7)},
		{ProfileID: "p2", Name: "Muito Antigo", Type: "atestado", ExpirationDate: today.AddDate(0, 0, -8)},
	}
	for _, d := range docs {
		require.NoError(t, db.InsertDocument(ctx, &d))
	}
	// documents without an expiration date are never scanned
	require.NoError(t, db.InsertDocument(ctx, &model.Document{ProfileID: "p3", Name: "Sem Data", Type: "outro"}))

	got, err := db.DocumentsExpiringBetween(ctx, today.AddDate(0, 0, -7), today.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, got, 3)

	names := make([]string, 0, len(got))
	for _, d := range got {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"Dentro", "Na Borda", "Vencido"}, names)
}

func TestSQLite_AdminUserIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetUserRole(ctx, "a1", "admin"))
	require.NoError(t, db.SetUserRole(ctx, "a2", "admin"))
	require.NoError(t, db.SetUserRole(ctx, "a1", "admin")) // duplicate grant is a no-op
	require.NoError(t, db.SetUserRole(ctx, "u1", "colaborador"))

	ids, err := db.AdminUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2"}, ids)
}

func TestSQLite_ProfileNames(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p1 := &model.Profile{FullName: "Maria"}
	p2 := &model.Profile{FullName: "José"}
	require.NoError(t, db.UpsertProfile(ctx, p1))
	require.NoError(t, db.UpsertProfile(ctx, p2))

	names, err := db.ProfileNames(ctx, []string{p1.ID, p2.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{p1.ID: "Maria", p2.ID: "José"}, names)

	empty, err := db.ProfileNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLite_InsertNotification_DedupIndex(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	n := &model.Notification{
		UserID:       "admin-1",
		Title:        "Limite de Crédito Crítico",
		Message:      "mensagem",
		Type:         "credit_limit_critical",
		EntityType:   "credit_limit",
		EntityID:     "user-1",
		PeriodBucket: "2026-08",
	}
	created, err := db.InsertNotification(ctx, n)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	// Same recipient, type, entity and bucket: absorbed, not an error.
	dup := &model.Notification{
		UserID:       "admin-1",
		Title:        "Limite de Crédito Crítico",
		Message:      "mensagem",
		Type:         "credit_limit_critical",
		EntityType:   "credit_limit",
		EntityID:     "user-1",
		PeriodBucket: "2026-08",
	}
	created, err = db.InsertNotification(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	// Different bucket inserts cleanly.
	next := *dup
	next.ID = ""
	next.PeriodBucket = "2026-09"
	created, err = db.InsertNotification(ctx, &next)
	require.NoError(t, err)
	assert.True(t, created)

	all, err := db.ListNotifications(ctx, model.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_CountNotificationsSince(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	old := &model.Notification{
		UserID: "a1", Title: "t", Message: "m",
		Type: "document_expiring", EntityType: "collaborator_document",
		EntityID: "doc-1", PeriodBucket: "2026-07-01",
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	recent := &model.Notification{
		UserID: "a1", Title: "t", Message: "m",
		Type: "document_expiring", EntityType: "collaborator_document",
		EntityID: "doc-1", PeriodBucket: "2026-07-03",
	}
	_, err := db.InsertNotification(ctx, old)
	require.NoError(t, err)
	_, err = db.InsertNotification(ctx, recent)
	require.NoError(t, err)

	count, err := db.CountNotificationsSince(ctx, "document_expiring", "doc-1",
		time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = db.CountNotificationsSince(ctx, "document_expired", "doc-1",
		time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLite_ListNotifications_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seed := []model.Notification{
		{UserID: "a1", Title: "t", Message: "m", Type: "credit_limit_warning", EntityType: "credit_limit", EntityID: "u1", PeriodBucket: "b1"},
		{UserID: "a1", Title: "t", Message: "m", Type: "document_expiring", EntityType: "collaborator_document", EntityID: "d1", PeriodBucket: "b2"},
		{UserID: "a2", Title: "t", Message: "m", Type: "credit_limit_warning", EntityType: "credit_limit", EntityID: "u2", PeriodBucket: "b3"},
	}
	for _, n := range seed {
		_, err := db.InsertNotification(ctx, &n)
		require.NoError(t, err)
	}

	byUser, err := db.ListNotifications(ctx, model.NotificationFilter{UserID: "a1"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byType, err := db.ListNotifications(ctx, model.NotificationFilter{Type: "credit_limit_warning"})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	limited, err := db.ListNotifications(ctx, model.NotificationFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
