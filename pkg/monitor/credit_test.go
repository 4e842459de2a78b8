package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/monitor"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

func seedCreditScenario(t *testing.T, store storage.Store, limit, used float64, adminIDs ...string) string {
	t.Helper()
	ctx := context.Background()

	profile := &model.Profile{FullName: "Maria Souza", CreditLimit: limit}
	require.NoError(t, store.UpsertProfile(ctx, profile))

	if used > 0 {
		require.NoError(t, store.InsertBenefitRequest(ctx, &model.BenefitRequest{
			UserID:        profile.ID,
			ApprovedValue: used,
			Status:        model.StatusApproved,
			CreatedAt:     time.Now().UTC(),
		}))
	}

	for _, id := range adminIDs {
		require.NoError(t, store.SetUserRole(ctx, id, "admin"))
	}
	return profile.ID
}

func TestCreditMonitor_CriticalScenario(t *testing.T) {
	store := newTestStore(t)
	userID := seedCreditScenario(t, store, 1000, 950, "admin-1")

	runner := newTestRunner(store)
	summary := runner.Run(context.Background(), monitor.NewCreditMonitor(store))

	require.True(t, summary.Success)
	assert.Equal(t, 1, summary.SubjectsChecked)
	assert.Equal(t, 2, summary.NotificationsCreated) // subject + 1 admin
	assert.Equal(t, 0, summary.NotificationsFailed)

	ctx := context.Background()

	// First-person phrasing for the subject
	own, err := store.ListNotifications(ctx, model.NotificationFilter{UserID: userID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, monitor.TypeCreditCritical, own[0].Type)
	assert.Equal(t, "Limite de Crédito Crítico", own[0].Title)
	assert.Contains(t, own[0].Message, "Você utilizou 95%")
	assert.Contains(t, own[0].Message, "950.00")
	assert.Contains(t, own[0].Message, "1000.00")

	// Third-person phrasing for the admin
	admin, err := store.ListNotifications(ctx, model.NotificationFilter{UserID: "admin-1"})
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, monitor.TypeCreditCritical, admin[0].Type)
	assert.Contains(t, admin[0].Message, "Maria Souza atingiu 95%")
	assert.Equal(t, userID, admin[0].EntityID)
	assert.Equal(t, "credit_limit", admin[0].EntityType)
}

func TestCreditMonitor_FanoutCompleteness(t *testing.T) {
	store := newTestStore(t)
	seedCreditScenario(t, store, 1000, 1200, "admin-1", "admin-2", "admin-3")

	runner := newTestRunner(store)
	summary := runner.Run(context.Background(), monitor.NewCreditMonitor(store))

	require.True(t, summary.Success)
	// subject + each of the 3 admins
	assert.Equal(t, 4, summary.NotificationsCreated)

	all, err := store.ListNotifications(context.Background(), model.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for _, n := range all {
		assert.Equal(t, monitor.TypeCreditExceeded, n.Type)
	}
}

func TestCreditMonitor_IdempotentWithinMonth(t *testing.T) {
	store := newTestStore(t)
	seedCreditScenario(t, store, 1000, 950, "admin-1")

	runner := newTestRunner(store)
	credit := monitor.NewCreditMonitor(store)

	first := runner.Run(context.Background(), credit)
	require.True(t, first.Success)
	assert.Equal(t, 2, first.NotificationsCreated)

	// Re-running inside the same calendar month must create nothing new.
	second := runner.Run(context.Background(), credit)
	require.True(t, second.Success)
	assert.Equal(t, 0, second.NotificationsCreated)
	assert.Equal(t, 0, second.NotificationsFailed)

	all, err := store.ListNotifications(context.Background(), model.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreditMonitor_NoThresholdReached(t *testing.T) {
	store := newTestStore(t)
	seedCreditScenario(t, store, 1000, 500, "admin-1")

	runner := newTestRunner(store)
	summary := runner.Run(context.Background(), monitor.NewCreditMonitor(store))

	require.True(t, summary.Success)
	assert.Equal(t, 1, summary.SubjectsChecked)
	assert.Equal(t, 0, summary.NotificationsCreated)
}

func TestCreditMonitor_SubjectAlsoAdminNotDoubleNotified(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	userID := seedCreditScenario(t, store, 1000, 900)
	require.NoError(t, store.SetUserRole(ctx, userID, "admin"))

	runner := newTestRunner(store)
	summary := runner.Run(ctx, monitor.NewCreditMonitor(store))

	require.True(t, summary.Success)
	assert.Equal(t, 1, summary.NotificationsCreated)

	own, err := store.ListNotifications(ctx, model.NotificationFilter{UserID: userID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Contains(t, own[0].Message, "Você utilizou")
}

func TestCreditMonitor_OnlyApprovedAndCompletedCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	profile := &model.Profile{FullName: "José Lima", CreditLimit: 100}
	require.NoError(t, store.UpsertProfile(ctx, profile))
	require.NoError(t, store.SetUserRole(ctx, "admin-1", "admin"))

	now := time.Now().UTC()
	for _, r := range []model.BenefitRequest{
		{UserID: profile.ID, ApprovedValue: 50, Status: model.StatusApproved, CreatedAt: now},
		{UserID: profile.ID, ApprovedValue: 40, Status: model.StatusCompleted, CreatedAt: now},
		{UserID: profile.ID, ApprovedValue: 500, Status: model.StatusPending, CreatedAt: now},
		{UserID: profile.ID, ApprovedValue: 500, Status: model.StatusRejected, CreatedAt: now},
	} {
		require.NoError(t, store.InsertBenefitRequest(ctx, &r))
	}

	credit := monitor.NewCreditMonitor(store)
	subjects, err := credit.LoadSubjects(ctx, now)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.InDelta(t, 90.0, subjects[0].Metric.Percent, 0.001)
	assert.InDelta(t, 90.0, subjects[0].Metric.Used, 0.001)
}

func TestCreditMonitor_RequestsOutsideMonthExcluded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	profile := &model.Profile{FullName: "Ana Costa", CreditLimit: 100}
	require.NoError(t, store.UpsertProfile(ctx, profile))

	now := time.Now().UTC()
	monthStart, _ := model.MonthBounds(now)
	require.NoError(t, store.InsertBenefitRequest(ctx, &model.BenefitRequest{
		UserID: profile.ID, ApprovedValue: 95, Status: model.StatusApproved, CreatedAt: monthStart.Add(-time.Hour),
	}))

	subjects, err := monitor.NewCreditMonitor(store).LoadSubjects(ctx, now)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.InDelta(t, 0.0, subjects[0].Metric.Percent, 0.001)
}

func TestCreditMonitor_ZeroLimitExcluded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProfile(ctx, &model.Profile{FullName: "Sem Limite", CreditLimit: 0}))

	subjects, err := monitor.NewCreditMonitor(store).LoadSubjects(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, subjects)
}
