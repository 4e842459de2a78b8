package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	full_name    TEXT NOT NULL,
	credit_limit DOUBLE PRECISION NOT NULL DEFAULT 0.0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id TEXT NOT NULL,
	role    TEXT NOT NULL,
	PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS benefit_requests (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	approved_value DOUBLE PRECISION NOT NULL DEFAULT 0.0,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_requests_user ON benefit_requests(user_id);
CREATE INDEX IF NOT EXISTS idx_requests_created ON benefit_requests(created_at);

CREATE TABLE IF NOT EXISTS collaborator_documents (
	id              TEXT PRIMARY KEY,
	profile_id      TEXT NOT NULL,
	document_name   TEXT NOT NULL,
	document_type   TEXT NOT NULL DEFAULT 'outro',
	expiration_date DATE
);

CREATE INDEX IF NOT EXISTS idx_documents_expiration ON collaborator_documents(expiration_date);

CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	title         TEXT NOT NULL,
	message       TEXT NOT NULL,
	type          TEXT NOT NULL,
	entity_type   TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	period_bucket TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_notifications_dedup
	ON notifications(user_id, type, entity_id, period_bucket);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);
`

// Postgres implements the Store interface on a PostgreSQL pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to PostgreSQL and ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) ProfilesWithCreditLimit(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name, credit_limit FROM profiles WHERE credit_limit > 0 ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.CreditLimit); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Postgres) ApprovedUsageBetween(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, COALESCE(SUM(approved_value), 0)
		 FROM benefit_requests
		 WHERE status = ANY($1) AND created_at >= $2 AND created_at < $3
		 GROUP BY user_id`,
		[]string{model.StatusApproved, model.StatusCompleted}, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]float64)
	for rows.Next() {
		var userID string
		var total float64
		if err := rows.Scan(&userID, &total); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		usage[userID] = total
	}
	return usage, rows.Err()
}

func (s *Postgres) DocumentsExpiringBetween(ctx context.Context, from, to time.Time) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, profile_id, document_name, document_type, expiration_date
		 FROM collaborator_documents
		 WHERE expiration_date IS NOT NULL AND expiration_date >= $1 AND expiration_date <= $2
		 ORDER BY expiration_date`,
		model.DateOf(from), model.DateOf(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.ProfileID, &d.Name, &d.Type, &d.ExpirationDate); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Postgres) AdminUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM user_roles WHERE role = 'admin' ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query admin roles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan role row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Postgres) ProfileNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query profile names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan name row: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (s *Postgres) CountNotificationsSince(ctx context.Context, typeTag, entityID string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE type = $1 AND entity_id = $2 AND created_at >= $3`,
		typeTag, entityID, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

func (s *Postgres) InsertNotification(ctx context.Context, n *model.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, user_id, title, message, type, entity_type, entity_id, period_bucket, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, type, entity_id, period_bucket) DO NOTHING`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.EntityType, n.EntityID, n.PeriodBucket, n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, error) {
	query := `SELECT id, user_id, title, message, type, entity_type, entity_id, period_bucket, created_at FROM notifications WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since.UTC())
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type,
			&n.EntityType, &n.EntityID, &n.PeriodBucket, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Postgres) UpsertProfile(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, full_name, credit_limit)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET
		   full_name = EXCLUDED.full_name,
		   credit_limit = EXCLUDED.credit_limit,
		   updated_at = NOW()`,
		p.ID, p.FullName, p.CreditLimit,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *Postgres) SetUserRole(ctx context.Context, userID, role string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, role)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

func (s *Postgres) InsertBenefitRequest(ctx context.Context, r *model.BenefitRequest) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO benefit_requests (id, user_id, approved_value, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.UserID, r.ApprovedValue, r.Status, r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert benefit request: %w", err)
	}
	return nil
}

func (s *Postgres) InsertDocument(ctx context.Context, d *model.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	var expiration any
	if !d.ExpirationDate.IsZero() {
		expiration = model.DateOf(d.ExpirationDate)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO collaborator_documents (id, profile_id, document_name, document_type, expiration_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.ProfileID, d.Name, d.Type, expiration,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
