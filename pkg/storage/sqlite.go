package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLite implements the Store interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows the dashboard to read while a monitor run inserts
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) ProfilesWithCreditLimit(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
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

func (s *SQLite) ApprovedUsageBetween(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, COALESCE(SUM(approved_value), 0)
		 FROM benefit_requests
		 WHERE status IN (?, ?) AND created_at >= ? AND created_at < ?
		 GROUP BY user_id`,
		model.StatusApproved, model.StatusCompleted, from.UTC(), to.UTC(),
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

func (s *SQLite) DocumentsExpiringBetween(ctx context.Context, from, to time.Time) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, document_name, document_type, expiration_date
		 FROM collaborator_documents
		 WHERE expiration_date IS NOT NULL AND expiration_date >= ? AND expiration_date <= ?
		 ORDER BY expiration_date`,
		from.UTC().Format(dateLayout), to.UTC().Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		var expiration string
		if err := rows.Scan(&d.ID, &d.ProfileID, &d.Name, &d.Type, &expiration); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		d.ExpirationDate, err = time.ParseInLocation(dateLayout, expiration, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse expiration date %q: %w", expiration, err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLite) AdminUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
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

func (s *SQLite) ProfileNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name FROM profiles WHERE id IN (`+placeholders+`)`, args...)
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

func (s *SQLite) CountNotificationsSince(ctx context.Context, typeTag, entityID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE type = ? AND entity_id = ? AND created_at >= ?`,
		typeTag, entityID, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

func (s *SQLite) InsertNotification(ctx context.Context, n *model.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	// ON CONFLICT DO NOTHING on the dedup index: an overlapping run that
	// already inserted this alert makes this insert a no-op, not an error.
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, message, type, entity_type, entity_id, period_bucket, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, type, entity_id, period_bucket) DO NOTHING`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.EntityType, n.EntityID, n.PeriodBucket, n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *SQLite) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, error) {
	query := `SELECT id, user_id, title, message, type, entity_type, entity_id, period_bucket, created_at FROM notifications`
	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, filter.Type)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *SQLite) UpsertProfile(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, credit_limit)
		 VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   full_name = excluded.full_name,
		   credit_limit = excluded.credit_limit,
		   updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.FullName, p.CreditLimit,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *SQLite) SetUserRole(ctx context.Context, userID, role string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`, userID, role)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

func (s *SQLite) InsertBenefitRequest(ctx context.Context, r *model.BenefitRequest) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO benefit_requests (id, user_id, approved_value, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.ApprovedValue, r.Status, r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert benefit request: %w", err)
	}
	return nil
}

func (s *SQLite) InsertDocument(ctx context.Context, d *model.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	var expiration any
	if !d.ExpirationDate.IsZero() {
		expiration = d.ExpirationDate.UTC().Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collaborator_documents (id, profile_id, document_name, document_type, expiration_date)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.ProfileID, d.Name, d.Type, expiration,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
