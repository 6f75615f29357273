package storage

import (
	"context"
	"time"
)

// ViolationEntry is one handled automod incident.
type ViolationEntry struct {
	ID          int64
	CaseID      string
	GuildID     string
	UserID      string
	Type        string
	Description string
	Action      string
	Count       int
	CreatedAt   time.Time
}

func (s *Store) AddViolation(ctx context.Context, entry ViolationEntry) error {
	_, err := s.exec(ctx, `
		INSERT INTO violation_history (case_id, guild_id, user_id, violation_type, description, action, count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.CaseID, entry.GuildID, entry.UserID, entry.Type, entry.Description, entry.Action, entry.Count, entry.CreatedAt.Unix())
	return err
}

// ListUserViolations returns the newest entries for a user first.
func (s *Store) ListUserViolations(ctx context.Context, guildID, userID string, limit int) ([]ViolationEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.query(ctx, `
		SELECT id, case_id, guild_id, user_id, violation_type, description, action, count, created_at
		FROM violation_history
		WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, guildID, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanViolations(rows)
}

func (s *Store) ListViolationsSince(ctx context.Context, guildID string, since time.Time) ([]ViolationEntry, error) {
	rows, err := s.query(ctx, `
		SELECT id, case_id, guild_id, user_id, violation_type, description, action, count, created_at
		FROM violation_history
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	return scanViolations(rows)
}

func (s *Store) CleanupViolations(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	_, err := s.exec(ctx, `DELETE FROM violation_history WHERE created_at < ?`, cutoff.Unix())
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

func scanViolations(rows rowScanner) ([]ViolationEntry, error) {
	defer rows.Close()

	var entries []ViolationEntry
	for rows.Next() {
		var entry ViolationEntry
		var created int64
		if err := rows.Scan(&entry.ID, &entry.CaseID, &entry.GuildID, &entry.UserID, &entry.Type, &entry.Description, &entry.Action, &entry.Count, &created); err != nil {
			return nil, err
		}
		entry.CreatedAt = time.Unix(created, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
