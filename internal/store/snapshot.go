package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/schoolbot/internal/catalog"
)

var _ catalog.Persister = (*Store)(nil)

// Load reads the stored snapshot. Returns catalog.ErrNoSnapshot when Save
// has never been called.
func (s *Store) Load(ctx context.Context) (catalog.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("load: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := revision(ctx, tx); err != nil {
		return catalog.Snapshot{}, err
	}

	snap := catalog.Snapshot{
		Subjects: []catalog.Subject{},
		Schedule: make(map[catalog.Day][]string),
	}

	if err := scanRows(ctx, tx, `
		SELECT key, name, homework FROM subjects ORDER BY ord ASC
	`, func(rows *sql.Rows) error {
		var subj catalog.Subject
		if err := rows.Scan(&subj.Key, &subj.Name, &subj.Homework); err != nil {
			return err
		}
		snap.Subjects = append(snap.Subjects, subj)
		return nil
	}); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("load subjects: %w", err)
	}

	if err := scanRows(ctx, tx, `SELECT day FROM days`, func(rows *sql.Rows) error {
		var day string
		if err := rows.Scan(&day); err != nil {
			return err
		}
		snap.Schedule[catalog.Day(day)] = []string{}
		return nil
	}); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("load days: %w", err)
	}

	if err := scanRows(ctx, tx, `
		SELECT day, subject_key FROM lessons ORDER BY day ASC, position ASC
	`, func(rows *sql.Rows) error {
		var day, key string
		if err := rows.Scan(&day, &key); err != nil {
			return err
		}
		d := catalog.Day(day)
		snap.Schedule[d] = append(snap.Schedule[d], key)
		return nil
	}); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("load lessons: %w", err)
	}

	return snap, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *Store) Save(ctx context.Context, snap catalog.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: begin: %w", err)
	}
	defer tx.Rollback()

	// lessons first: they reference both days and subjects
	for _, stmt := range []string{
		"DELETE FROM lessons",
		"DELETE FROM days",
		"DELETE FROM subjects",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("save: %s: %w", stmt, err)
		}
	}

	for i, subj := range snap.Subjects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO subjects (key, name, homework, ord) VALUES (?, ?, ?, ?)
		`, subj.Key, subj.Name, subj.Homework, i); err != nil {
			return fmt.Errorf("save subject %q: %w", subj.Key, err)
		}
	}

	for _, day := range snap.Days() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO days (day) VALUES (?)`, string(day)); err != nil {
			return fmt.Errorf("save day %q: %w", day, err)
		}
		for pos, key := range snap.Schedule[day] {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO lessons (day, position, subject_key) VALUES (?, ?, ?)
			`, string(day), pos, key); err != nil {
				return fmt.Errorf("save lesson %s[%d]: %w", day, pos, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, revision, saved_at) VALUES (1, 1, ?)
		ON CONFLICT(id) DO UPDATE SET revision = revision + 1, saved_at = excluded.saved_at
	`, s.now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	return nil
}

// Revision returns how many times a snapshot has been saved, or
// catalog.ErrNoSnapshot.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	return revision(ctx, s.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func revision(ctx context.Context, q queryer) (int64, error) {
	var rev int64
	err := q.QueryRowContext(ctx, `SELECT revision FROM snapshot_meta WHERE id = 1`).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, catalog.ErrNoSnapshot
	}
	if err != nil {
		return 0, fmt.Errorf("read snapshot meta: %w", err)
	}
	return rev, nil
}

func scanRows(ctx context.Context, q queryer, query string, scan func(*sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
