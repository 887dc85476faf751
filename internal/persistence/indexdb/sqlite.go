// Package indexdb keeps a small SQLite index of world snapshots: where
// each save landed, when, and what it contained. The simulation never
// reads it; the driver uses it to resume from the latest save and
// tooling uses it to browse save history.
package indexdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db *sql.DB
}

type SaveRow struct {
	ID          int64
	Path        string
	SavedUnix   int64
	Chunks      int
	Edits       uint64
	WorldDigest string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS saves (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			path         TEXT NOT NULL,
			saved_unix   INTEGER NOT NULL,
			chunks       INTEGER NOT NULL,
			edits        INTEGER NOT NULL,
			world_digest TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS saves_by_time ON saves(saved_unix);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init saves table: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

func (i *SQLiteIndex) Close() error { return i.db.Close() }

func (i *SQLiteIndex) RecordSave(row SaveRow) error {
	_, err := i.db.Exec(
		`INSERT INTO saves (path, saved_unix, chunks, edits, world_digest) VALUES (?, ?, ?, ?, ?)`,
		row.Path, row.SavedUnix, row.Chunks, row.Edits, row.WorldDigest,
	)
	if err != nil {
		return fmt.Errorf("record save: %w", err)
	}
	return nil
}

// LatestSave returns the most recent save row, with ok=false when the
// index is empty.
func (i *SQLiteIndex) LatestSave() (SaveRow, bool, error) {
	var row SaveRow
	err := i.db.QueryRow(
		`SELECT id, path, saved_unix, chunks, edits, world_digest
		 FROM saves ORDER BY saved_unix DESC, id DESC LIMIT 1`,
	).Scan(&row.ID, &row.Path, &row.SavedUnix, &row.Chunks, &row.Edits, &row.WorldDigest)
	if errors.Is(err, sql.ErrNoRows) {
		return SaveRow{}, false, nil
	}
	if err != nil {
		return SaveRow{}, false, err
	}
	return row, true, nil
}

// Saves lists save rows, newest first.
func (i *SQLiteIndex) Saves(limit int) ([]SaveRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := i.db.Query(
		`SELECT id, path, saved_unix, chunks, edits, world_digest
		 FROM saves ORDER BY saved_unix DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaveRow
	for rows.Next() {
		var r SaveRow
		if err := rows.Scan(&r.ID, &r.Path, &r.SavedUnix, &r.Chunks, &r.Edits, &r.WorldDigest); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
