/*
   YTCS - YouTube Comment Sentiment
   Copyright (C) 2025  Unbewohnte (Kasyanov Nikolay Alexeevich)

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package db

import (
	"Unbewohnte/YTCS/internal/comment"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	path string
}

func NewDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS comments (
			source_id TEXT NOT NULL,
			author TEXT,
			text TEXT,
			like_count INTEGER DEFAULT 0,
			polarity REAL,
			published_at TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_comments_source ON comments(source_id);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, path: path}, nil
}

// Name returns the database file path
func (db *DB) Name() string {
	return db.path
}

// Write appends records inside a single transaction. Existing rows are never
// touched, so repeated runs accumulate.
func (db *DB) Write(ctx context.Context, records []comment.Record) error {
	return db.SaveComments(ctx, records)
}

func (db *DB) SaveComments(ctx context.Context, records []comment.Record) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO comments(
		source_id, author, text, like_count, polarity, published_at
	) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.VideoID,
			record.Author,
			record.Text,
			record.LikeCount,
			record.Polarity,
			record.PublishedAt,
		)
		if err != nil {
			return fmt.Errorf("insert comment of %s: %w", record.VideoID, err)
		}
	}

	return tx.Commit()
}

func (db *DB) AllComments(ctx context.Context) ([]comment.Record, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source_id, author, text, like_count, polarity, published_at
		FROM comments
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []comment.Record
	for rows.Next() {
		var record comment.Record
		var author, text, publishedAt sql.NullString
		var likes sql.NullInt64
		var polarity sql.NullFloat64

		if err := rows.Scan(
			&record.VideoID,
			&author,
			&text,
			&likes,
			&polarity,
			&publishedAt,
		); err != nil {
			return nil, err
		}

		record.Author = author.String
		record.Text = text.String
		record.LikeCount = likes.Int64
		record.Polarity = polarity.Float64
		record.PublishedAt = publishedAt.String
		records = append(records, record)
	}

	return records, rows.Err()
}

// Polarities returns stored polarities of one video, or of every video when
// videoID is empty
func (db *DB) Polarities(ctx context.Context, videoID string) ([]float64, error) {
	var rows *sql.Rows
	var err error
	if videoID == "" {
		rows, err = db.QueryContext(ctx, "SELECT polarity FROM comments WHERE polarity IS NOT NULL ORDER BY rowid")
	} else {
		rows, err = db.QueryContext(ctx,
			"SELECT polarity FROM comments WHERE polarity IS NOT NULL AND source_id = ? ORDER BY rowid",
			videoID,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polarities := []float64{}
	for rows.Next() {
		var polarity float64
		if err := rows.Scan(&polarity); err != nil {
			return nil, err
		}
		polarities = append(polarities, polarity)
	}

	return polarities, rows.Err()
}

func (db *DB) CountComments(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// VideoIDs lists distinct stored videos in first-seen order
func (db *DB) VideoIDs(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source_id FROM comments
		GROUP BY source_id
		ORDER BY MIN(rowid)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (db *DB) DeleteAllComments(ctx context.Context) error {
	_, err := db.ExecContext(ctx, "DELETE FROM comments")
	return err
}
