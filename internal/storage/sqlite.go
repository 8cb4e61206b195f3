// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/semdex/semdex/internal/models"
)

// SQLiteStorage implements Storage using SQLite. Embeddings are stored as
// little-endian float32 BLOBs alongside the file metadata, one row per file.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		extension TEXT,
		mime_type TEXT,
		size_bytes INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		preview TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_name ON files(name);
	CREATE INDEX IF NOT EXISTS idx_files_extension ON files(extension);
	`
	_, err := db.Exec(schema)
	return err
}

// Create inserts a record. The UNIQUE constraint on path is the arbiter when
// concurrent workers race on the same file; the loser gets ErrDuplicatePath.
func (s *SQLiteStorage) Create(ctx context.Context, rec *models.FileRecord) error {
	rec.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, path, name, extension, mime_type, size_bytes, embedding, preview, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Path, rec.Name, nullable(rec.Extension), nullable(rec.MimeType),
		rec.SizeBytes, encodeEmbedding(rec.Embedding), rec.Preview, rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, rec.Path)
	}
	return err
}

// Replace removes any record for rec.Path and inserts rec in one transaction.
func (s *SQLiteStorage) Replace(ctx context.Context, rec *models.FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, rec.Path); err != nil {
		return err
	}

	rec.CreatedAt = time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO files (id, path, name, extension, mime_type, size_bytes, embedding, preview, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Path, rec.Name, nullable(rec.Extension), nullable(rec.MimeType),
		rec.SizeBytes, encodeEmbedding(rec.Embedding), rec.Preview, rec.CreatedAt,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the record for path.
func (s *SQLiteStorage) Get(ctx context.Context, path string) (*models.FileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, path, name, extension, mime_type, size_bytes, embedding, preview, created_at
		 FROM files WHERE path = ?`, path)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// All returns every stored record with its embedding. Search scans the full
// corpus on each query, so this is the hot read path.
func (s *SQLiteStorage) All(ctx context.Context) ([]*models.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, name, extension, mime_type, size_bytes, embedding, preview, created_at
		 FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes the record for path.
func (s *SQLiteStorage) Delete(ctx context.Context, path string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return nil
}

// Count returns the total number of indexed files.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&count)
	return count, err
}

// Reset removes all records.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.FileRecord, error) {
	var rec models.FileRecord
	var extension, mimeType sql.NullString
	var blob []byte

	err := row.Scan(&rec.ID, &rec.Path, &rec.Name, &extension, &mimeType,
		&rec.SizeBytes, &blob, &rec.Preview, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.Extension = extension.String
	rec.MimeType = mimeType.String
	rec.Embedding, err = decodeEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.Path, err)
	}
	return &rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// encodeEmbedding packs a vector as little-endian float32 bytes.
func encodeEmbedding(embedding []float32) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding unpacks the BLOB written by encodeEmbedding.
func decodeEmbedding(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	embedding := make([]float32, len(buf)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return embedding, nil
}
