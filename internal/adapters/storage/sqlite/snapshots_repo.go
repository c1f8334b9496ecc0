package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"permit-history/internal/domain/permits"
	"permit-history/internal/ports/snapshots"
)

var schemaStatements = []string{
	`PRAGMA journal_mode = WAL;`,
	`CREATE TABLE IF NOT EXISTS permit_snapshots (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		captured_at INTEGER NOT NULL,
		data        BLOB NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS permit_snapshots_captured_at_idx ON permit_snapshots (captured_at, seq);`,
}

// Store guarda snapshots en un fichero SQLite local (captured_at en nanosegundos unix).
// seq es el orden de inserción y desempata snapshots con el mismo captured_at.
type Store struct {
	db       *sql.DB
	pageSize int
	now      func() time.Time
}

// Open abre (o crea) la base en path y aplica el esquema.
func Open(ctx context.Context, path string, pageSize int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", abs))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// un solo escritor
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}

	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Store{db: db, pageSize: pageSize, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Append(ctx context.Context, snap permits.RawSnapshot) (permits.RawSnapshot, error) {
	if len(snap.Header) == 0 {
		return permits.RawSnapshot{}, snapshots.ErrInvalidPayload
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = s.now().UTC()
	}

	data, err := snapshots.EncodeRows(snap.Header, snap.Rows)
	if err != nil {
		return permits.RawSnapshot{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO permit_snapshots (id, captured_at, data) VALUES (?, ?, ?)`,
		snap.ID, snap.CapturedAt.UnixNano(), data,
	); err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

func (s *Store) FetchAll(ctx context.Context) ([]permits.RawSnapshot, error) {
	out := []permits.RawSnapshot{}
	for offset := 0; ; offset += s.pageSize {
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, captured_at, data FROM permit_snapshots ORDER BY captured_at ASC, seq ASC LIMIT ? OFFSET ?`,
			s.pageSize, offset,
		)
		if err != nil {
			return nil, fmt.Errorf("query snapshots (offset %d): %w", offset, err)
		}

		n := 0
		for rows.Next() {
			var (
				id   string
				nano int64
				data []byte
			)
			if err := rows.Scan(&id, &nano, &data); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan snapshot: %w", err)
			}
			out = append(out, snapshots.FromPayload(id, time.Unix(0, nano), data))
			n++
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate snapshots: %w", err)
		}
		if n < s.pageSize {
			return out, nil
		}
	}
}
