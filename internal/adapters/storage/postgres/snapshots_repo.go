package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"permit-history/internal/domain/permits"
	"permit-history/internal/ports/snapshots"
)

const schema = `
CREATE TABLE IF NOT EXISTS permit_snapshots (
	id          TEXT PRIMARY KEY,
	seq         BIGSERIAL NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL,
	data        JSONB NOT NULL
);
ALTER TABLE permit_snapshots ADD COLUMN IF NOT EXISTS seq BIGSERIAL NOT NULL;
CREATE INDEX IF NOT EXISTS permit_snapshots_captured_at_seq_idx ON permit_snapshots (captured_at, seq);
`

const fetchPageQuery = `
	SELECT id, captured_at, data
	FROM permit_snapshots
	ORDER BY captured_at ASC, seq ASC
	LIMIT $1 OFFSET $2
`

type snapshotRepo struct {
	db       *sql.DB
	pageSize int
	now      func() time.Time
}

func NewSnapshotRepo(db *sql.DB, pageSize int) snapshots.Store {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &snapshotRepo{db: db, pageSize: pageSize, now: time.Now}
}

// EnsureSchema crea la tabla si no existe. seq (orden de inserción) desempata
// snapshots con el mismo captured_at.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure permit_snapshots schema: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Append(ctx context.Context, snap permits.RawSnapshot) (permits.RawSnapshot, error) {
	if len(snap.Header) == 0 {
		return permits.RawSnapshot{}, snapshots.ErrInvalidPayload
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = r.now().UTC()
	}

	data, err := snapshots.EncodeRows(snap.Header, snap.Rows)
	if err != nil {
		return permits.RawSnapshot{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO permit_snapshots (id, captured_at, data)
		VALUES ($1, $2, $3)
	`, snap.ID, snap.CapturedAt, data)
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

// FetchAll pagina con LIMIT/OFFSET por (captured_at, seq) hasta recibir una página corta.
func (r *snapshotRepo) FetchAll(ctx context.Context) ([]permits.RawSnapshot, error) {
	out := []permits.RawSnapshot{}
	for offset := 0; ; offset += r.pageSize {
		page, err := r.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < r.pageSize {
			return out, nil
		}
	}
}

func (r *snapshotRepo) fetchPage(ctx context.Context, offset int) ([]permits.RawSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, fetchPageQuery, r.pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query snapshots (offset %d): %w", offset, err)
	}
	defer rows.Close()

	var page []permits.RawSnapshot
	for rows.Next() {
		var (
			id         string
			capturedAt time.Time
			data       []byte
		)
		if err := rows.Scan(&id, &capturedAt, &data); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		page = append(page, snapshots.FromPayload(id, capturedAt, data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return page, nil
}
