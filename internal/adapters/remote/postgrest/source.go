package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"permit-history/internal/domain/permits"
	"permit-history/internal/platform/httpclient"
	"permit-history/internal/ports/snapshots"
)

type Config struct {
	URL      string // p.ej. https://xyz.supabase.co/rest/v1
	APIKey   string
	Table    string
	PageSize int
}

// Store lee/escribe la tabla de backups (data jsonb + created_at) vía PostgREST.
type Store struct {
	client   *httpclient.Client
	table    string
	pageSize int
}

// record es una fila de la tabla. created_at se lee como texto y se interpreta por fila:
// una columna timestamp sin zona no debe tumbar la página entera.
type record struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
}

// Formatos aceptados para created_at; sin zona se interpreta como UTC.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

func parseCreatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func New(cfg Config, transport http.RoundTripper) (*Store, error) {
	client, err := httpclient.New(cfg.URL, 0, transport)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey != "" {
		client.Headers["apikey"] = cfg.APIKey
		client.Headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	if cfg.Table == "" {
		cfg.Table = "backup_excel"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	return &Store{client: client, table: cfg.Table, pageSize: cfg.PageSize}, nil
}

// FetchAll recorre la tabla por created_at ascendente con limit/offset hasta una página corta.
func (s *Store) FetchAll(ctx context.Context) ([]permits.RawSnapshot, error) {
	out := []permits.RawSnapshot{}
	for offset := 0; ; offset += s.pageSize {
		q := url.Values{}
		q.Set("select", "data,created_at")
		q.Set("order", "created_at.asc")
		q.Set("limit", strconv.Itoa(s.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page []record
		if err := s.client.GetJSON(ctx, s.table, q, nil, &page); err != nil {
			return nil, fmt.Errorf("fetch %s (offset %d): %w", s.table, offset, err)
		}
		for i, rec := range page {
			// sin id en el select: la posición en el orden global identifica el backup
			id := s.table + "#" + strconv.Itoa(offset+i)
			createdAt, ok := parseCreatedAt(rec.CreatedAt)
			if !ok {
				// fila sin fecha legible: sin cabecera, el pipeline la aparta
				out = append(out, permits.RawSnapshot{ID: id})
				continue
			}
			out = append(out, snapshots.FromPayload(id, createdAt, rec.Data))
		}
		if len(page) < s.pageSize {
			return out, nil
		}
	}
}

// Append inserta {"data": matriz}. Con CapturedAt se envía también created_at;
// sin él lo asigna la base. El snapshot devuelto lleva el id y created_at de la representación.
func (s *Store) Append(ctx context.Context, snap permits.RawSnapshot) (permits.RawSnapshot, error) {
	if len(snap.Header) == 0 {
		return permits.RawSnapshot{}, snapshots.ErrInvalidPayload
	}
	data, err := snapshots.EncodeRows(snap.Header, snap.Rows)
	if err != nil {
		return permits.RawSnapshot{}, err
	}

	row := map[string]any{"data": json.RawMessage(data)}
	if !snap.CapturedAt.IsZero() {
		row["created_at"] = snap.CapturedAt.UTC().Format(time.RFC3339Nano)
	}

	var created []record
	err = s.client.PostJSON(ctx, s.table,
		map[string]string{"Prefer": "return=representation"},
		[]map[string]any{row},
		&created,
	)
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("insert into %s: %w", s.table, err)
	}
	if len(created) == 0 {
		return permits.RawSnapshot{}, fmt.Errorf("insert into %s: empty representation", s.table)
	}

	if createdAt, ok := parseCreatedAt(created[0].CreatedAt); ok {
		snap.CapturedAt = createdAt.UTC()
	} else if snap.CapturedAt.IsZero() {
		return permits.RawSnapshot{}, fmt.Errorf("insert into %s: unreadable created_at %q", s.table, created[0].CreatedAt)
	}
	snap.ID = string(created[0].ID)
	if id, err := strconv.Unquote(snap.ID); err == nil {
		snap.ID = id
	}
	return snap, nil
}
