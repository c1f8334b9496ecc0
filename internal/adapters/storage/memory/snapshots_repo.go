package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"permit-history/internal/domain/permits"
	"permit-history/internal/ports/snapshots"
)

// snapshotRepo guarda snapshots en memoria. Sirve para dev y como doble en tests.
type snapshotRepo struct {
	mu    sync.RWMutex
	items []permits.RawSnapshot
	now   func() time.Time
}

func NewSnapshotRepo(seed ...permits.RawSnapshot) snapshots.Store {
	r := &snapshotRepo{now: time.Now}
	r.items = append(r.items, seed...)
	return r
}

func (r *snapshotRepo) Append(ctx context.Context, snap permits.RawSnapshot) (permits.RawSnapshot, error) {
	if len(snap.Header) == 0 {
		return permits.RawSnapshot{}, snapshots.ErrInvalidPayload
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = r.now().UTC()
	}
	r.items = append(r.items, snap)
	return snap, nil
}

// FetchAll devuelve una copia ordenada por CapturedAt (estable: a igual hora, orden de inserción).
func (r *snapshotRepo) FetchAll(ctx context.Context) ([]permits.RawSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]permits.RawSnapshot, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapturedAt.Before(out[j].CapturedAt)
	})
	return out, nil
}
