package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"permit-history/internal/domain/permits"
	"permit-history/internal/ports/snapshots"
)

func TestSnapshotRepo_AppendAssignsIDAndOrdersOldestFirst(t *testing.T) {
	repo := NewSnapshotRepo()
	ctx := context.Background()

	t2 := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	t1 := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	a, err := repo.Append(ctx, permits.RawSnapshot{CapturedAt: t2, Header: []string{"Solicitud"}})
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := repo.Append(ctx, permits.RawSnapshot{CapturedAt: t1, Header: []string{"Solicitud"}}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	all, err := repo.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(all) != 2 || !all[0].CapturedAt.Equal(t1) || !all[1].CapturedAt.Equal(t2) {
		t.Fatalf("expected oldest-first order, got %#v", all)
	}
}

func TestSnapshotRepo_RejectsMissingHeader(t *testing.T) {
	repo := NewSnapshotRepo()
	_, err := repo.Append(context.Background(), permits.RawSnapshot{})
	if !errors.Is(err, snapshots.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestSnapshotRepo_DefaultsCapturedAt(t *testing.T) {
	repo := NewSnapshotRepo().(*snapshotRepo)
	now := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	got, err := repo.Append(context.Background(), permits.RawSnapshot{Header: []string{"Solicitud"}})
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if !got.CapturedAt.Equal(now) {
		t.Fatalf("expected CapturedAt=now, got %v", got.CapturedAt)
	}
}
