package history

import (
	"time"

	"permit-history/internal/domain/permits"
)

// State es la caché que posee el servicio: el último History construido y cuándo.
// Se reemplaza entera en cada recarga exitosa.
type State struct {
	History  permits.History
	LoadedAt time.Time
}

// Status describe la caché para /history/status.
type Status struct {
	Loaded        bool
	LoadedAt      time.Time
	RawSnapshots  int
	CanonicalDays int
	FirstDay      string
	LastDay       string
	Skipped       []permits.Skipped

	LastAttemptAt time.Time
	LastError     string
}

func statusOf(st *State, lastAttempt time.Time, lastErr error) Status {
	out := Status{LastAttemptAt: lastAttempt, Skipped: []permits.Skipped{}}
	if lastErr != nil {
		out.LastError = lastErr.Error()
	}
	if st == nil {
		return out
	}

	h := st.History
	out.Loaded = true
	out.LoadedAt = st.LoadedAt
	out.RawSnapshots = h.RawCount
	out.CanonicalDays = len(h.Sequence)
	out.Skipped = h.Skipped
	if len(h.Sequence) > 0 {
		out.FirstDay = h.Sequence[0].Day
		out.LastDay = h.Sequence[len(h.Sequence)-1].Day
	}
	return out
}
