package permits

import "time"

// Skipped describe un snapshot descartado al normalizar.
type Skipped struct {
	SnapshotID string
	CapturedAt time.Time
	Err        error
}

// History es el resultado completo del pipeline sobre todo el histórico de snapshots.
// Es un valor: se reconstruye entero en cada recarga.
type History struct {
	Sequence   Sequence
	Changes    []DayChangeSet
	Lifecycles []LifecycleRecord
	Skipped    []Skipped
	RawCount   int
}

// BuildHistory normaliza, canoniza, diferencia y construye ciclos de vida.
// Un snapshot inválido se aparta en Skipped y no bloquea al resto.
func BuildHistory(raws []RawSnapshot, n *Normalizer) History {
	if n == nil {
		n = NewNormalizer()
	}

	h := History{RawCount: len(raws), Skipped: []Skipped{}}
	normalized := make([]NormalizedSnapshot, 0, len(raws))
	for _, raw := range raws {
		snap, err := n.Normalize(raw)
		if err != nil {
			h.Skipped = append(h.Skipped, Skipped{SnapshotID: raw.ID, CapturedAt: raw.CapturedAt, Err: err})
			continue
		}
		normalized = append(normalized, snap)
	}

	h.Sequence = Canonicalize(normalized)
	h.Changes = Diff(h.Sequence)
	h.Lifecycles = BuildLifecycles(h.Sequence)
	return h
}
