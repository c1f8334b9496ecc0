package permits

// StatusCounts cuenta entidades por estado.
type StatusCounts struct {
	Total      int
	Authorized int
	Approved   int
	Finalized  int
	Pending    int
}

// CountStatuses cuenta el mapa de estados que pasa el filtro.
func CountStatuses(entities map[string]EntityState, f Filter) StatusCounts {
	var c StatusCounts
	for _, st := range entities {
		if !f.Matches(st) {
			continue
		}
		c.Total++
		switch st.Status {
		case StatusAuthorized:
			c.Authorized++
		case StatusApproved:
			c.Approved++
		case StatusFinalized:
			c.Finalized++
		default:
			c.Pending++
		}
	}
	return c
}

// Summary: conteos del último día canónico + totales del periodo (serie de cambios filtrada).
type Summary struct {
	Day string
	StatusCounts

	PeriodNew            int
	PeriodAuthorizations int
	PeriodClosures       int
}

// TrendPoint es un punto de la serie de evolución de estados.
type TrendPoint struct {
	Day string
	StatusCounts
}

// ChangePoint es un punto de la serie de cambios por día.
type ChangePoint struct {
	Day string
	ChangeCounts
}

// Trend devuelve una tupla de conteos por día canónico.
func Trend(seq Sequence, f Filter) []TrendPoint {
	out := make([]TrendPoint, 0, len(seq))
	for _, snap := range seq {
		out = append(out, TrendPoint{Day: snap.Day, StatusCounts: CountStatuses(snap.Entities, f)})
	}
	return out
}

// ChangeSeries recalcula los cambios día a día aplicando el filtro a los DOS snapshots del par,
// de modo que los conteos cuadran con la serie de tendencia filtrada. El primer día se omite.
func ChangeSeries(seq Sequence, f Filter) []ChangePoint {
	if len(seq) < 2 {
		return []ChangePoint{}
	}
	out := make([]ChangePoint, 0, len(seq)-1)
	prev := f.Apply(seq[0].Entities)
	for i := 1; i < len(seq); i++ {
		curr := f.Apply(seq[i].Entities)
		cs := DiffPair(prev, curr, seq[i].Day)
		out = append(out, ChangePoint{Day: cs.Day, ChangeCounts: cs.Counts()})
		prev = curr
	}
	return out
}

// Summarize calcula el resumen del último día bajo el filtro. Secuencia vacía => resumen a cero.
func Summarize(seq Sequence, f Filter) Summary {
	latest, ok := seq.Latest()
	if !ok {
		return Summary{}
	}
	s := Summary{Day: latest.Day, StatusCounts: CountStatuses(latest.Entities, f)}
	for _, cp := range ChangeSeries(seq, f) {
		s.PeriodNew += cp.New
		s.PeriodAuthorizations += cp.ToAuthorized
		s.PeriodClosures += cp.ToFinalized
	}
	return s
}

// Timeline devuelve los intervalos dibujables (con Start) que pasan el filtro, en orden de presentación.
func Timeline(records []LifecycleRecord, f Filter) []LifecycleRecord {
	out := make([]LifecycleRecord, 0, len(records))
	for _, r := range records {
		if !r.HasInterval() || !f.MatchesRecord(r) {
			continue
		}
		out = append(out, r)
	}
	SortForTimeline(out)
	return out
}
