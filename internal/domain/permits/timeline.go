package permits

import "sort"

// BuildLifecycles recorre la secuencia canónica y devuelve un LifecycleRecord por clave vista.
//
// En cada avistamiento se sobrescriben estado, departamento, descripción y LastSeen; la fecha
// semántica solo se rellena si aún no tenía valor. Start es el primer día en AUTHORIZED y End el
// primer día en FINALIZED; una vez fijados no cambian aunque el permiso retroceda y se re-autorice.
// Al terminar, los registros con Start y sin End reciben End = LastSeen. No se distingue entre
// "desapareció antes del último snapshot" y "sigue abierto": ambos casos cierran en LastSeen.
func BuildLifecycles(seq Sequence) []LifecycleRecord {
	byKey := make(map[string]*LifecycleRecord)

	for _, snap := range seq {
		for key, st := range snap.Entities {
			rec, ok := byKey[key]
			if !ok {
				rec = &LifecycleRecord{Key: key}
				byKey[key] = rec
			}

			rec.LastStatus = st.Status
			rec.Department = st.Department
			rec.Description = st.Description
			if rec.SemanticDate == "" {
				rec.SemanticDate = st.SemanticDate
			}
			rec.LastSeen = snap.Day

			if st.Status == StatusAuthorized && rec.Start == "" {
				rec.Start = snap.Day
			}
			if st.Status == StatusFinalized && rec.End == "" {
				rec.End = snap.Day
			}
		}
	}

	out := make([]LifecycleRecord, 0, len(byKey))
	for _, rec := range byKey {
		if rec.Start != "" && rec.End == "" {
			rec.End = rec.LastSeen
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SortForTimeline ordena por departamento (orden fijo), luego Start ascendente y por último clave.
func SortForTimeline(recs []LifecycleRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := recs[i].Department.rank(), recs[j].Department.rank()
		if ri != rj {
			return ri < rj
		}
		if recs[i].Start != recs[j].Start {
			return recs[i].Start < recs[j].Start
		}
		return recs[i].Key < recs[j].Key
	})
}
