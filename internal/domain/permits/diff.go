package permits

import "sort"

// Diff compara cada día canónico con el anterior. El primer día no produce DayChangeSet.
func Diff(seq Sequence) []DayChangeSet {
	if len(seq) < 2 {
		return []DayChangeSet{}
	}
	out := make([]DayChangeSet, 0, len(seq)-1)
	for i := 1; i < len(seq); i++ {
		out = append(out, DiffPair(seq[i-1].Entities, seq[i].Entities, seq[i].Day))
	}
	return out
}

// DiffPair clasifica claves entre dos mapas de estado: nuevas, con transición y eliminadas.
// No se valida la legalidad de las transiciones; cualquier dirección se registra.
// Las listas salen ordenadas por clave para que el resultado sea determinista.
func DiffPair(prev, curr map[string]EntityState, day string) DayChangeSet {
	cs := DayChangeSet{
		Day:         day,
		NewKeys:     []string{},
		Transitions: []Transition{},
		RemovedKeys: []string{},
	}

	for key, st := range curr {
		before, ok := prev[key]
		if !ok {
			cs.NewKeys = append(cs.NewKeys, key)
			continue
		}
		if before.Status != st.Status {
			cs.Transitions = append(cs.Transitions, Transition{Key: key, From: before.Status, To: st.Status})
		}
	}
	for key := range prev {
		if _, ok := curr[key]; !ok {
			cs.RemovedKeys = append(cs.RemovedKeys, key)
		}
	}

	sort.Strings(cs.NewKeys)
	sort.Strings(cs.RemovedKeys)
	sort.Slice(cs.Transitions, func(i, j int) bool { return cs.Transitions[i].Key < cs.Transitions[j].Key })
	return cs
}
