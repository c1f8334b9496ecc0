package permits

import "sort"

// Canonicalize deja un único snapshot por día (el de CapturedAt máximo) y ordena por día ascendente.
// Empate en CapturedAt dentro del mismo día: gana el que aparece después en la entrada.
// Lo descartado no existe para el resto del pipeline (no genera "eliminados").
func Canonicalize(snaps []NormalizedSnapshot) Sequence {
	byDay := make(map[string]NormalizedSnapshot, len(snaps))
	for _, s := range snaps {
		cur, ok := byDay[s.Day]
		if ok && s.CapturedAt.Before(cur.CapturedAt) {
			continue
		}
		byDay[s.Day] = s
	}

	out := make(Sequence, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
