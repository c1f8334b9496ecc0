package permits

import "time"

var testHeader = []string{"Orden", "Solicitud", "Texto breve", "Status de usuario", "Creado por", "Válido de"}

// row arma una fila con el orden de testHeader.
func row(key, desc, status, owner string, validFrom any) []any {
	return []any{"", key, desc, status, owner, validFrom}
}

func raw(id string, capturedAt time.Time, rows ...[]any) RawSnapshot {
	return RawSnapshot{ID: id, CapturedAt: capturedAt, Header: testHeader, Rows: rows}
}

func at(day string, hour int) time.Time {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

// snap arma un NormalizedSnapshot directamente a partir de estados.
func snap(day string, hour int, states map[string]Status) NormalizedSnapshot {
	ents := make(map[string]EntityState, len(states))
	for k, s := range states {
		ents[k] = EntityState{Status: s, Department: DepartmentOther}
	}
	return NormalizedSnapshot{Day: day, CapturedAt: at(day, hour), Entities: ents}
}

// exampleSequence es el escenario de referencia: 10 -> 12 -> 15 de enero de 2026.
func exampleSequence() Sequence {
	return Canonicalize([]NormalizedSnapshot{
		snap("2026-01-10", 9, map[string]Status{"100": StatusPending}),
		snap("2026-01-12", 9, map[string]Status{"100": StatusAuthorized, "200": StatusPending}),
		snap("2026-01-15", 9, map[string]Status{"100": StatusFinalized}),
	})
}
