package permits

import (
	"fmt"
	"strings"

	"permit-history/internal/platform/dates"
)

// Filter es el predicado común a todas las presentaciones: departamentos + rango de fecha semántica.
// Departments vacío significa "todos". From/To vacíos significan sin límite por ese lado;
// con cualquiera de los dos activo, las entradas sin fecha semántica quedan fuera.
type Filter struct {
	Departments map[Department]bool
	From        string
	To          string
}

// NewFilter valida ids de departamento y fechas (YYYY-MM-DD). "ALL" equivale a todos.
func NewFilter(departments []string, from, to string) (Filter, error) {
	f := Filter{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}

	for _, raw := range departments {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.EqualFold(raw, "ALL") {
			f.Departments = nil
			break
		}
		d, err := ParseDepartment(raw)
		if err != nil {
			return Filter{}, err
		}
		if f.Departments == nil {
			f.Departments = map[Department]bool{}
		}
		f.Departments[d] = true
	}

	if f.From != "" && !dates.Valid(f.From) {
		return Filter{}, fmt.Errorf("invalid from date %q", f.From)
	}
	if f.To != "" && !dates.Valid(f.To) {
		return Filter{}, fmt.Errorf("invalid to date %q", f.To)
	}
	return f, nil
}

// DateRangeActive indica si hay alguna cota de fecha.
func (f Filter) DateRangeActive() bool {
	return f.From != "" || f.To != ""
}

// Allows aplica el predicado a un departamento y una fecha semántica ("" = sin fecha).
func (f Filter) Allows(dept Department, semanticDate string) bool {
	if len(f.Departments) > 0 && !f.Departments[dept] {
		return false
	}
	if !f.DateRangeActive() {
		return true
	}
	if semanticDate == "" {
		return false
	}
	// Comparación lexicográfica válida: formato de ancho fijo YYYY-MM-DD.
	if f.From != "" && semanticDate < f.From {
		return false
	}
	if f.To != "" && semanticDate > f.To {
		return false
	}
	return true
}

func (f Filter) Matches(st EntityState) bool {
	return f.Allows(st.Department, st.SemanticDate)
}

func (f Filter) MatchesRecord(r LifecycleRecord) bool {
	return f.Allows(r.Department, r.SemanticDate)
}

// Apply devuelve el submapa que pasa el filtro. Sin filtro activo devuelve el mismo mapa.
func (f Filter) Apply(entities map[string]EntityState) map[string]EntityState {
	if len(f.Departments) == 0 && !f.DateRangeActive() {
		return entities
	}
	out := make(map[string]EntityState, len(entities))
	for key, st := range entities {
		if f.Matches(st) {
			out[key] = st
		}
	}
	return out
}
