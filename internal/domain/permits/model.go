package permits

import "time"

// RawSnapshot es un volcado completo de la tabla de permisos tal como lo entrega el store.
// Header es la primera fila; Rows son las filas de datos. Las celdas pueden ser string,
// float64 (seriales de Excel, ids numéricos), bool, time.Time o nil.
type RawSnapshot struct {
	ID         string
	CapturedAt time.Time
	Header     []string
	Rows       [][]any
}

// EntityState es el estado de un permiso dentro de un snapshot.
type EntityState struct {
	Status      Status
	Department  Department
	Description string
	// SemanticDate es el "Válido de" declarado por el propio permiso ("" si no hay o no se pudo leer).
	// Solo se usa para filtrar, nunca para el ciclo de vida.
	SemanticDate string
}

// NormalizedSnapshot: estado por clave de un snapshot, con su día natural de captura.
type NormalizedSnapshot struct {
	Day        string
	CapturedAt time.Time
	Entities   map[string]EntityState
}

// Sequence es la secuencia canónica: un snapshot por día, estrictamente creciente por Day.
type Sequence []NormalizedSnapshot

// Days devuelve los días de la secuencia en orden.
func (s Sequence) Days() []string {
	out := make([]string, 0, len(s))
	for _, snap := range s {
		out = append(out, snap.Day)
	}
	return out
}

// Latest devuelve el último snapshot canónico.
func (s Sequence) Latest() (NormalizedSnapshot, bool) {
	if len(s) == 0 {
		return NormalizedSnapshot{}, false
	}
	return s[len(s)-1], true
}

// Transition es un cambio de estado de una clave entre dos días canónicos consecutivos.
type Transition struct {
	Key  string
	From Status
	To   Status
}

// DayChangeSet describe qué cambió en Day respecto al día canónico anterior.
type DayChangeSet struct {
	Day         string
	NewKeys     []string
	Transitions []Transition
	RemovedKeys []string
}

// ChangeCounts son los agregados de un DayChangeSet.
type ChangeCounts struct {
	New          int
	ToAuthorized int
	ToApproved   int
	ToFinalized  int
	ToPending    int
	Removed      int
}

// Counts cuenta nuevos, eliminados y transiciones por estado destino.
func (c DayChangeSet) Counts() ChangeCounts {
	out := ChangeCounts{
		New:     len(c.NewKeys),
		Removed: len(c.RemovedKeys),
	}
	for _, tr := range c.Transitions {
		switch tr.To {
		case StatusAuthorized:
			out.ToAuthorized++
		case StatusApproved:
			out.ToApproved++
		case StatusFinalized:
			out.ToFinalized++
		default:
			out.ToPending++
		}
	}
	return out
}

// LifecycleRecord acumula la vida de una clave a lo largo de la secuencia.
// Start y End se fijan una sola vez (primera ocurrencia); "" significa sin valor.
type LifecycleRecord struct {
	Key          string
	Start        string
	End          string
	LastStatus   Status
	Department   Department
	Description  string
	SemanticDate string
	LastSeen     string
}

// HasInterval indica si el registro llegó a AUTHORIZED y por tanto se dibuja en el timeline.
func (r LifecycleRecord) HasInterval() bool {
	return r.Start != ""
}
