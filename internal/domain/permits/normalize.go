package permits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"permit-history/internal/platform/dates"
)

var (
	ErrMissingIdentifierColumn = errors.New("missing identifier column")
	ErrEmptySnapshot           = errors.New("snapshot has no data rows")
)

// ReservedKeyPrefix marca solicitudes derivadas/administrativas (CyMP). Nunca entran al mapa.
const ReservedKeyPrefix = "4"

// Columns son los nombres exactos de cabecera que se buscan en cada snapshot.
type Columns struct {
	Key          string
	Status       string
	Owner        string
	Description  string
	SemanticDate string
}

// DefaultColumns devuelve las cabeceras del export del ledger.
func DefaultColumns() Columns {
	return Columns{
		Key:          "Solicitud",
		Status:       "Status de usuario",
		Owner:        "Creado por",
		Description:  "Texto breve",
		SemanticDate: "Válido de",
	}
}

// Normalizer convierte un RawSnapshot en un NormalizedSnapshot. No guarda estado entre llamadas.
type Normalizer struct {
	Columns     Columns
	Departments DepartmentTable
	// Location define el día natural de CapturedAt (UTC si es nil).
	Location *time.Location
	// NormalizeDate resuelve la fecha semántica; ok=false => sin fecha.
	NormalizeDate func(v any) (string, bool)
}

// NewNormalizer crea un Normalizer con cabeceras, tabla de departamentos y fechas por defecto.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Columns:       DefaultColumns(),
		Departments:   DefaultDepartmentTable(),
		Location:      time.UTC,
		NormalizeDate: dates.Normalize,
	}
}

type columnIndex struct {
	key, status, owner, description, semanticDate int
}

// Normalize construye el mapa clave -> EntityState de un snapshot.
// Solo falla si falta la columna identificador o si no hay filas de datos.
func (n *Normalizer) Normalize(raw RawSnapshot) (NormalizedSnapshot, error) {
	idx := n.locate(raw.Header)
	if idx.key < 0 {
		return NormalizedSnapshot{}, fmt.Errorf("normalize snapshot %s: %w", raw.ID, ErrMissingIdentifierColumn)
	}
	if len(raw.Rows) == 0 {
		return NormalizedSnapshot{}, fmt.Errorf("normalize snapshot %s: %w", raw.ID, ErrEmptySnapshot)
	}

	departments := n.Departments
	if departments == nil {
		departments = DefaultDepartmentTable()
	}
	normalizeDate := n.NormalizeDate
	if normalizeDate == nil {
		normalizeDate = dates.Normalize
	}

	entities := make(map[string]EntityState, len(raw.Rows))
	for _, row := range raw.Rows {
		if len(row) == 0 {
			continue
		}

		key := cellString(row, idx.key)
		if key == "" || strings.HasPrefix(key, ReservedKeyPrefix) {
			continue
		}

		st := EntityState{
			Status:      StatusPending,
			Department:  DepartmentOther,
			Description: cellString(row, idx.description),
		}
		if idx.status >= 0 {
			st.Status = StatusOf(cellString(row, idx.status))
		}
		if idx.owner >= 0 {
			st.Department = departments.Of(cellString(row, idx.owner))
		}
		if idx.semanticDate >= 0 && idx.semanticDate < len(row) {
			if d, ok := normalizeDate(row[idx.semanticDate]); ok {
				st.SemanticDate = d
			}
		}

		// Clave repetida dentro del mismo snapshot: gana la última fila.
		entities[key] = st
	}

	return NormalizedSnapshot{
		Day:        dates.DayOf(raw.CapturedAt, n.Location),
		CapturedAt: raw.CapturedAt,
		Entities:   entities,
	}, nil
}

func (n *Normalizer) locate(header []string) columnIndex {
	find := func(name string) int {
		if name == "" {
			return -1
		}
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
		return -1
	}
	return columnIndex{
		key:          find(n.Columns.Key),
		status:       find(n.Columns.Status),
		owner:        find(n.Columns.Owner),
		description:  find(n.Columns.Description),
		semanticDate: find(n.Columns.SemanticDate),
	}
}

func cellString(row []any, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(CellText(row[i]))
}

// CellText convierte una celda cruda a texto. Los números enteros salen sin decimales ("100", no "100.0").
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
