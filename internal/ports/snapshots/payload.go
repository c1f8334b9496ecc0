package snapshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"permit-history/internal/domain/permits"
)

var ErrInvalidPayload = errors.New("invalid snapshot payload")

// EncodeRows serializa la matriz completa (cabecera como primera fila), que es el formato almacenado.
func EncodeRows(header []string, rows [][]any) ([]byte, error) {
	matrix := make([][]any, 0, len(rows)+1)
	h := make([]any, 0, len(header))
	for _, col := range header {
		h = append(h, col)
	}
	matrix = append(matrix, h)
	matrix = append(matrix, rows...)

	b, err := json.Marshal(matrix)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	return b, nil
}

// DecodeRows acepta los dos formatos históricos del campo data:
// una matriz de filas, o un objeto {"rows": matriz, ...} (otras claves, p.ej. aislamientos, se ignoran).
func DecodeRows(data []byte) (header []string, rows [][]any, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, ErrInvalidPayload
	}

	var matrix [][]any
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &matrix); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	case '{':
		var wrapped struct {
			Rows [][]any `json:"rows"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		matrix = wrapped.Rows
	default:
		return nil, nil, ErrInvalidPayload
	}

	if len(matrix) == 0 {
		return nil, nil, fmt.Errorf("%w: no header row", ErrInvalidPayload)
	}

	header = make([]string, 0, len(matrix[0]))
	for _, cell := range matrix[0] {
		header = append(header, permits.CellText(cell))
	}
	return header, matrix[1:], nil
}

// FromPayload arma un RawSnapshot desde el campo data almacenado. Un payload ilegible no corta
// la carga: sale sin cabecera y el pipeline lo descarta (falta la columna identificador).
func FromPayload(id string, capturedAt time.Time, data []byte) permits.RawSnapshot {
	snap := permits.RawSnapshot{ID: id, CapturedAt: capturedAt.UTC()}
	header, rows, err := DecodeRows(data)
	if err != nil {
		return snap
	}
	snap.Header = header
	snap.Rows = rows
	return snap
}
