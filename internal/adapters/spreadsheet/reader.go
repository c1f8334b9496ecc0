package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"permit-history/internal/domain/permits"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// FormatOf deduce el formato por extensión (.xlsx/.xlsm o .csv).
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Read convierte un export del ledger en un RawSnapshot sin ID ni CapturedAt (los pone el store).
// XLSX: primera hoja, celdas numéricas como float64 (las fechas quedan como serial de Excel).
// CSV: todas las celdas como texto.
func Read(r io.Reader, format Format) (permits.RawSnapshot, error) {
	var (
		matrix [][]any
		err    error
	)
	switch format {
	case FormatXLSX:
		matrix, err = readXLSX(r)
	case FormatCSV:
		matrix, err = readCSV(r)
	default:
		return permits.RawSnapshot{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return permits.RawSnapshot{}, err
	}
	if len(matrix) == 0 {
		return permits.RawSnapshot{}, errors.New("spreadsheet has no header row")
	}

	header := make([]string, 0, len(matrix[0]))
	for _, cell := range matrix[0] {
		header = append(header, strings.TrimSpace(permits.CellText(cell)))
	}
	return permits.RawSnapshot{Header: header, Rows: matrix[1:]}, nil
}

func readXLSX(r io.Reader) ([][]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	matrix := make([][]any, 0, len(rows))
	for y, row := range rows {
		out := make([]any, len(row))
		for x, text := range row {
			out[x] = xlsxCell(f, sheet, x, y, text)
		}
		matrix = append(matrix, out)
	}
	return matrix, nil
}

// xlsxCell devuelve float64 para celdas numéricas (incluidas fechas) y el texto para el resto.
// Un texto con forma de número ("0100") sigue siendo texto.
func xlsxCell(f *excelize.File, sheet string, x, y int, text string) any {
	if text == "" {
		return nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return text
	}
	ref, err := excelize.CoordinatesToCellName(x+1, y+1)
	if err != nil {
		return text
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return text
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		return n
	default:
		return text
	}
}

func readCSV(r io.Reader) ([][]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	matrix := make([][]any, 0, len(records))
	for i, rec := range records {
		if i == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		out := make([]any, len(rec))
		for j, cell := range rec {
			if cell == "" {
				continue
			}
			out[j] = cell
		}
		matrix = append(matrix, out)
	}
	return matrix, nil
}
