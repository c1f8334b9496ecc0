package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"permit-history/internal/domain/permits"
	"permit-history/internal/platform/dates"
)

func buildXLSX(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for y, row := range rows {
		for x, v := range row {
			cell, err := excelize.CoordinatesToCellName(x+1, y+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestRead_XLSXKeepsNumbersAndTextApart(t *testing.T) {
	buf := buildXLSX(t, [][]any{
		{"Solicitud", "Status de usuario", "Creado por", "Válido de"},
		{100, "AUTO", "UF183530", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"0200", "APRO", "UF474650", "15/01/2026"},
	})

	snap, err := Read(buf, FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, []string{"Solicitud", "Status de usuario", "Creado por", "Válido de"}, snap.Header)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, float64(100), snap.Rows[0][0])
	assert.Equal(t, "0200", snap.Rows[1][0])

	day, ok := dates.Normalize(snap.Rows[0][3])
	require.True(t, ok)
	assert.Equal(t, "2026-01-01", day)
	assert.Equal(t, "15/01/2026", snap.Rows[1][3])
}

func TestRead_XLSXNormalizesEndToEnd(t *testing.T) {
	buf := buildXLSX(t, [][]any{
		{"Solicitud", "Status de usuario", "Creado por"},
		{100, "auto", "UF183530"},
		{400123, "APRO", "UF183530"},
	})
	snap, err := Read(buf, FormatXLSX)
	require.NoError(t, err)

	snap.CapturedAt = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	norm, err := permits.NewNormalizer().Normalize(snap)
	require.NoError(t, err)
	require.Len(t, norm.Entities, 1)
	assert.Equal(t, permits.StatusAuthorized, norm.Entities["100"].Status)
	assert.Equal(t, permits.DepartmentElectrical, norm.Entities["100"].Department)
}

func TestRead_CSV(t *testing.T) {
	in := "\ufeffSolicitud,Status de usuario,Válido de\n100,FIN,2026-01-05\n200,,\n"
	snap, err := Read(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "Solicitud", snap.Header[0])
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, []any{"100", "FIN", "2026-01-05"}, snap.Rows[0])
	assert.Nil(t, snap.Rows[1][1])
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("Export.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatOf("ledger.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatOf("ledger.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
