package dates

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Layout es el formato canónico de fecha: YYYY-MM-DD (ancho fijo, comparable como string).
const Layout = "2006-01-02"

// Rango aceptado para seriales de Excel. Fuera de él casi siempre es un número que no era fecha.
const (
	MinSerialYear = 2000
	MaxSerialYear = 2100
)

var (
	reISOPrefix   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	reSlashDMY    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	reDotDMY      = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	reSlashYMD    = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})`)
	reDashDMY     = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})`)
	reSlashShort  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	reTimeOnly    = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
	fallbackForms = []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", time.RFC1123, time.RFC1123Z}
)

// Normalize convierte un valor de fecha heterogéneo (string con formato local,
// serial de Excel o time.Time) a "YYYY-MM-DD". Devuelve ok=false si no se puede.
// Nunca devuelve error: una fecha ilegible es simplemente ausente.
func Normalize(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		return t.UTC().Format(Layout), true
	case *time.Time:
		if t == nil {
			return "", false
		}
		return Normalize(*t)
	case float64:
		return fromSerial(t)
	case float32:
		return fromSerial(float64(t))
	case int:
		return fromSerial(float64(t))
	case int64:
		return fromSerial(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", false
		}
		return fromSerial(f)
	case string:
		return fromString(t)
	default:
		return fromString(fmt.Sprint(t))
	}
}

// Valid indica si s ya está en formato canónico y es una fecha real.
func Valid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// DaysBetween devuelve los días naturales entre dos fechas canónicas (to - from).
func DaysBetween(from, to string) (int, error) {
	a, err := time.Parse(Layout, from)
	if err != nil {
		return 0, fmt.Errorf("dates: parse %q: %w", from, err)
	}
	b, err := time.Parse(Layout, to)
	if err != nil {
		return 0, fmt.Errorf("dates: parse %q: %w", to, err)
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// DayOf devuelve el día natural de t en loc (UTC si loc es nil).
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(Layout)
}

func fromSerial(serial float64) (string, bool) {
	// < 1 es solo una hora del día, no una fecha.
	if serial < 1 {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", false
	}
	if y := t.Year(); y < MinSerialYear || y > MaxSerialYear {
		return "", false
	}
	return t.Format(Layout), true
}

func fromString(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if reTimeOnly.MatchString(s) {
		return "", false
	}

	// prefijo YYYY-MM-DD: también se valida (2026-02-30 no es fecha)
	if m := reISOPrefix.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3])
	}
	if m := reSlashDMY.FindStringSubmatch(s); m != nil {
		return disambiguate(m[1], m[2], m[3])
	}
	if m := reDotDMY.FindStringSubmatch(s); m != nil {
		return build(m[3], m[2], m[1])
	}
	if m := reSlashYMD.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3])
	}
	if m := reDashDMY.FindStringSubmatch(s); m != nil {
		return build(m[3], m[2], m[1])
	}
	if m := reSlashShort.FindStringSubmatch(s); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return disambiguate(m[1], m[2], year)
	}

	for _, layout := range fallbackForms {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(Layout), true
		}
	}
	return "", false
}

// disambiguate resuelve A/B/YYYY: si A > 12 es día, si B > 12 es M/D, si no, D/M (formato español).
func disambiguate(a, b, year string) (string, bool) {
	na, _ := strconv.Atoi(a)
	nb, _ := strconv.Atoi(b)
	if nb > 12 && na <= 12 {
		return build(year, a, b)
	}
	return build(year, b, a)
}

func build(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// 31/02 se normalizaría a marzo: lo rechazamos.
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format(Layout), true
}
