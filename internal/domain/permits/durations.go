package permits

import (
	"github.com/montanaflynn/stats"

	"permit-history/internal/platform/dates"
)

// DurationStats resume la duración (End - Start, en días) de los intervalos de un grupo.
type DurationStats struct {
	Department Department
	Count      int
	MeanDays   float64
	MedianDays float64
	P90Days    float64
	MaxDays    float64
}

// DurationReport agrupa las estadísticas globales y por departamento (orden fijo, solo grupos con datos).
type DurationReport struct {
	Overall      DurationStats
	ByDepartment []DurationStats
}

// Durations calcula estadísticas de duración sobre intervalos ya filtrados.
// Intervalos con fechas ilegibles se ignoran.
func Durations(intervals []LifecycleRecord) DurationReport {
	all := make(stats.Float64Data, 0, len(intervals))
	byDept := map[Department]stats.Float64Data{}

	for _, r := range intervals {
		if !r.HasInterval() || r.End == "" {
			continue
		}
		days, err := dates.DaysBetween(r.Start, r.End)
		if err != nil {
			continue
		}
		all = append(all, float64(days))
		byDept[r.Department] = append(byDept[r.Department], float64(days))
	}

	report := DurationReport{
		Overall:      describe("", all),
		ByDepartment: []DurationStats{},
	}
	for _, d := range DepartmentOrder {
		data, ok := byDept[d]
		if !ok {
			continue
		}
		report.ByDepartment = append(report.ByDepartment, describe(d, data))
	}
	return report
}

func describe(d Department, data stats.Float64Data) DurationStats {
	out := DurationStats{Department: d, Count: data.Len()}
	if data.Len() == 0 {
		return out
	}
	// Con datos no vacíos no hay error posible.
	out.MeanDays, _ = stats.Round(orZero(data.Mean()), 2)
	out.MedianDays = orZero(data.Median())
	out.P90Days = orZero(data.Percentile(90))
	out.MaxDays = orZero(data.Max())
	return out
}

func orZero(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
