package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"permit-history/internal/adapters/spreadsheet"
	"permit-history/internal/domain/permits"
	"permit-history/internal/middleware"
	"permit-history/internal/ports/snapshots"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes limita el cuerpo de POST /snapshots.
const maxUploadBytes = 64 << 20

func RegisterRoutes(r chi.Router, svc *Service, ingestAPIKey string) {
	r.Route("/history", func(hr chi.Router) {
		hr.Post("/reload", reloadHandler(svc))
		hr.Get("/status", statusHandler(svc))

		// Consultas filtrables (departments, from, to)
		hr.Get("/summary", summaryHandler(svc))
		hr.Get("/trend", trendHandler(svc))
		hr.Get("/changes", changesHandler(svc))
		hr.Get("/timeline", timelineHandler(svc))
		hr.Get("/durations", durationsHandler(svc))
	})

	r.With(middleware.APIKey(ingestAPIKey)).Post("/snapshots", ingestHandler(svc))
}

// skippedResponse es un snapshot descartado en la última recarga.
type skippedResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	CapturedAt time.Time `json:"captured_at"`
	Error      string    `json:"error"`
}

// statusResponse describe la caché del histórico.
type statusResponse struct {
	Loaded        bool              `json:"loaded"`
	LoadedAt      *time.Time        `json:"loaded_at,omitempty"`
	RawSnapshots  int               `json:"raw_snapshots"`
	CanonicalDays int               `json:"canonical_days"`
	FirstDay      string            `json:"first_day"`
	LastDay       string            `json:"last_day"`
	Skipped       []skippedResponse `json:"skipped"`
	LastAttemptAt *time.Time        `json:"last_attempt_at,omitempty"`
	LastError     string            `json:"last_error,omitempty"`
}

type statusCountsResponse struct {
	Total      int `json:"total"`
	Authorized int `json:"authorized"`
	Approved   int `json:"approved"`
	Finalized  int `json:"finalized"`
	Pending    int `json:"pending"`
}

// summaryResponse: conteos del último día + totales del periodo.
type summaryResponse struct {
	Day string `json:"day"`
	statusCountsResponse
	PeriodNew            int `json:"period_new"`
	PeriodAuthorizations int `json:"period_authorizations"`
	PeriodClosures       int `json:"period_closures"`
}

type trendPointResponse struct {
	Day string `json:"day"`
	statusCountsResponse
}

type changePointResponse struct {
	Day          string `json:"day"`
	New          int    `json:"new"`
	ToAuthorized int    `json:"to_authorized"`
	ToApproved   int    `json:"to_approved"`
	ToFinalized  int    `json:"to_finalized"`
	ToPending    int    `json:"to_pending"`
	Removed      int    `json:"removed"`
}

// timelineItemResponse es un intervalo autorización -> cierre.
type timelineItemResponse struct {
	Key             string             `json:"key"`
	Start           string             `json:"start"`
	End             *string            `json:"end"`
	LastStatus      permits.Status     `json:"last_status" enums:"PENDING,APPROVED,AUTHORIZED,FINALIZED"`
	Department      permits.Department `json:"department" enums:"ELECTRICAL,MECHANICAL,GE,IC,OTHER"`
	DepartmentLabel string             `json:"department_label"`
	Description     string             `json:"description"`
	SemanticDate    *string            `json:"semantic_date"`
	LastSeen        string             `json:"last_seen"`
}

type durationStatsResponse struct {
	Department permits.Department `json:"department,omitempty"`
	Count      int                `json:"count"`
	MeanDays   float64            `json:"mean_days"`
	MedianDays float64            `json:"median_days"`
	P90Days    float64            `json:"p90_days"`
	MaxDays    float64            `json:"max_days"`
}

type durationsResponse struct {
	Overall      durationStatsResponse   `json:"overall"`
	ByDepartment []durationStatsResponse `json:"by_department"`
}

// ingestResponse es el snapshot guardado.
type ingestResponse struct {
	ID         string    `json:"id"`
	CapturedAt time.Time `json:"captured_at"`
	Rows       int       `json:"rows"`
}

// reloadHandler godoc
// @Summary Recargar histórico
// @Description Lee todos los snapshots del store y reconstruye la caché completa. Si la lectura falla, la caché anterior se mantiene.
// @Tags history
// @Produce json
// @Success 200 {object} statusResponse
// @Failure 502 {string} string "fetch snapshots failed"
// @Router /history/reload [post]
func reloadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Reload(r.Context())
		if err != nil {
			http.Error(w, "fetch snapshots failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, toStatusResponse(st))
	}
}

// statusHandler godoc
// @Summary Estado de la caché
// @Description Momento de carga, snapshots leídos/descartados y primer/último día canónico (útil para precargar el rango de fechas). No dispara carga.
// @Tags history
// @Produce json
// @Success 200 {object} statusResponse
// @Router /history/status [get]
func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, toStatusResponse(svc.Status()))
	}
}

// summaryHandler godoc
// @Summary Resumen del último día
// @Description Conteos por estado del último día canónico y totales del periodo (nuevos, autorizaciones, cierres), con el filtro aplicado.
// @Tags history
// @Produce json
// @Param departments query string false "CSV de departamentos (ELECTRICAL,MECHANICAL,GE,IC,OTHER). Vacío o ALL = todos"
// @Param from query string false "Fecha semántica mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha semántica máxima (YYYY-MM-DD)"
// @Success 200 {object} summaryResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 503 {string} string "history not available"
// @Router /history/summary [get]
func summaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseFilter(w, r)
		if !ok {
			return
		}
		s, err := svc.Summary(r.Context(), f)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaryResponse{
			Day:                  s.Day,
			statusCountsResponse: toStatusCounts(s.StatusCounts),
			PeriodNew:            s.PeriodNew,
			PeriodAuthorizations: s.PeriodAuthorizations,
			PeriodClosures:       s.PeriodClosures,
		})
	}
}

// trendHandler godoc
// @Summary Evolución de estados
// @Description Un punto por día canónico con los conteos por estado, con el filtro aplicado.
// @Tags history
// @Produce json
// @Param departments query string false "CSV de departamentos. Vacío o ALL = todos"
// @Param from query string false "Fecha semántica mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha semántica máxima (YYYY-MM-DD)"
// @Success 200 {array} trendPointResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 503 {string} string "history not available"
// @Router /history/trend [get]
func trendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseFilter(w, r)
		if !ok {
			return
		}
		points, err := svc.Trend(r.Context(), f)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		out := make([]trendPointResponse, 0, len(points))
		for _, p := range points {
			out = append(out, trendPointResponse{Day: p.Day, statusCountsResponse: toStatusCounts(p.StatusCounts)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// changesHandler godoc
// @Summary Cambios por día
// @Description Nuevos, transiciones por estado destino y eliminados de cada día respecto al anterior. El filtro se aplica a ambos días del par. El primer día no tiene punto.
// @Tags history
// @Produce json
// @Param departments query string false "CSV de departamentos. Vacío o ALL = todos"
// @Param from query string false "Fecha semántica mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha semántica máxima (YYYY-MM-DD)"
// @Success 200 {array} changePointResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 503 {string} string "history not available"
// @Router /history/changes [get]
func changesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseFilter(w, r)
		if !ok {
			return
		}
		points, err := svc.Changes(r.Context(), f)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		out := make([]changePointResponse, 0, len(points))
		for _, p := range points {
			out = append(out, changePointResponse{
				Day:          p.Day,
				New:          p.New,
				ToAuthorized: p.ToAuthorized,
				ToApproved:   p.ToApproved,
				ToFinalized:  p.ToFinalized,
				ToPending:    p.ToPending,
				Removed:      p.Removed,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// timelineHandler godoc
// @Summary Línea de tiempo de permisos
// @Description Intervalos autorización -> cierre de los permisos que llegaron a AUTHORIZED, ordenados por departamento y fecha de inicio.
// @Tags history
// @Produce json
// @Param departments query string false "CSV de departamentos. Vacío o ALL = todos"
// @Param from query string false "Fecha semántica mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha semántica máxima (YYYY-MM-DD)"
// @Success 200 {array} timelineItemResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 503 {string} string "history not available"
// @Router /history/timeline [get]
func timelineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseFilter(w, r)
		if !ok {
			return
		}
		items, err := svc.Timeline(r.Context(), f)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		out := make([]timelineItemResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toTimelineItem(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// durationsHandler godoc
// @Summary Duración de los permisos
// @Description Estadísticas (media, mediana, p90, máximo) en días de los intervalos de la línea de tiempo, global y por departamento.
// @Tags history
// @Produce json
// @Param departments query string false "CSV de departamentos. Vacío o ALL = todos"
// @Param from query string false "Fecha semántica mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha semántica máxima (YYYY-MM-DD)"
// @Success 200 {object} durationsResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 503 {string} string "history not available"
// @Router /history/durations [get]
func durationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseFilter(w, r)
		if !ok {
			return
		}
		rep, err := svc.Durations(r.Context(), f)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		out := durationsResponse{
			Overall:      toDurationStats(rep.Overall),
			ByDepartment: make([]durationStatsResponse, 0, len(rep.ByDepartment)),
		}
		for _, d := range rep.ByDepartment {
			out.ByDepartment = append(out.ByDepartment, toDurationStats(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ingestHandler godoc
// @Summary Subir snapshot
// @Description Añade un snapshot completo del ledger al store: multipart (campo `file`, .xlsx o .csv), text/csv o JSON (matriz de filas o {"rows": matriz}). La caché no cambia hasta el próximo reload. Requiere `X-API-Key` si el servidor tiene INGEST_API_KEY.
// @Tags snapshots
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param X-API-Key header string false "Clave de ingesta"
// @Param captured_at query string false "Momento de captura (RFC3339). Por defecto, ahora"
// @Param file formData file false "Export .xlsx o .csv"
// @Success 201 {object} ingestResponse
// @Failure 400 {string} string "payload inválido / falta columna Solicitud / sin filas"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /snapshots [post]
func ingestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		snap, err := readSnapshot(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if v := strings.TrimSpace(r.URL.Query().Get("captured_at")); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "captured_at must be RFC3339", http.StatusBadRequest)
				return
			}
			snap.CapturedAt = t.UTC()
		}

		saved, err := svc.Ingest(r.Context(), snap)
		switch {
		case errors.Is(err, permits.ErrMissingIdentifierColumn),
			errors.Is(err, permits.ErrEmptySnapshot),
			errors.Is(err, snapshots.ErrInvalidPayload):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, ingestResponse{
			ID:         saved.ID,
			CapturedAt: saved.CapturedAt,
			Rows:       len(saved.Rows),
		})
	}
}

// readSnapshot decodifica el cuerpo según Content-Type.
func readSnapshot(r *http.Request) (permits.RawSnapshot, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return permits.RawSnapshot{}, errors.New("invalid content type")
	}

	switch mediaType {
	case "multipart/form-data":
		file, fh, err := r.FormFile("file")
		if err != nil {
			return permits.RawSnapshot{}, errors.New("missing file field")
		}
		defer file.Close()

		format, err := spreadsheet.FormatOf(fh.Filename)
		if err != nil {
			return permits.RawSnapshot{}, err
		}
		return spreadsheet.Read(file, format)

	case "text/csv":
		return spreadsheet.Read(r.Body, spreadsheet.FormatCSV)

	case "application/json":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return permits.RawSnapshot{}, fmt.Errorf("read body: %w", err)
		}
		header, rows, err := snapshots.DecodeRows(data)
		if err != nil {
			return permits.RawSnapshot{}, err
		}
		return permits.RawSnapshot{Header: header, Rows: rows}, nil

	default:
		return permits.RawSnapshot{}, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func parseFilter(w http.ResponseWriter, r *http.Request) (permits.Filter, bool) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return permits.Filter{}, false
	}
	return f, true
}

func writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoData) {
		http.Error(w, "history not available", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toStatusResponse(st Status) statusResponse {
	out := statusResponse{
		Loaded:        st.Loaded,
		RawSnapshots:  st.RawSnapshots,
		CanonicalDays: st.CanonicalDays,
		FirstDay:      st.FirstDay,
		LastDay:       st.LastDay,
		Skipped:       make([]skippedResponse, 0, len(st.Skipped)),
		LastError:     st.LastError,
	}
	if !st.LoadedAt.IsZero() {
		t := st.LoadedAt.UTC()
		out.LoadedAt = &t
	}
	if !st.LastAttemptAt.IsZero() {
		t := st.LastAttemptAt.UTC()
		out.LastAttemptAt = &t
	}
	for _, sk := range st.Skipped {
		msg := ""
		if sk.Err != nil {
			msg = sk.Err.Error()
		}
		out.Skipped = append(out.Skipped, skippedResponse{
			SnapshotID: sk.SnapshotID,
			CapturedAt: sk.CapturedAt.UTC(),
			Error:      msg,
		})
	}
	return out
}

func toStatusCounts(c permits.StatusCounts) statusCountsResponse {
	return statusCountsResponse{
		Total:      c.Total,
		Authorized: c.Authorized,
		Approved:   c.Approved,
		Finalized:  c.Finalized,
		Pending:    c.Pending,
	}
}

func toTimelineItem(rec permits.LifecycleRecord) timelineItemResponse {
	return timelineItemResponse{
		Key:             rec.Key,
		Start:           rec.Start,
		End:             nullable(rec.End),
		LastStatus:      rec.LastStatus,
		Department:      rec.Department,
		DepartmentLabel: rec.Department.Label(),
		Description:     rec.Description,
		SemanticDate:    nullable(rec.SemanticDate),
		LastSeen:        rec.LastSeen,
	}
}

func toDurationStats(d permits.DurationStats) durationStatsResponse {
	return durationStatsResponse{
		Department: d.Department,
		Count:      d.Count,
		MeanDays:   d.MeanDays,
		MedianDays: d.MedianDays,
		P90Days:    d.P90Days,
		MaxDays:    d.MaxDays,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
