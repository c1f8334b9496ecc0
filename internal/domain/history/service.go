package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"permit-history/internal/domain/permits"
	"permit-history/internal/platform/logger"
	"permit-history/internal/platform/metrics"
	"permit-history/internal/ports/snapshots"
)

var (
	// ErrNoData: no hay caché y la carga inicial falló.
	ErrNoData        = errors.New("snapshot history not available")
	ErrInvalidFilter = errors.New("invalid filter")
)

type Options struct {
	Normalizer *permits.Normalizer
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

// Service posee la caché del histórico. Las consultas leen un *State inmutable;
// Reload construye uno nuevo y lo publica de una vez.
type Service struct {
	store      snapshots.Store
	normalizer *permits.Normalizer
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	// reloadMu serializa recargas (incluida la carga perezosa).
	reloadMu sync.Mutex

	mu          sync.RWMutex
	state       *State
	lastAttempt time.Time
	lastErr     error
}

func NewService(store snapshots.Store, opts Options) *Service {
	n := opts.Normalizer
	if n == nil {
		n = permits.NewNormalizer()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:      store,
		normalizer: n,
		log:        log.With(map[string]any{"component": "history"}),
		metrics:    opts.Metrics,
		now:        time.Now,
	}
}

// Reload trae todos los snapshots y reconstruye la caché.
// Si el fetch falla, la caché anterior sigue vigente y se devuelve el error.
func (s *Service) Reload(ctx context.Context) (Status, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Service) reloadLocked(ctx context.Context) (Status, error) {
	start := s.now()
	raws, err := s.store.FetchAll(ctx)
	elapsed := s.now().Sub(start)

	if err != nil {
		s.metrics.ReloadFailed(elapsed)
		s.log.Error("reload failed, keeping previous history", map[string]any{
			"error":       err,
			"duration_ms": elapsed.Milliseconds(),
		})

		s.mu.Lock()
		s.lastAttempt = start
		s.lastErr = err
		st := statusOf(s.state, s.lastAttempt, s.lastErr)
		s.mu.Unlock()
		return st, fmt.Errorf("fetch snapshots: %w", err)
	}

	h := permits.BuildHistory(raws, s.normalizer)
	for _, sk := range h.Skipped {
		s.log.Warn("snapshot skipped", map[string]any{
			"snapshot_id": sk.SnapshotID,
			"captured_at": sk.CapturedAt.Format(time.RFC3339),
			"error":       sk.Err,
		})
	}

	latest := 0
	if snap, ok := h.Sequence.Latest(); ok {
		latest = len(snap.Entities)
	}
	s.metrics.ReloadSucceeded(elapsed, h.RawCount, len(h.Skipped), len(h.Sequence), latest)
	s.log.Info("history reloaded", map[string]any{
		"raw":         h.RawCount,
		"skipped":     len(h.Skipped),
		"days":        len(h.Sequence),
		"lifecycles":  len(h.Lifecycles),
		"duration_ms": elapsed.Milliseconds(),
	})

	next := &State{History: h, LoadedAt: s.now()}

	s.mu.Lock()
	s.state = next
	s.lastAttempt = start
	s.lastErr = nil
	st := statusOf(s.state, s.lastAttempt, nil)
	s.mu.Unlock()
	return st, nil
}

// Status no dispara carga.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statusOf(s.state, s.lastAttempt, s.lastErr)
}

// current devuelve la caché, cargándola una vez si aún no existe.
func (s *Service) current(ctx context.Context) (*State, error) {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	if st != nil {
		return st, nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	// otra request pudo cargarla mientras esperábamos
	s.mu.RLock()
	st = s.state
	s.mu.RUnlock()
	if st != nil {
		return st, nil
	}

	if _, err := s.reloadLocked(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

func (s *Service) Summary(ctx context.Context, f permits.Filter) (permits.Summary, error) {
	st, err := s.current(ctx)
	if err != nil {
		return permits.Summary{}, err
	}
	return permits.Summarize(st.History.Sequence, f), nil
}

func (s *Service) Trend(ctx context.Context, f permits.Filter) ([]permits.TrendPoint, error) {
	st, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return permits.Trend(st.History.Sequence, f), nil
}

func (s *Service) Changes(ctx context.Context, f permits.Filter) ([]permits.ChangePoint, error) {
	st, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return permits.ChangeSeries(st.History.Sequence, f), nil
}

func (s *Service) Timeline(ctx context.Context, f permits.Filter) ([]permits.LifecycleRecord, error) {
	st, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return permits.Timeline(st.History.Lifecycles, f), nil
}

// Durations calcula estadísticas sobre los mismos intervalos que Timeline.
func (s *Service) Durations(ctx context.Context, f permits.Filter) (permits.DurationReport, error) {
	items, err := s.Timeline(ctx, f)
	if err != nil {
		return permits.DurationReport{}, err
	}
	return permits.Durations(items), nil
}

// Ingest valida y añade un snapshot al store. La caché NO cambia hasta el próximo Reload.
func (s *Service) Ingest(ctx context.Context, snap permits.RawSnapshot) (permits.RawSnapshot, error) {
	probe := snap
	if probe.CapturedAt.IsZero() {
		probe.CapturedAt = s.now()
	}
	if _, err := s.normalizer.Normalize(probe); err != nil {
		s.metrics.SnapshotIngested(false)
		return permits.RawSnapshot{}, err
	}

	saved, err := s.store.Append(ctx, snap)
	if err != nil {
		s.metrics.SnapshotIngested(false)
		return permits.RawSnapshot{}, fmt.Errorf("append snapshot: %w", err)
	}
	s.metrics.SnapshotIngested(true)
	s.log.Info("snapshot ingested", map[string]any{
		"snapshot_id": saved.ID,
		"captured_at": saved.CapturedAt.Format(time.RFC3339),
		"rows":        len(saved.Rows),
	})
	return saved, nil
}
