// Package sim управляет жизненным циклом мира: однократной генерацией и тиками затопления.
// Все изменения сетки выполняются под единственной блокировкой писателя,
// чтения (статус, профиль колонки, снимок) берут блокировку на чтение.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/floodworld/internal/config"
	"github.com/annel0/floodworld/internal/eventbus"
	"github.com/annel0/floodworld/internal/logging"
	"github.com/annel0/floodworld/internal/observability"
	"github.com/annel0/floodworld/internal/vec"
	"github.com/annel0/floodworld/internal/world"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const eventSource = "sim"

var (
	// ErrAlreadyGenerated - мир уже сгенерирован или восстановлен из снимка
	ErrAlreadyGenerated = errors.New("мир уже сгенерирован")
	// ErrNotGenerated - тик запрошен до генерации мира
	ErrNotGenerated = errors.New("мир ещё не сгенерирован")
)

// SnapshotSaver сохраняет снимки сетки
type SnapshotSaver interface {
	SaveSnapshot(snap *world.Snapshot) error
}

// Option настраивает Simulation
type Option func(*Simulation)

// WithEventBus публикует события мира в шину
func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *Simulation) { s.bus = bus }
}

// WithMetrics включает Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(s *Simulation) { s.metrics = m }
}

// WithStorage включает периодическое сохранение снимков
func WithStorage(saver SnapshotSaver) Option {
	return func(s *Simulation) { s.storage = saver }
}

// WithSeed запоминает сид мира для событий и статуса
func WithSeed(seed int64) Option {
	return func(s *Simulation) { s.seed = seed }
}

// WithResume продолжает симуляцию над уже заполненной сеткой (например, восстановленной из снимка)
func WithResume(tick uint64) Option {
	return func(s *Simulation) {
		s.generated = true
		s.tick = tick
	}
}

// Status - сводка состояния мира
type Status struct {
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Depth     int                `json:"depth"`
	Seed      int64              `json:"seed"`
	SeaLevel  int                `json:"sea_level"`
	Tick      uint64             `json:"tick"`
	Generated bool               `json:"generated"`
	Saturated bool               `json:"saturated"`
	Strategy  string             `json:"flood_strategy"`
	Counts    map[string]int     `json:"counts"`
	LastFlood *world.FloodResult `json:"last_flood,omitempty"`
}

// Simulation владеет сеткой и сериализует все её изменения
type Simulation struct {
	mu        sync.RWMutex
	grid      *world.Grid
	generator *world.TerrainGenerator
	flooder   *world.SeaFlooder

	interval      time.Duration
	maxTicks      uint64
	snapshotEvery uint64

	seed      int64
	tick      uint64
	generated bool
	saturated bool
	last      *world.FloodResult

	bus     eventbus.EventBus
	metrics *Metrics
	storage SnapshotSaver
	logger  *logging.Logger
}

// New создаёт симуляцию над сеткой
func New(cfg config.SimulationConfig, grid *world.Grid, generator *world.TerrainGenerator, flooder *world.SeaFlooder, opts ...Option) *Simulation {
	s := &Simulation{
		grid:          grid,
		generator:     generator,
		flooder:       flooder,
		interval:      cfg.TickInterval(),
		maxTicks:      cfg.MaxTicks,
		snapshotEvery: cfg.SnapshotEvery,
		logger:        logging.GetSimLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = time.Millisecond
	}
	return s
}

// Generate однократно заполняет сетку рельефом, водой и деревьями
func (s *Simulation) Generate(ctx context.Context) error {
	ctx, span := observability.Tracer().Start(ctx, "world.generate")
	defer span.End()

	s.mu.Lock()
	if s.generated {
		s.mu.Unlock()
		return ErrAlreadyGenerated
	}

	start := time.Now()
	stats, err := s.generator.Generate(s.grid)
	if err != nil {
		s.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("генерация мира: %w", err)
	}
	s.generated = true
	w, h, d := s.grid.Dimensions()
	seaLevel := s.grid.SeaLevel()
	var snap *world.Snapshot
	if s.storage != nil {
		snap = s.snapshotLocked()
	}
	if s.metrics != nil {
		s.metrics.observeCounts(s.grid.Counts())
		s.metrics.SeaLevel.Set(float64(seaLevel))
	}
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("world.terrain", stats.Terrain),
		attribute.Int("world.water", stats.Water),
		attribute.Int("world.trees", stats.Trees),
	)
	s.logger.Info("🌍 Мир %dx%dx%d сгенерирован за %v: %d вокселей", w, h, d, time.Since(start), stats.Total())

	s.publish(ctx, eventbus.EventWorldGenerated, eventbus.WorldGenerated{
		Width:    w,
		Height:   h,
		Depth:    d,
		Seed:     s.seed,
		Terrain:  stats.Terrain,
		Water:    stats.Water,
		Trees:    stats.Trees,
		SeaLevel: seaLevel,
	})
	s.save(snap)
	return nil
}

// Tick выполняет один вызов затопления
func (s *Simulation) Tick(ctx context.Context) (world.FloodResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "world.flood")
	defer span.End()

	s.mu.Lock()
	if !s.generated {
		s.mu.Unlock()
		return world.FloodResult{}, ErrNotGenerated
	}

	start := time.Now()
	res, err := s.flooder.Flood(s.grid)
	elapsed := time.Since(start)
	if err != nil {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.Errors.Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, fmt.Errorf("тик затопления: %w", err)
	}

	s.tick++
	tick := s.tick
	s.saturated = res.Saturated
	s.last = &res
	var snap *world.Snapshot
	if s.storage != nil && s.snapshotEvery > 0 && tick%s.snapshotEvery == 0 {
		snap = s.snapshotLocked()
	}
	if s.metrics != nil {
		s.metrics.observeFlood(res, elapsed.Seconds())
		s.metrics.observeCounts(s.grid.Counts())
	}
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("flood.tick", int64(tick)),
		attribute.Int("flood.plane", res.Plane),
		attribute.Int("flood.columns", res.Columns),
		attribute.Bool("flood.saturated", res.Saturated),
	)
	s.logger.Debug("🌊 Тик %d: плоскость %d, колонок %d, создано %d, затоплено %d (%v)",
		tick, res.Plane, res.Columns, res.Created, res.Converted, elapsed)

	s.publish(ctx, eventbus.EventSeaLevelRaised, eventbus.SeaLevelRaised{
		Tick:      tick,
		SeaLevel:  res.SeaLevel,
		Plane:     res.Plane,
		Columns:   res.Columns,
		Created:   res.Created,
		Converted: res.Converted,
		Saturated: res.Saturated,
	})
	s.save(snap)
	return res, nil
}

// Run выполняет тики с заданным интервалом, пока не отменён ctx,
// не достигнут лимит тиков или плоскость затопления не вышла за сетку.
func (s *Simulation) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("⏱️ Симуляция запущена: интервал %v, лимит тиков %d", s.interval, s.maxTicks)

	for {
		if s.done() {
			s.logger.Info("⏹️ Симуляция завершена на тике %d", s.Ticks())
			return nil
		}

		select {
		case <-ctx.Done():
			s.logger.Info("⏹️ Симуляция остановлена на тике %d", s.Ticks())
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Simulation) done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.saturated {
		return true
	}
	return s.maxTicks > 0 && s.tick >= s.maxTicks
}

// Ticks возвращает количество выполненных тиков
func (s *Simulation) Ticks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tick
}

// Status возвращает сводку состояния мира
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, h, d := s.grid.Dimensions()
	st := Status{
		Width:     w,
		Height:    h,
		Depth:     d,
		Seed:      s.seed,
		SeaLevel:  s.grid.SeaLevel(),
		Tick:      s.tick,
		Generated: s.generated,
		Saturated: s.saturated,
		Strategy:  s.flooder.Strategy().String(),
		Counts:    make(map[string]int),
	}
	for tile, n := range s.grid.Counts() {
		st.Counts[tile.String()] = n
	}
	if s.last != nil {
		last := *s.last
		st.LastFlood = &last
	}
	return st
}

// Column возвращает профиль колонки снизу вверх; nil означает пустую координату
func (s *Simulation) Column(x, y int) ([]*world.Tile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.ColumnProfile(vec.Vec2{X: x, Y: y})
}

// Snapshot снимает текущее состояние сетки
func (s *Simulation) Snapshot() *world.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Simulation) snapshotLocked() *world.Snapshot {
	return world.TakeSnapshot(s.grid, s.tick)
}

func (s *Simulation) save(snap *world.Snapshot) {
	if snap == nil {
		return
	}
	if err := s.storage.SaveSnapshot(snap); err != nil {
		s.logger.Error("Не удалось сохранить снимок тика %d: %v", snap.Tick, err)
	}
}

func (s *Simulation) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(eventSource, eventType, 5, payload)
	if err != nil {
		s.logger.Warn("Событие %s не сформировано: %v", eventType, err)
		return
	}
	ev.CorrelationID = fmt.Sprintf("%d", s.seed)
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.logger.Warn("Событие %s не опубликовано: %v", eventType, err)
	}
}
