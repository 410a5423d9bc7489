package sim

import (
	"github.com/annel0/floodworld/internal/world"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics содержит Prometheus-метрики симуляции затопления
type Metrics struct {
	Ticks        prometheus.Counter
	Errors       prometheus.Counter
	Created      prometheus.Counter
	Converted    prometheus.Counter
	Columns      prometheus.Gauge
	SeaLevel     prometheus.Gauge
	Voxels       *prometheus.GaugeVec
	TickDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodworld",
			Name:      "flood_ticks_total",
			Help:      "Количество выполненных тиков затопления.",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodworld",
			Name:      "flood_errors_total",
			Help:      "Тики, завершившиеся ошибкой хранилища.",
		}),
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodworld",
			Name:      "water_voxels_created_total",
			Help:      "Новых вокселей воды, созданных затоплением.",
		}),
		Converted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodworld",
			Name:      "voxels_flooded_total",
			Help:      "Существующих вокселей, превращённых в воду.",
		}),
		Columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodworld",
			Name:      "flooded_columns",
			Help:      "Колонок, затопленных последним тиком.",
		}),
		SeaLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodworld",
			Name:      "sea_level",
			Help:      "Текущий уровень моря.",
		}),
		Voxels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "floodworld",
			Name:      "voxels",
			Help:      "Количество вокселей по типу тайла.",
		}, []string{"tile"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodworld",
			Name:      "flood_tick_duration_seconds",
			Help:      "Длительность одного тика затопления.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	reg.MustRegister(m.Ticks, m.Errors, m.Created, m.Converted, m.Columns, m.SeaLevel, m.Voxels, m.TickDuration)
	return m
}

// observeCounts обновляет gauge вокселей по типам тайлов
func (m *Metrics) observeCounts(counts map[world.Tile]int) {
	for _, tile := range []world.Tile{world.TileTerrain, world.TileWater, world.TileTrees} {
		m.Voxels.WithLabelValues(tile.String()).Set(float64(counts[tile]))
	}
}

// observeFlood учитывает результат тика
func (m *Metrics) observeFlood(res world.FloodResult, seconds float64) {
	m.Ticks.Inc()
	m.Created.Add(float64(res.Created))
	m.Converted.Add(float64(res.Converted))
	m.Columns.Set(float64(res.Columns))
	m.SeaLevel.Set(float64(res.SeaLevel))
	m.TickDuration.Observe(seconds)
}
