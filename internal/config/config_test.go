package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annel0/floodworld/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  width: 10
  height: 12
  depth: 9
  seed: 77
  flood_strategy: sweep
simulation:
  tick_interval_ms: 250
  max_ticks: 5
server:
  rest_port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, WorldConfig{Width: 10, Height: 12, Depth: 9, Seed: 77, FloodStrategy: "sweep"}, cfg.World)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.TickInterval())
	assert.Equal(t, uint64(5), cfg.Simulation.MaxTicks)
	assert.Equal(t, uint64(10), cfg.Simulation.SnapshotEvery, "Не заданные поля берутся из значений по умолчанию")
	assert.Equal(t, 9090, cfg.Server.GetRESTPort())
	assert.Equal(t, "FLOOD", cfg.EventBus.Stream)
}

func TestLoad_RejectsInvalidDimensions(t *testing.T) {
	path := writeConfig(t, `
world:
  width: 8
  height: 8
  depth: 4
`)

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, world.ErrInvalidDimensions, "Глубина 4 - ошибка конфигурации")
}

func TestLoad_RejectsOversizedGrid(t *testing.T) {
	path := writeConfig(t, `
world:
  width: 2147483648
  height: 2147483648
  depth: 8
`)

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, world.ErrInvalidDimensions, "Размеры сверх MaxCells - ошибка конфигурации")
}

func TestLoad_RejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, `
world:
  flood_strategy: bfs
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	path := writeConfig(t, `
world:
  width: 3
  height: 3
  depth: 6
`)
	t.Setenv("FLOOD_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.World.Width)

	t.Setenv("FLOOD_CONFIG", "")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().World, cfg.World)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestServerConfig_PortFallbacks(t *testing.T) {
	var s ServerConfig

	t.Setenv("FLOOD_METRICS_PORT", "")
	assert.Equal(t, 2112, s.GetMetricsPort())

	t.Setenv("FLOOD_METRICS_PORT", "9100")
	assert.Equal(t, 9100, s.GetMetricsPort())

	t.Setenv("FLOOD_METRICS_PORT", "abc")
	assert.Equal(t, 2112, s.GetMetricsPort(), "Некорректное значение env игнорируется")

	s.MetricsPort = 7000
	assert.Equal(t, 7000, s.GetMetricsPort(), "Порт из конфига имеет приоритет")
}

func TestValidate_StorageNeedsPath(t *testing.T) {
	cfg := Default()
	cfg.Storage.Enabled = true
	cfg.Storage.Path = ""
	assert.Error(t, cfg.Validate())
}
