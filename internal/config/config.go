package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/floodworld/internal/world"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Simulation SimulationConfig `yaml:"simulation"`
	Storage    StorageConfig    `yaml:"storage"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Server     ServerConfig     `yaml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WorldConfig задаёт размеры сетки и параметры генерации.
// Seed = 0 означает случайный сид на каждый запуск.
type WorldConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Depth         int    `yaml:"depth"`
	Seed          int64  `yaml:"seed"`
	FloodStrategy string `yaml:"flood_strategy"`
}

type SimulationConfig struct {
	TickIntervalMs int    `yaml:"tick_interval_ms"`
	MaxTicks       uint64 `yaml:"max_ticks"`      // 0 - до насыщения сетки
	SnapshotEvery  uint64 `yaml:"snapshot_every"` // 0 - без снимков
}

type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто - шина в памяти
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	FileOutput bool   `yaml:"file_output"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:         64,
			Height:        64,
			Depth:         32,
			FloodStrategy: "queue",
		},
		Simulation: SimulationConfig{
			TickIntervalMs: 1000,
			SnapshotEvery:  10,
		},
		Storage: StorageConfig{
			Path: "data",
		},
		EventBus: EventBusConfig{
			Stream:    "FLOOD",
			Retention: 24,
			Buffer:    256,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "floodworld",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// Validate проверяет конфигурацию до запуска генерации
func (c *Config) Validate() error {
	if err := world.ValidateDimensions(c.World.Width, c.World.Height, c.World.Depth); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if _, err := world.ParseFloodStrategy(c.World.FloodStrategy); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if c.Simulation.TickIntervalMs < 0 {
		return fmt.Errorf("simulation: отрицательный tick_interval_ms %d", c.Simulation.TickIntervalMs)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("storage: не задан path")
	}
	return nil
}

// TickInterval возвращает интервал между тиками затопления
func (s *SimulationConfig) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMs) * time.Millisecond
}

// RetentionDuration возвращает срок хранения событий в стриме
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "FLOOD_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "FLOOD_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV FLOOD_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FLOOD_CONFIG")
		if path == "" {
			return cfg, cfg.Validate()
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
