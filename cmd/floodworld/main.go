package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/floodworld/internal/api"
	"github.com/annel0/floodworld/internal/config"
	"github.com/annel0/floodworld/internal/eventbus"
	"github.com/annel0/floodworld/internal/logging"
	"github.com/annel0/floodworld/internal/observability"
	"github.com/annel0/floodworld/internal/sim"
	"github.com/annel0/floodworld/internal/storage"
	"github.com/annel0/floodworld/internal/util"
	"github.com/annel0/floodworld/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $FLOOD_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// === ЛОГИРОВАНИЕ ===
	if cfg.Logging.FileOutput {
		if err := logging.InitDefaultLogger("floodworld"); err != nil {
			log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
		}
		logging.GetLoggerManager().EnableFileOutput()
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()
	level := logging.ParseLevel(cfg.Logging.Level)
	logging.SetDefaultLevel(level)
	logging.GetLoggerManager().SetConsoleLevel(level)

	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("🌊 Запуск floodworld %dx%dx%d, стратегия %s",
		cfg.World.Width, cfg.World.Height, cfg.World.Depth, cfg.World.FloodStrategy)

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("телеметрия: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("Ошибка остановки телеметрии: %v", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// === ШИНА СОБЫТИЙ ===
	bus, err := newEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := eventbus.StartLoggingListener(bus); err != nil {
		return fmt.Errorf("подписка логгера событий: %w", err)
	}
	busMetrics := eventbus.NewMetricsExporter(bus, registry)
	busMetrics.Start()
	defer busMetrics.Stop()

	// === МИР ===
	strategy, err := world.ParseFloodStrategy(cfg.World.FloodStrategy)
	if err != nil {
		return err
	}

	seed := cfg.World.Seed
	if seed == 0 {
		seed = util.RandomSeed()
	}

	noise := util.NewNoiseField(seed)
	opts := []sim.Option{
		sim.WithEventBus(bus),
		sim.WithMetrics(sim.NewMetrics(registry)),
		sim.WithSeed(noise.Seed()),
	}

	var (
		grid      *world.Grid
		snapshots api.SnapshotStore
	)
	if cfg.Storage.Enabled {
		ws, err := storage.NewWorldStorage(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("хранилище: %w", err)
		}
		defer ws.Close()
		opts = append(opts, sim.WithStorage(ws))
		snapshots = ws

		restored, tick, err := ws.LoadGrid()
		switch {
		case err == nil:
			grid = restored
			opts = append(opts, sim.WithResume(tick))
			w, h, d := grid.Dimensions()
			logging.Info("💾 Мир %dx%dx%d восстановлен из снимка тика %d", w, h, d, tick)
		case errors.Is(err, storage.ErrNoSnapshot):
		default:
			return fmt.Errorf("восстановление мира: %w", err)
		}
	}

	if grid == nil {
		grid, err = world.NewGrid(cfg.World.Width, cfg.World.Height, cfg.World.Depth)
		if err != nil {
			return err
		}
	}

	simulation := sim.New(cfg.Simulation, grid,
		world.NewTerrainGenerator(noise),
		world.NewSeaFlooder(strategy),
		opts...)

	if err := simulation.Generate(ctx); err != nil && !errors.Is(err, sim.ErrAlreadyGenerated) {
		return err
	}

	// === HTTP ===
	restServer := api.NewRestServer(api.Config{
		Port:      fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		World:     simulation,
		Snapshots: snapshots,
		Registry:  registry,
	})
	go func() {
		if err := restServer.Start(); err != nil {
			logging.Error("❌ Ошибка REST API: %v", err)
			stop()
		}
	}()

	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()

	// === СИМУЛЯЦИЯ ===
	runErr := simulation.Run(ctx)
	if runErr == nil && ctx.Err() == nil {
		logging.Info("🏁 Затопление завершено, API остаётся доступным до сигнала остановки")
		<-ctx.Done()
	}

	logging.Info("🛑 Остановка floodworld...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := restServer.Stop(shutdownCtx); err != nil {
		logging.Warn("Ошибка остановки REST API: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Ошибка остановки сервера метрик: %v", err)
	}
	return runErr
}

// newEventBus выбирает JetStream при заданном URL, иначе шину в памяти
func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(cfg.Buffer), nil
	}

	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, cfg.RetentionDuration())
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	logging.Info("📨 События публикуются в JetStream %s (стрим %s)", cfg.URL, cfg.Stream)
	return bus, nil
}
