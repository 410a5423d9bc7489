package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/floodworld/internal/logging"
	"github.com/annel0/floodworld/internal/middleware"
	"github.com/annel0/floodworld/internal/sim"
	"github.com/annel0/floodworld/internal/storage"
	"github.com/annel0/floodworld/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// WorldService - операции симуляции, доступные через REST
type WorldService interface {
	Status() sim.Status
	Column(x, y int) ([]*world.Tile, error)
	Tick(ctx context.Context) (world.FloodResult, error)
}

// SnapshotStore - сохранённые снимки мира
type SnapshotStore interface {
	ListTicks() ([]uint64, error)
	LoadSnapshot(tick uint64) (*world.Snapshot, error)
}

// RestServer представляет REST API сервер
type RestServer struct {
	router    *gin.Engine
	server    *http.Server
	world     WorldService
	snapshots SnapshotStore
	port      string
	metrics   *ServerMetrics
	logger    *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port      string               // порт для запуска сервера
	World     WorldService         // симуляция мира
	Snapshots SnapshotStore        // хранилище снимков; nil - хранилище отключено
	Registry  *prometheus.Registry // регистр метрик; nil - новый
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SnapshotSummary - заголовок снимка и количество вокселей по видам
type SnapshotSummary struct {
	Tick     uint64         `json:"tick"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Depth    int            `json:"depth"`
	SeaLevel int            `json:"sea_level"`
	Counts   map[string]int `json:"counts"`
}

// ColumnResponse - содержимое колонки снизу вверх; null означает пустую координату
type ColumnResponse struct {
	X     int       `json:"x"`
	Y     int       `json:"y"`
	Cells []*string `json:"cells"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	otelRouter := otelgin.Middleware("rest_api")
	router.Use(otelRouter)

	promMw := middleware.NewPrometheusMiddleware("rest_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	server := &RestServer{
		router:    router,
		world:     config.World,
		snapshots: config.Snapshots,
		port:      config.Port,
		metrics:   NewServerMetrics(),
		logger:    logging.GetAPILogger(),
	}
	server.server = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Группа API
	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)

		w := api.Group("/world")
		w.GET("", rs.handleWorldStatus)
		w.GET("/columns/:x/:y", rs.handleColumn)
		w.POST("/flood", rs.handleFlood)
		w.GET("/snapshots", rs.handleListSnapshots)
		w.GET("/snapshots/:tick", rs.handleSnapshot)
	}

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// handleWorldStatus возвращает сводку состояния мира
func (rs *RestServer) handleWorldStatus(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние мира",
		Data:    rs.world.Status(),
	})
}

// handleColumn возвращает профиль колонки (x,y)
func (rs *RestServer) handleColumn(c *gin.Context) {
	x, errX := strconv.Atoi(c.Param("x"))
	y, errY := strconv.Atoi(c.Param("y"))
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Координаты колонки должны быть целыми числами",
		})
		return
	}

	profile, err := rs.world.Column(x, y)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, world.ErrOutOfBounds) {
			status = http.StatusNotFound
		}
		c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	resp := ColumnResponse{X: x, Y: y, Cells: make([]*string, len(profile))}
	for z, tile := range profile {
		if tile == nil {
			continue
		}
		name := tile.String()
		resp.Cells[z] = &name
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Колонка (%d,%d)", x, y),
		Data:    resp,
	})
}

// handleFlood выполняет один тик затопления вне расписания
func (rs *RestServer) handleFlood(c *gin.Context) {
	res, err := rs.world.Tick(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sim.ErrNotGenerated) {
			status = http.StatusConflict
		}
		rs.logger.Warn("Ручной тик затопления отклонён: %v", err)
		c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Уровень моря поднят до %d", res.SeaLevel),
		Data:    res,
	})
}

// handleListSnapshots возвращает номера тиков сохранённых снимков
func (rs *RestServer) handleListSnapshots(c *gin.Context) {
	if rs.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "Хранилище снимков отключено"})
		return
	}

	ticks, err := rs.snapshots.ListTicks()
	if err != nil {
		rs.logger.Error("Ошибка чтения списка снимков: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Снимков: %d", len(ticks)),
		Data:    ticks,
	})
}

// handleSnapshot возвращает сводку снимка указанного тика
func (rs *RestServer) handleSnapshot(c *gin.Context) {
	if rs.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "Хранилище снимков отключено"})
		return
	}

	tick, err := strconv.ParseUint(c.Param("tick"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Номер тика должен быть неотрицательным целым"})
		return
	}

	snap, err := rs.snapshots.LoadSnapshot(tick)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrNoSnapshot) {
			status = http.StatusNotFound
		}
		c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	summary := SnapshotSummary{
		Tick:     snap.Tick,
		Width:    snap.Width,
		Height:   snap.Height,
		Depth:    snap.Depth,
		SeaLevel: snap.SeaLevel,
		Counts:   make(map[string]int),
	}
	for tile, n := range snap.Counts() {
		summary.Counts[tile.String()] = n
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Снимок тика %d", tick),
		Data:    summary,
	})
}

// handleServerInfo возвращает информацию о процессе
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    rs.metrics.Collect(),
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.logger.Info("🌐 REST API слушает %s", rs.port)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает REST сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}
