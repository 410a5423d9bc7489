package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerInfo - сводка о процессе для /api/server
type ServerInfo struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Uptime     string  `json:"uptime"`
	MemoryMB   float64 `json:"memory_mb"`
	RSSMB      float64 `json:"rss_mb,omitempty"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	NumGC      uint32  `json:"num_gc"`
	ServerTime int64   `json:"server_time"`
}

// ServerMetrics содержит метрики сервера
type ServerMetrics struct {
	StartTime time.Time
	proc      *process.Process
}

// NewServerMetrics создает новый экземпляр метрик
func NewServerMetrics() *ServerMetrics {
	sm := &ServerMetrics{
		StartTime: time.Now(),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		sm.proc = proc
	}
	return sm
}

// GetUptime возвращает время работы сервера
func (sm *ServerMetrics) GetUptime() string {
	uptime := time.Since(sm.StartTime)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}

// GetCPUUsage возвращает использование CPU процессом в процентах
func (sm *ServerMetrics) GetCPUUsage() (float64, error) {
	if sm.proc != nil {
		if cpuPercent, err := sm.proc.CPUPercent(); err == nil {
			return cpuPercent, nil
		}
	}

	// Если не удалось получить метрику процесса, попробуем системную
	cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, err
	}
	if len(cpuPercents) == 0 {
		return 0, fmt.Errorf("cpu: нет данных")
	}
	return cpuPercents[0], nil
}

// GetRSS возвращает резидентную память процесса в MB
func (sm *ServerMetrics) GetRSS() (float64, error) {
	if sm.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	mem, err := sm.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(mem.RSS) / 1024 / 1024, nil
}

// Collect собирает сводку о процессе; недоступные метрики остаются нулевыми
func (sm *ServerMetrics) Collect() ServerInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	info := ServerInfo{
		Name:       "floodworld",
		Status:     "running",
		Uptime:     sm.GetUptime(),
		MemoryMB:   float64(m.Alloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
		ServerTime: time.Now().Unix(),
	}
	if cpuPercent, err := sm.GetCPUUsage(); err == nil {
		info.CPUPercent = cpuPercent
	}
	if rss, err := sm.GetRSS(); err == nil {
		info.RSSMB = rss
	}
	return info
}
