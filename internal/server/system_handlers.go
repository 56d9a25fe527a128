package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/rosehill/paddock/internal/database"
)

// SystemHandlers serves system monitoring endpoints
type SystemHandlers struct {
	log      zerolog.Logger
	dataDir  string
	stableDB *database.DB
	ledgerDB *database.DB
	started  time.Time
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, stableDB, ledgerDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:      log.With().Str("handler", "system").Logger(),
		dataDir:  dataDir,
		stableDB: stableDB,
		ledgerDB: ledgerDB,
		started:  time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	databases := map[string]interface{}{}
	for _, db := range []*database.DB{h.stableDB, h.ledgerDB} {
		if db == nil {
			continue
		}
		status := "healthy"
		if err := db.Conn().Ping(); err != nil {
			status = "unreachable"
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Database ping failed")
		}
		databases[db.Name()] = map[string]interface{}{
			"status":  status,
			"profile": string(db.Profile()),
		}
	}

	h.writeJSON(w, map[string]interface{}{
		"data": map[string]interface{}{
			"cpu_percent":    cpuPercent,
			"memory_percent": memPercent,
			"goroutines":     runtime.NumGoroutine(),
			"data_dir_mb":    h.getDirSize(h.dataDir),
			"uptime_seconds": int(time.Since(h.started).Seconds()),
			"databases":      databases,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// getSystemStats returns CPU and RAM usage percentages. The 100ms sampling
// window keeps the endpoint responsive for dashboard polling.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
