package server

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/events"
)

// StatusMonitor periodically samples system health and emits status events
// for the dashboard stream.
type StatusMonitor struct {
	bus            *events.Bus
	systemHandlers *SystemHandlers
	log            zerolog.Logger
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(bus *events.Bus, systemHandlers *SystemHandlers, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		bus:            bus,
		systemHandlers: systemHandlers,
		log:            log.With().Str("component", "status_monitor").Logger(),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
	m.log.Info().Dur("interval", interval).Msg("Status monitor started")
}

func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.emitStatus()
	for range ticker.C {
		m.emitStatus()
	}
}

func (m *StatusMonitor) emitStatus() {
	cpuPercent, memPercent := m.systemHandlers.getSystemStats()

	m.bus.Emit(events.SystemStatusChanged, "status_monitor", map[string]interface{}{
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
