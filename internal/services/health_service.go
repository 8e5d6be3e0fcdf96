package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"edustats/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	query     *QueryService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status            string                 `json:"status"`
	Timestamp         time.Time              `json:"timestamp"`
	Version           string                 `json:"version"`
	Uptime            string                 `json:"uptime,omitempty"`
	Countries         int                    `json:"countries"`
	InsightsAvailable bool                   `json:"insights_available"`
	Runtime           map[string]interface{} `json:"runtime,omitempty"`
}

// NewHealthService creates a health service; query may be nil before the
// table is loaded
func NewHealthService(version string, query *QueryService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		query:     query,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

func (hs *HealthService) base(status string) HealthStatus {
	h := HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
	if hs.query != nil {
		h.Countries = hs.query.Len()
		h.InsightsAvailable = hs.query.InsightsAvailable()
	}
	return h
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := hs.base("ok")
	hs.logger.DebugContext(ctx, "Health check",
		slog.String("status", status.Status),
		slog.Int("countries", status.Countries))
	return status
}

// ReadinessCheck reports whether the clean table is loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) (HealthStatus, bool) {
	if hs.query == nil {
		hs.logger.WarnContext(ctx, "Readiness check failed", slog.String("error", ErrTableNotLoaded.Error()))
		return hs.base("not_ready"), false
	}
	return hs.base("ready"), true
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := hs.base("alive")
	status.Runtime = map[string]interface{}{
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"build":          contracts.GetVersionInfo(),
	}
	return status
}
