package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"salesdash/internal/infrastructure"
	"salesdash/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   contracts.VersionInfo
	pages     *PageService
	runtime   *infrastructure.RuntimeMetrics
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service reporting on the page store
func NewHealthService(pages *PageService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	info := contracts.GetVersionInfo()

	logger.Info("HealthService initialized",
		slog.String("version", info.Version),
		slog.String("build_time", info.BuildTime),
		slog.String("git_commit", info.GitCommit))

	return &HealthService{
		version:   info,
		pages:     pages,
		startTime: time.Now(),
		logger:    logger,
	}
}

// WithRuntimeMetrics makes liveness checks report recorded runtime stats
func (hs *HealthService) WithRuntimeMetrics(m *infrastructure.RuntimeMetrics) *HealthService {
	hs.runtime = m
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
	}
}

// ReadinessCheck reports ready once the dashboard page is published
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Services: map[string]interface{}{
			"dashboard": hs.checkPageHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	if hs.runtime != nil {
		return HealthStatus{
			Status:    "alive",
			Timestamp: time.Now(),
			Version:   hs.version.Version,
			Runtime:   hs.runtime.Collect(ctx).Map(),
		}
	}
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version.Version,
		"stage":        hs.version.Stage,
		"data_format":  hs.version.DataFormat,
		"go_version":   hs.version.GoVersion,
		"os":           hs.version.OS,
		"arch":         hs.version.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.version.BuildTime != "" {
		result["build_time"] = hs.version.BuildTime
	}
	if hs.version.GitCommit != "" {
		result["git_commit"] = hs.version.GitCommit
	}
	return result
}

func (hs *HealthService) checkPageHealth() ServiceHealth {
	if hs.pages == nil {
		return ServiceHealth{Status: "not_ready", Message: "page store not initialized"}
	}

	page := hs.pages.Snapshot()
	if page == nil {
		return ServiceHealth{Status: "not_ready", Message: "dashboard page not built"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "dashboard page published",
		Uptime:  time.Since(page.BuiltAt).String(),
	}
}
