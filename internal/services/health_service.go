package services

import (
	"context"
	"runtime"
	"time"
)

// ReportSource exposes what the health check needs from the report service
type ReportSource interface {
	Latest() (*Snapshot, error)
	LastError() error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	reports   ReportSource
	startTime time.Time
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
}

// NewHealthService creates a new health service
func NewHealthService(version string, reports ReportSource) *HealthService {
	return &HealthService{
		version:   version,
		reports:   reports,
		startTime: time.Now(),
	}
}

// HealthCheck reports "healthy" once a report exists, "degraded" when the
// last refresh failed and "starting" before the first run finished
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	report := ServiceHealth{Status: "healthy"}
	status := "healthy"

	snapshot, err := s.reports.Latest()
	switch {
	case err != nil && s.reports.LastError() != nil:
		status = "degraded"
		report = ServiceHealth{Status: "unhealthy", Message: s.reports.LastError().Error()}
	case err != nil:
		status = "starting"
		report = ServiceHealth{Status: "pending", Message: err.Error()}
	case s.reports.LastError() != nil:
		status = "degraded"
		report = ServiceHealth{Status: "stale", Message: s.reports.LastError().Error()}
	default:
		report.Message = "run " + snapshot.RunID
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(s.startTime).Seconds(),
			"goroutines":     runtime.NumGoroutine(),
			"go_version":     runtime.Version(),
		},
		Services: map[string]interface{}{
			"report": report,
		},
	}
}
