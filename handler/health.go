package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/subdee/icepay/infra/response"
)

const checkTimeout = 5 * time.Second

// HealthChecker is a dependency the service needs to be ready
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	checkers    []HealthChecker
	version     string
	environment string
	startTime   time.Time
}

// HealthStatus represents the liveness of the process
type HealthStatus struct {
	Status      string        `json:"status"`
	Version     string        `json:"version"`
	Timestamp   time.Time     `json:"timestamp"`
	Uptime      string        `json:"uptime"`
	Environment string        `json:"environment"`
	System      *SystemHealth `json:"system"`
}

// SystemHealth represents process resource usage
type SystemHealth struct {
	Alloc      string `json:"alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
	GoRoutines int    `json:"goroutines"`
}

// ReadinessStatus reports every dependency check
type ReadinessStatus struct {
	Status    string                    `json:"status"`
	Timestamp time.Time                 `json:"timestamp"`
	Services  map[string]*ServiceHealth `json:"services"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status       string `json:"status"`
	Healthy      bool   `json:"healthy"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler. Nil checkers are skipped.
func NewHealthHandler(version, environment string, checkers ...HealthChecker) *HealthHandler {
	h := &HealthHandler{
		version:     version,
		environment: environment,
		startTime:   time.Now(),
	}
	for _, c := range checkers {
		if c != nil {
			h.checkers = append(h.checkers, c)
		}
	}
	return h
}

// CheckHealth reports that the process is up
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response.Success(w, http.StatusOK, "Service is healthy", &HealthStatus{
		Status:      "healthy",
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		System: &SystemHealth{
			Alloc:      formatBytes(memStats.Alloc),
			Sys:        formatBytes(memStats.Sys),
			GCRuns:     memStats.NumGC,
			GoRoutines: runtime.NumGoroutine(),
		},
	})
}

// CheckReadiness runs every dependency check concurrently and answers 503 if any fails
func (h *HealthHandler) CheckReadiness(w http.ResponseWriter, r *http.Request) {
	results := make([]*ServiceHealth, len(h.checkers))

	var g errgroup.Group
	for i, c := range h.checkers {
		g.Go(func() error {
			results[i] = runCheck(r.Context(), c)
			return nil
		})
	}
	_ = g.Wait()

	status := &ReadinessStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]*ServiceHealth, len(h.checkers)),
	}
	for i, c := range h.checkers {
		status.Services[c.Name()] = results[i]
		if !results[i].Healthy {
			status.Status = "not_ready"
		}
	}

	if status.Status != "ready" {
		response.WriteJSON(w, http.StatusServiceUnavailable, response.Response{
			Code:    http.StatusServiceUnavailable,
			Success: false,
			Message: "Service is not ready",
			Data:    status,
		})
		return
	}

	response.Success(w, http.StatusOK, "Service is ready", status)
}

func runCheck(ctx context.Context, c HealthChecker) *ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	health := &ServiceHealth{
		Status:       "healthy",
		Healthy:      true,
		ResponseTime: time.Since(start).String(),
	}
	if err != nil {
		health.Status = "unhealthy"
		health.Healthy = false
		health.Error = err.Error()
	}
	return health
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
