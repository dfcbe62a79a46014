package shoprec

import (
	"context"

	healthuc "github.com/kailas-cloud/shoprec/internal/usecase/health"
)

// Component names used as HealthStatus.Checks keys.
const (
	CheckDatabase        = healthuc.CheckDatabase
	CheckCache           = healthuc.CheckCache
	CheckPersonalization = healthuc.CheckPersonalization
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

// Serving reports whether Recommend can return a list. Only an unreachable
// database stops the popular fallback.
func (h HealthStatus) Serving() bool {
	return h.Status != string(healthuc.Unhealthy)
}

// Personalizing reports whether collaborative filtering is currently tried.
// It is false while the snapshot breaker is open; without a breaker it
// follows the database.
func (h HealthStatus) Personalizing() bool {
	if v, ok := h.Checks[CheckPersonalization]; ok {
		return v == string(healthuc.CheckOK)
	}
	return h.Checks[CheckDatabase] == string(healthuc.CheckOK)
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
