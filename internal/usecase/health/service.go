package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates recommendations are served, possibly without
	// personalization or caching.
	Degraded Status = "degraded"
	// Unhealthy indicates the storefront database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names reported in Report.Checks.
const (
	CheckDatabase        = "database"
	CheckCache           = "cache"
	CheckPersonalization = "personalization"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      Pinger
	cache   Pinger
	breaker BreakerStater
}

// New creates a Service. cache and breaker can be nil.
func New(db Pinger, cache Pinger, breaker BreakerStater) *Service {
	return &Service{db: db, cache: cache, breaker: breaker}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	dbOK := s.db.Ping(ctx) == nil
	checks[CheckDatabase] = result(dbOK)

	if s.cache != nil {
		checks[CheckCache] = result(s.cache.Ping(ctx) == nil)
	}

	if s.breaker != nil {
		checks[CheckPersonalization] = result(s.breaker.State() != "open")
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if !dbOK {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}
