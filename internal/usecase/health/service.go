package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. The service still answers
	// searches in degraded mode (deterministic ordering without ranking).
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	catalog CatalogChecker
	ranking RankingChecker
}

// New creates a Service. ranking can be nil.
func New(catalog CatalogChecker, ranking RankingChecker) *Service {
	return &Service{catalog: catalog, ranking: ranking}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if _, err := s.catalog.Snapshot(ctx); err != nil {
		checks["catalog"] = CheckError
	} else {
		checks["catalog"] = CheckOK
	}

	if s.ranking != nil {
		if err := s.ranking.HealthCheck(ctx); err != nil {
			checks["ranking"] = CheckError
		} else {
			checks["ranking"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
