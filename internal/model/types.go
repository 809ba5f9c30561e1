package model

import (
	"math"
	"time"
)

// Status classifies a single probe outcome, or the platform as a whole.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusTimeout   Status = "timeout"
	StatusUnknown   Status = "unknown"
)

// Degraded reports whether the status should be treated as a service
// problem. Everything short of healthy counts.
func (s Status) Degraded() bool { return s != StatusHealthy }

// ServiceHealth is the result of one probe against one service. It is
// constructed fresh on every probe and never mutated afterwards; the next
// probe supersedes it wholesale.
type ServiceHealth struct {
	Status         Status    `json:"status"`
	ResponseTimeMs *float64  `json:"response_time_ms"`
	LastCheck      time.Time `json:"last_check"`
	Critical       bool      `json:"critical"`
	Error          *string   `json:"error"`
	Uptime         string    `json:"uptime,omitempty"`
	Version        string    `json:"version,omitempty"`
	Environment    string    `json:"environment,omitempty"`
}

// Summary holds the derived platform-wide counters and rates.
type Summary struct {
	TotalServices           int     `json:"total_services"`
	HealthyServices         int     `json:"healthy_services"`
	UnhealthyServices       int     `json:"unhealthy_services"`
	CriticalServices        int     `json:"critical_services"`
	HealthyCriticalServices int     `json:"healthy_critical_services"`
	SuccessRate             float64 `json:"success_rate"`
	CriticalSuccessRate     float64 `json:"critical_success_rate"`
	OverallStatus           Status  `json:"overall_status"`
}

// PlatformSnapshot is one immutable, fully computed view of platform health.
// Once published it is shared by reference across callers; nobody writes to it.
type PlatformSnapshot struct {
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services"`
	Summary   Summary                  `json:"summary"`
}

// ComputeSummary derives counters, rates and the overall status from a
// services map. The overall status is healthy exactly when the critical
// success rate is 100; otherwise it is degraded when at least half the
// services are healthy and unhealthy below that.
//
// A registry with zero critical services reports a critical success rate of
// 100 by convention. This is a documented convention, not an inferred
// business rule.
func ComputeSummary(services map[string]ServiceHealth) Summary {
	s := Summary{TotalServices: len(services)}
	for _, h := range services {
		if h.Status == StatusHealthy {
			s.HealthyServices++
		} else {
			s.UnhealthyServices++
		}
		if h.Critical {
			s.CriticalServices++
			if h.Status == StatusHealthy {
				s.HealthyCriticalServices++
			}
		}
	}

	if s.TotalServices > 0 {
		s.SuccessRate = round2(float64(s.HealthyServices) / float64(s.TotalServices) * 100)
	}
	if s.CriticalServices > 0 {
		s.CriticalSuccessRate = round2(float64(s.HealthyCriticalServices) / float64(s.CriticalServices) * 100)
	} else {
		s.CriticalSuccessRate = 100
	}

	switch {
	case s.CriticalSuccessRate == 100:
		s.OverallStatus = StatusHealthy
	case s.SuccessRate >= 50:
		s.OverallStatus = StatusDegraded
	default:
		s.OverallStatus = StatusUnhealthy
	}
	return s
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
