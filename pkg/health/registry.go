package health

import (
	"context"
	"time"

	"MercadoPagoGateway/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

type entry struct {
	checker  Checker
	critical bool
}

// Registry runs readiness checks. A failing critical dependency takes the
// gateway down; a failing optional one only degrades it.
type Registry struct {
	entries []entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Critical(c Checker) *Registry {
	r.entries = append(r.entries, entry{checker: c, critical: true})
	return r
}

func (r *Registry) Optional(c Checker) *Registry {
	r.entries = append(r.entries, entry{checker: c})
	return r
}

type CheckResult struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Critical  bool   `json:"critical"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type ReadinessResponse struct {
	Status Status        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

// CheckAll runs every check in parallel and keeps registration order in the
// response.
func (r *Registry) CheckAll(ctx context.Context) ReadinessResponse {
	results := make([]CheckResult, len(r.entries))

	var g errgroup.Group
	for i, e := range r.entries {
		g.Go(func() error {
			start := time.Now()
			res := e.checker.Check(ctx)
			elapsed := time.Since(start)

			name := e.checker.Name()
			up := 0.0
			if res.Status == StatusUp {
				up = 1
			}
			metrics.DependencyUp.WithLabelValues(name).Set(up)
			metrics.DependencyCheckDuration.WithLabelValues(name).Observe(elapsed.Seconds())

			results[i] = CheckResult{
				Name:      name,
				Status:    res.Status,
				Critical:  e.critical,
				Message:   res.Message,
				LatencyMs: elapsed.Milliseconds(),
			}
			return nil
		})
	}
	_ = g.Wait()

	overall := StatusUp
	for _, res := range results {
		if res.Status == StatusUp {
			continue
		}
		if res.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}
	return ReadinessResponse{Status: overall, Checks: results}
}
