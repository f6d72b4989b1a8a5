package resilience

import (
	"context"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusDegraded  HealthStatus = "DEGRADED"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"
)

// ComponentHealth is the result of one check.
type ComponentHealth struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	LatencyMs int64        `json:"latency_ms"`
}

// Report aggregates component results. Status is the worst of them.
type Report struct {
	Status     HealthStatus      `json:"status"`
	Uptime     string            `json:"uptime"`
	CheckedAt  time.Time         `json:"checked_at"`
	Components []ComponentHealth `json:"components"`
}

// Healthy reports whether no component is unhealthy.
func (r Report) Healthy() bool {
	return r.Status != HealthStatusUnhealthy
}

// HealthCheck inspects one component.
type HealthCheck func(ctx context.Context) ComponentHealth

// Checker runs registered checks on demand.
type Checker struct {
	mu        sync.RWMutex
	checks    map[string]HealthCheck
	startTime time.Time
	timeout   time.Duration
}

// NewChecker creates a checker whose checks each get timeout to finish.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		checks:    make(map[string]HealthCheck),
		startTime: time.Now(),
		timeout:   timeout,
	}
}

// Register adds or replaces the check for name.
func (c *Checker) Register(name string, check HealthCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs every registered check and returns the aggregate report.
// Components are ordered by name.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheck, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	report := Report{
		Status:     HealthStatusHealthy,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
		CheckedAt:  time.Now().UTC(),
		Components: make([]ComponentHealth, 0, len(names)),
	}
	for _, name := range names {
		h := c.run(ctx, name, checks[name])
		report.Components = append(report.Components, h)
		report.Status = worse(report.Status, h.Status)
	}
	return report
}

func (c *Checker) run(ctx context.Context, name string, check HealthCheck) (h ComponentHealth) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			h = ComponentHealth{Name: name, Status: HealthStatusUnhealthy, Message: "check panicked"}
		}
	}()
	h = check(ctx)
	h.Name = name
	return h
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{HealthStatusHealthy: 0, HealthStatusDegraded: 1, HealthStatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// PingCheck reports a component healthy when ping succeeds.
func PingCheck(ping func(ctx context.Context) error) HealthCheck {
	return func(ctx context.Context) ComponentHealth {
		start := time.Now()
		err := ping(ctx)
		h := ComponentHealth{Status: HealthStatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			h.Status = HealthStatusUnhealthy
			h.Message = err.Error()
		}
		return h
	}
}

// BreakerCheck reports an open circuit as degraded.
func BreakerCheck(b *Breaker) HealthCheck {
	return func(context.Context) ComponentHealth {
		switch state := b.State(); state {
		case CircuitOpen:
			return ComponentHealth{Status: HealthStatusDegraded, Message: "circuit open"}
		case CircuitHalfOpen:
			return ComponentHealth{Status: HealthStatusDegraded, Message: "circuit half-open"}
		}
		return ComponentHealth{Status: HealthStatusHealthy}
	}
}
