package observability

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus is the state of one component or of the whole service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

var statusByRank = [...]HealthStatus{HealthStatusUp, HealthStatusDegraded, HealthStatusDown}

// rank orders statuses from best to worst. Unknown values count as down.
func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusUp:
		return 0
	case HealthStatusDegraded:
		return 1
	default:
		return 2
	}
}

// Health is the state of one component, such as the workspace store or
// the loaded catalog.
type Health struct {
	Name    string            `json:"name" yaml:"name"`
	Status  HealthStatus      `json:"status" yaml:"status"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// ServiceHealth aggregates component health. The worst component wins.
type ServiceHealth struct {
	Service    string       `json:"service" yaml:"service"`
	Status     HealthStatus `json:"status" yaml:"status"`
	Version    string       `json:"version,omitempty" yaml:"version,omitempty"`
	CheckedAt  time.Time    `json:"checked_at" yaml:"checked_at"`
	Components []Health     `json:"components,omitempty" yaml:"components,omitempty"`
}

// HealthChecker reports the health of one component.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) Health

func (f HealthCheckFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// PingHealth turns the outcome of a store ping into a component result.
// A failed ping marks the component down.
func PingHealth(name string, latency time.Duration, err error) Health {
	h := Health{
		Name:    name,
		Status:  HealthStatusUp,
		Details: map[string]string{"latency": latency.String()},
	}
	if err != nil {
		h.Status = HealthStatusDown
		h.Message = fmt.Sprintf("ping failed: %v", err)
	}
	return h
}

// NewServiceHealth starts an aggregate that is up until a component says
// otherwise.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service:   service,
		Status:    HealthStatusUp,
		Version:   version,
		CheckedAt: time.Now().UTC(),
	}
}

// AddComponent records ch and lowers the overall status when ch is worse.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)
	if r := ch.Status.rank(); r > sh.Status.rank() {
		sh.Status = statusByRank[r]
	}
}

// Component returns the result recorded under name.
func (sh *ServiceHealth) Component(name string) (Health, bool) {
	for _, c := range sh.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Health{}, false
}
