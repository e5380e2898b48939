package types

type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

type HealthComponent struct {
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// HealthCheck is the body of GET /health and the readiness probe.
// Uptime is in seconds.
type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Uptime     float64                    `json:"uptime"`
	Version    string                     `json:"version"`
	Components map[string]HealthComponent `json:"components,omitempty"`
}
