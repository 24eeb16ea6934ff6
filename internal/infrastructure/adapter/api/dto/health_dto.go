package dto

// HealthResponse reports liveness and store state
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Pool     any    `json:"pool,omitempty"`
}
