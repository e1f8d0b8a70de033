// internal/gateway/models.go
package gateway

// ChatRequest is the body of POST /chat. Temperature optionally overrides the
// configured sampling temperature for this exchange only.
type ChatRequest struct {
	Message     string   `json:"message"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ChatResponse is the body of every /chat reply. Failures are masked into a
// conversational fallback, so the status is always 200.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// StatusResponse is the liveness payload for GET / and GET /healthz.
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}
