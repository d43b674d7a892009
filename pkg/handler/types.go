package handler

// Request is the inbound invocation envelope.
type Request struct {
	Message   string                 `json:"message"`
	SessionID string                 `json:"sessionId,omitempty"`
	UserID    string                 `json:"userId,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Response is the outbound envelope. Body is a SuccessBody or an
// ErrorBody depending on StatusCode.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Body       interface{} `json:"body"`
}

// SuccessBody is the 200 response body. SessionID echoes the caller's
// value and is null when the caller omitted it.
type SuccessBody struct {
	Response  string            `json:"response"`
	SessionID *string           `json:"sessionId"`
	Metrics   InvocationMetrics `json:"metrics"`
}

// ErrorBody is the 4xx/5xx response body.
type ErrorBody struct {
	Error string `json:"error"`
}

// InvocationMetrics reports token usage and latency for one
// invocation. Fields the delegated result omitted are zero.
type InvocationMetrics struct {
	InputTokens  int   `json:"inputTokens"`
	OutputTokens int   `json:"outputTokens"`
	LatencyMs    int64 `json:"latencyMs"`
}
