// Package llm provides the wire representations of OpenAI-style chat completion
// requests and responses exchanged with the upstream completion service.
package llm

// ErrorResponse is the error body returned by this service's HTTP endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpstreamError is the error envelope returned by OpenAI-compatible APIs.
type UpstreamError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}
