package types

// ErrorResponse is the JSON body written for every failed request.
// Error carries the human-readable message clients display directly.
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
