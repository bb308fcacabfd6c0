package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Class   string `json:"class,omitempty"`
	Details any    `json:"details,omitempty"`
}
