package models

import "time"

// ErrorBody is the error half of the transport envelope.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Response is the uniform transport envelope returned by every endpoint.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data"`
	Error     *ErrorBody `json:"error"`
	Timestamp int64      `json:"timestamp"`
}

// OK wraps data in a successful envelope.
func OK(data any) Response {
	return Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Fail wraps an error body in a failed envelope.
func Fail(code, message string, meta map[string]any) Response {
	return Response{
		Success:   false,
		Error:     &ErrorBody{Code: code, Message: message, Meta: meta},
		Timestamp: time.Now().UnixMilli(),
	}
}
