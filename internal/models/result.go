// internal/models/result.go
package models

import "fmt"

// Result is the uniform contract every dispatched action returns.
// Data is action-specific: a single entity, a list payload, or a status.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Ok builds a successful result.
func Ok(message string, data interface{}) *Result {
	return &Result{Success: true, Message: message, Data: data}
}

// Fail builds a failed result.
func Fail(message string, err error) *Result {
	r := &Result{Success: false, Message: message}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Failf builds a failed result with a formatted message and no error detail.
func Failf(format string, args ...interface{}) *Result {
	return &Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
