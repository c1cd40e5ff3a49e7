package notecard

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Request is a single JSON request object. Requests created with NewRequest
// carry a "req" key and expect a response; commands carry "cmd" and do not.
type Request map[string]any

// Name returns the request or command name.
func (r Request) Name() string {
	if name, ok := r["req"].(string); ok {
		return name
	}
	name, _ := r["cmd"].(string)
	return name
}

// IsCommand reports whether the request is fire-and-forget.
func (r Request) IsCommand() bool {
	_, ok := r["cmd"]
	return ok
}

// SetString attaches a string field.
func (r Request) SetString(key, value string) Request {
	r[key] = value
	return r
}

// SetBool attaches a boolean field.
func (r Request) SetBool(key string, value bool) Request {
	r[key] = value
	return r
}

// Response is a decoded JSON response object. Missing or mistyped fields read
// as their zero value.
type Response map[string]any

// String returns a string field.
func (r Response) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns an integer field. Fractional numbers are truncated.
func (r Response) Int(key string) int64 {
	switch v := r[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return 0
}

// Err returns the device's error message, or "" for a successful response.
func (r Response) Err() string {
	return r.String("err")
}

// AsError converts an error response to request into a *ResponseError, or
// returns nil.
func (r Response) AsError(request string) error {
	if msg := r.Err(); msg != "" {
		return &ResponseError{Request: request, Message: msg}
	}
	return nil
}

// ResponseError is an explicit error reported by the companion device.
type ResponseError struct {
	Request string
	Message string
}

func (e *ResponseError) Error() string {
	if e.Request == "" {
		return fmt.Sprintf("device error: %s", e.Message)
	}
	return fmt.Sprintf("device error on %s: %s", e.Request, e.Message)
}
