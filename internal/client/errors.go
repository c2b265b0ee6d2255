package client

import "fmt"

// NetworkError covers connection refused, timeouts, and DNS failures: anything
// that prevented a response from arriving.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-200 response from the aquaponics server.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned: %d", e.StatusCode)
}

// ParseError is a malformed or incomplete body for a full reading.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Msg
}
