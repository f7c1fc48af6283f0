package monitorapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Sentinel error kinds for this package.
var (
	// ErrTransport covers failures where no usable response arrived.
	ErrTransport = errors.New("monitor api unreachable")
	// ErrDecode marks a 2xx response whose body was not the expected JSON.
	ErrDecode = errors.New("malformed monitor api response")
	// ErrAPI marks a non-2xx response.
	ErrAPI = errors.New("monitor api error")
	// ErrNotFound marks a 404 response.
	ErrNotFound = errors.New("not found")
	// ErrInvalidBaseURL is returned by New.
	ErrInvalidBaseURL = errors.New("invalid monitor api base url")
)

// DefaultUserMessage is shown when neither the server nor the status line
// has anything to say.
const DefaultUserMessage = "could not reach the server"

// TransportError is returned when the request failed or the body could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Op         string
	Status     int
	StatusText string
	// Message is the server's {"error": ...} text, if the body had one.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Status, e.StatusText, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.StatusText)
}

// Is matches ErrAPI, and ErrNotFound for a 404.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAPI:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	default:
		return false
	}
}

// ServerMessage returns what the server said about err: its error text, else
// the HTTP status text. ok is false for anything that is not an APIError.
func ServerMessage(err error) (msg string, ok bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}
	if apiErr.Message != "" {
		return apiErr.Message, true
	}
	if apiErr.StatusText != "" {
		return apiErr.StatusText, true
	}
	return "HTTP " + strconv.Itoa(apiErr.Status), true
}

// UserMessage is ServerMessage with DefaultUserMessage as the fallback.
func UserMessage(err error) string {
	if msg, ok := ServerMessage(err); ok {
		return msg
	}
	return DefaultUserMessage
}

// ErrorType classifies err for metrics: transport, decode, not_found, api or unknown.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAPI):
		return "api"
	default:
		return "unknown"
	}
}
