package services

import "errors"

// ErrorKind classifies why a feature call failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	InvalidInput
	BackendUnavailable
	RequestFailed
	EmptyResponse
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case BackendUnavailable:
		return "backend_unavailable"
	case RequestFailed:
		return "request_failed"
	case EmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// Error is returned by the gateway and HealthService. Message is safe to show
// to the user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func invalidInput(field, message string) *Error {
	return &Error{
		Kind:    InvalidInput,
		Message: "Validation failed",
		Fields:  map[string]string{field: message},
	}
}
