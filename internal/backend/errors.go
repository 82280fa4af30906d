package backend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures for the realtime store.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"  // 404: no data for the given scope
	KindValidation ErrorKind = "validation" // 422: malformed query parameters
	KindServer     ErrorKind = "server"     // 5xx: backend failure
	KindHTTP       ErrorKind = "http"       // other non-2xx status
	KindNetwork    ErrorKind = "network"    // transport failure, incl. timeout
	KindMalformed  ErrorKind = "malformed"  // JSON decode failure or schema mismatch
)

// FetchError is a typed failure from the measurement backend.
// Every failure path of the client produces one; nothing is thrown silently.
type FetchError struct {
	Kind    ErrorKind
	Status  int    // HTTP status when applicable, 0 otherwise
	Message string // short description for logs
	err     error  // wrapped cause
}

func (e *FetchError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error { return e.err }

// UserMessage returns a human-readable message suitable for the dashboard
// error banner. It intentionally omits transport-level detail.
func (e *FetchError) UserMessage() string {
	switch e.Kind {
	case KindNotFound:
		return "no data available for this facade"
	case KindValidation:
		return "invalid request parameters"
	case KindServer:
		return "measurement backend error"
	case KindNetwork:
		return "measurement backend unreachable"
	case KindMalformed:
		return "unexpected response from measurement backend"
	default:
		return fmt.Sprintf("measurement backend returned status %d", e.Status)
	}
}

func NewFetchError(kind ErrorKind, status int, msg string, err error) *FetchError {
	return &FetchError{Kind: kind, Status: status, Message: msg, err: err}
}

// AsFetchError unwraps err into a *FetchError, if it is one.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// kindForStatus maps a non-2xx HTTP status onto the error taxonomy.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == 404:
		return KindNotFound
	case status == 422:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindHTTP
	}
}
