package apiclient

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindTransport is a network failure, a non-2xx status other than 401/404, or an undecodable body.
	KindTransport Kind = iota + 1
	// KindRejected is a 2xx response whose envelope has success=false.
	KindRejected
	// KindNotFound is a 404. It is a KindRejected subtype.
	KindNotFound
	// KindUnauthorized is a 401, or a response to a request whose credential was invalidated meanwhile.
	KindUnauthorized
)

var (
	// ErrUnsupported is returned by collection operations the API does not offer for a kind.
	ErrUnsupported = errors.New("operation not supported")

	errMissingFilter = "missing %q filter"
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindNotFound:
		return "not found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Status  int    // HTTP status; 0 when no response was received
	Message string // server message if any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Kind == KindTransport && (e.Status < 200 || e.Status > 299) && e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newStatusError(status int, message string) *Error {
	switch status {
	case http.StatusUnauthorized:
		if message == "" {
			message = "authentication required"
		}
		return &Error{Kind: KindUnauthorized, Status: status, Message: message}
	case http.StatusNotFound:
		if message == "" {
			message = "not found"
		}
		return &Error{Kind: KindNotFound, Status: status, Message: message}
	default:
		if message == "" {
			message = http.StatusText(status)
		}
		return &Error{Kind: KindTransport, Status: status, Message: message}
	}
}

// KindOf returns the Kind of err, or 0 when err is not an API error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

func IsTransport(err error) bool    { return KindOf(err) == KindTransport }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

// IsRejected reports whether the server refused the request, including not found.
func IsRejected(err error) bool {
	k := KindOf(err)
	return k == KindRejected || k == KindNotFound
}

// NotFound lets callers outside this package tell a missing entity apart.
func (e *Error) NotFound() bool { return e.Kind == KindNotFound }
