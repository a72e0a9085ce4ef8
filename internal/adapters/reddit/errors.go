package reddit

import "errors"

var (
	// ErrStatus reports a non-success HTTP status.
	ErrStatus = errors.New("unexpected response status")
	// ErrUnauthenticated reports a request made before Authenticate.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrMalformedResponse reports a body that does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError carries the HTTP status of a failed request.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return ErrStatus.Error() + ": " + e.Body
}

func (e *StatusError) Unwrap() error { return ErrStatus }
