package jenkins

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// ErrInvalidDescriptor is returned when a descriptor lacks the name or build
// number its kind needs.
var ErrInvalidDescriptor = errors.New("invalid resource descriptor")

// TransportError is a failed round trip to the controller: a network error,
// or a response outside the 2xx range.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Body       string // truncated response body
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a transport 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by a TransportError in err's
// chain, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// UnsupportedOperationError is returned when a kind has no route for the
// requested operation, such as deleting a build or creating a user.
type UnsupportedOperationError struct {
	Kind models.Kind
	Op   string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: operation %q not supported", e.Kind, e.Op)
}
