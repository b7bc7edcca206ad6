package qubic

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout matches a NetworkError whose request was aborted by the client
// timeout. Caller cancellation is not a timeout.
var ErrTimeout = errors.New("request timed out")

// NetworkError is returned for non-2xx responses and transport failures.
type NetworkError struct {
	Op      string
	URL     string
	Status  int
	Aborted bool
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Aborted:
		return fmt.Sprintf("%s %s: aborted: %v", e.Op, e.URL, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.Status)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrTimeout && e.Aborted
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
