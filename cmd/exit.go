package cmd

import (
	"errors"

	"github.com/bnema/poolrdp/internal/domain"
)

// StatusError carries a non-success connection status out of a command so
// the process can exit with it.
type StatusError struct {
	Code domain.StatusCode
}

func (e *StatusError) Error() string {
	return e.Code.Message()
}

func statusErr(code domain.StatusCode) error {
	if code == domain.StatusSuccess {
		return nil
	}

	return &StatusError{Code: code}
}

// ExitCode maps a command error to a process exit code. A connection status
// exits with its own code; any other failure exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var se *StatusError
	if errors.As(err, &se) {
		return int(se.Code)
	}

	return 1
}
