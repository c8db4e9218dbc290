package service

import (
	"errors"
	"fmt"
	"net/http"

	"hose_installation/internal/repository"
)

// ErrInvalidInput marks a request the caller must correct.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StoreError is a failed data fetch surfaced to the caller with the status
// code it should be reported under.
type StoreError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	code := http.StatusInternalServerError
	if errors.Is(err, repository.ErrNotFound) {
		code = http.StatusNotFound
	}
	return &StoreError{Op: op, StatusCode: code, Err: err}
}
