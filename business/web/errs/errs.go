// Package errs provides the error types the ledger service hands back to
// clients and the mapping of ledger errors onto them.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// Ledger maps the expected errors of the ledger onto trusted errors with
// the matching status code. Any other error is returned unchanged.
func Ledger(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, database.ErrImmutableBlock):
		return NewTrusted(err, http.StatusConflict)

	case errors.Is(err, state.ErrChainChanged):
		return NewTrusted(err, http.StatusConflict)

	case errors.Is(err, database.ErrBlockNotFound),
		errors.Is(err, database.ErrTxNotFound):
		return NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, state.ErrInsufficientBalance),
		errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, database.ErrAmountFormat),
		errors.Is(err, database.ErrInvalidAccount),
		errors.Is(err, database.ErrInvalidDifficulty),
		errors.Is(err, state.ErrNoMinerSelected),
		errors.Is(err, state.ErrNoTransactions):
		return NewTrusted(err, http.StatusBadRequest)
	}

	return err
}
