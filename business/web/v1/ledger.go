package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// LedgerError converts an error returned by the ledger into a request error
// with the matching status code. Errors the ledger does not define are
// returned unchanged and end up as a 500.
func LedgerError(err error) error {
	switch {
	case errors.Is(err, state.ErrMalformedInput),
		errors.Is(err, database.ErrInvalidAmount):
		return NewRequestError(err, http.StatusBadRequest)

	case errors.Is(err, state.ErrUnknownWallet):
		return NewRequestError(err, http.StatusNotFound)

	case errors.Is(err, state.ErrInsufficientFunds):
		return NewRequestError(err, http.StatusBadRequest)

	case errors.Is(err, state.ErrNotFound):
		return NewRequestError(err, http.StatusNotFound)

	case errors.Is(err, state.ErrStaleTip):
		return NewRequestError(err, http.StatusConflict)

	case errors.Is(err, context.DeadlineExceeded):
		return NewRequestError(err, http.StatusServiceUnavailable)
	}

	return err
}
