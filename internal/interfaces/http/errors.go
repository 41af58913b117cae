package httpinterface

import (
	"errors"
	"net/http"

	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

var errInvalidRequest = errors.New("invalid request body")

var statusByError = []struct {
	err    error
	status int
}{
	{errInvalidRequest, http.StatusBadRequest},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidAddress, http.StatusBadRequest},
	{pubsub.ErrInvalidTopic, http.StatusBadRequest},
	{domain.ErrOfferNotFound, http.StatusNotFound},
	{domain.ErrVaultNotFound, http.StatusNotFound},
	{ports.ErrSubscriptionNotFound, http.StatusNotFound},
	{domain.ErrOfferAlreadyExists, http.StatusConflict},
	{domain.ErrVaultAlreadyExists, http.StatusConflict},
	{domain.ErrVaultNotEmpty, http.StatusConflict},
	{domain.ErrVaultEmpty, http.StatusConflict},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{domain.ErrAmountOverflow, http.StatusUnprocessableEntity},
	{domain.ErrVaultCustody, http.StatusUnprocessableEntity},
	{pubsub.ErrWebhooksNotEnabled, http.StatusNotImplemented},
}

// httpStatus returns the status code for the given error. Errors not
// originated by a bad request map to 500.
func httpStatus(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	for _, s := range statusByError {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

type statusError struct {
	err    error
	status int
}

func withStatus(err error, status int) error {
	return &statusError{err, status}
}

func (e *statusError) Error() string {
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}
