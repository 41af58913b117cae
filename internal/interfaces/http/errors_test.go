package httpinterface

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("get: %w", domain.ErrOfferNotFound), http.StatusNotFound},
		{"vault already exists", domain.ErrVaultAlreadyExists, http.StatusConflict},
		{"vault not empty", domain.ErrVaultNotEmpty, http.StatusConflict},
		{"vault empty", domain.ErrVaultEmpty, http.StatusConflict},
		{"vault custody", domain.ErrVaultCustody, http.StatusUnprocessableEntity},
		{"explicit status", withStatus(fmt.Errorf("bad url"), http.StatusBadRequest), http.StatusBadRequest},
		{"unknown", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.status, httpStatus(tt.err))
		})
	}
}
