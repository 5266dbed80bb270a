package application_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/internal/core/application"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err          error
		expectedKind application.ErrorKind
	}{
		{nil, application.Unknown},
		{errors.New("boom"), application.Unknown},
		{domain.ErrDuplicateVtxo, application.DuplicateId},
		{fmt.Errorf("%w: detail", domain.ErrVtxoNotFound), application.NotFound},
		{fmt.Errorf("%w: detail", domain.ErrVtxoAlreadySpent), application.AlreadySpent},
		{fmt.Errorf("%w: detail", lock.ErrInvalidParameter), application.InvalidParameter},
		{fmt.Errorf("input: %w", verifier.ErrMalformedScript), application.MalformedScript},
		{fmt.Errorf("input: %w", verifier.ErrBackendUnavailable), application.BackendUnavailable},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expectedKind, application.KindOf(tt.err))
	}
	require.Equal(t, "InsufficientFunds", application.InsufficientFunds.String())
}
