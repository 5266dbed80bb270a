package circuitbreaker_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/pkg/circuitbreaker"
)

var errFailure = errors.New("failure")

func TestCircuitBreaker(t *testing.T) {
	cb := circuitbreaker.New("test", circuitbreaker.Config{
		MinRequests:  2,
		FailingRatio: 0.5,
	})
	fail := func() (interface{}, error) { return nil, errFailure }

	_, err := cb.Execute(fail)
	require.ErrorIs(t, err, errFailure)
	require.Equal(t, gobreaker.StateClosed, cb.State())

	_, err = cb.Execute(fail)
	require.ErrorIs(t, err, errFailure)
	require.Equal(t, gobreaker.StateOpen, cb.State())

	_, err = cb.Execute(func() (interface{}, error) { return nil, nil })
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreakerBelowRatio(t *testing.T) {
	cb := circuitbreaker.New("test", circuitbreaker.DefaultConfig)
	fail := func() (interface{}, error) { return nil, errFailure }
	succeed := func() (interface{}, error) { return "ok", nil }

	for i := 0; i < 20; i++ {
		fn := succeed
		if i%2 == 0 {
			fn = fail
		}
		_, _ = cb.Execute(fn)
	}
	require.Equal(t, gobreaker.StateClosed, cb.State())
}
