package application

import (
	"errors"

	"github.com/tdex-network/arkd/internal/core/application/asset"
	"github.com/tdex-network/arkd/internal/core/application/transfer"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/tweak"
	"github.com/tdex-network/arkd/pkg/verifier"
)

// ErrorKind classifies the errors returned by the coordinator so that any
// transport layer can map them to its own codes.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	DuplicateId
	NotFound
	AlreadySpent
	InvalidParameter
	MalformedScript
	InvalidSignature
	InvalidAmount
	InsufficientFunds
	BackendUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case DuplicateId:
		return "DuplicateId"
	case NotFound:
		return "NotFound"
	case AlreadySpent:
		return "AlreadySpent"
	case InvalidParameter:
		return "InvalidParameter"
	case MalformedScript:
		return "MalformedScript"
	case InvalidSignature:
		return "InvalidSignature"
	case InvalidAmount:
		return "InvalidAmount"
	case InsufficientFunds:
		return "InsufficientFunds"
	case BackendUnavailable:
		return "BackendUnavailable"
	default:
		return "Unknown"
	}
}

var errorKinds = []struct {
	kind ErrorKind
	errs []error
}{
	{BackendUnavailable, []error{verifier.ErrBackendUnavailable}},
	{DuplicateId, []error{domain.ErrDuplicateVtxo, domain.ErrDuplicateAsset}},
	{NotFound, []error{
		domain.ErrVtxoNotFound, domain.ErrAssetNotFound, domain.ErrRoundNotFound,
	}},
	{AlreadySpent, []error{domain.ErrVtxoAlreadySpent, domain.ErrAssetBurned}},
	{MalformedScript, []error{
		verifier.ErrMalformedScript, lock.ErrMalformedScript,
		domain.ErrInvalidLocator, asset.ErrInputNotBound,
	}},
	{InvalidSignature, []error{
		transfer.ErrInvalidSignature, verifier.ErrInvalidSignature,
	}},
	{InvalidAmount, []error{transfer.ErrInvalidAmount}},
	{InsufficientFunds, []error{transfer.ErrInsufficientFunds}},
	{InvalidParameter, []error{
		lock.ErrInvalidParameter, tweak.ErrInvalidKey, tweak.ErrInvalidTweak,
		domain.ErrInvalidRequest, domain.ErrAssetCooldown,
		domain.ErrMaxGenerationReached, domain.ErrSameParents,
		transfer.ErrMissingInputs,
	}},
}

// KindOf returns the kind of the given error, Unknown if it's not one of
// those returned by the coordinator.
func KindOf(err error) ErrorKind {
	if err == nil {
		return Unknown
	}
	for _, k := range errorKinds {
		for _, e := range k.errs {
			if errors.Is(err, e) {
				return k.kind
			}
		}
	}
	return Unknown
}
