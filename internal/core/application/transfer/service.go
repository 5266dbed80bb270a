package transfer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/arkd/internal/core/application/pubsub"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/tdex-network/arkd/pkg/verifier"
)

var (
	// ErrMissingInputs is returned for transfers without inputs.
	ErrMissingInputs = errors.New("transfer must have at least one input")
	// ErrInvalidSignature is returned when an input signature doesn't verify
	// against the key the input is locked to.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrInvalidAmount is returned for zero amount outputs or amounts that
	// overflow.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds is returned when outputs exceed inputs.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Input is a reference to the vtxo spent along with the signature of the
// transfer commitment hash.
type Input struct {
	Key       domain.VtxoKey
	Signature []byte
}

// PendingRequestSubmitter accepts the outputs of a committed transfer, to be
// materialized in the next round.
type PendingRequestSubmitter interface {
	SubmitPendingRequest(
		ctx context.Context, locator domain.Locator, amount uint64,
	) error
}

// Service validates and commits transfers of vtxos.
type Service struct {
	repoManager ports.RepoManager
	engine      *verifier.Engine
	pubsub      *pubsub.Service
	metrics     ports.Metrics
	submitter   PendingRequestSubmitter

	// held across the whole check-then-commit sequence of a transfer.
	lock *sync.Mutex
}

func NewService(
	repoManager ports.RepoManager, engine *verifier.Engine,
	pubsubSvc *pubsub.Service, metrics ports.Metrics,
	submitter PendingRequestSubmitter,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if engine == nil {
		return nil, fmt.Errorf("missing signature engine")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if submitter == nil {
		return nil, fmt.Errorf("missing pending request submitter")
	}
	return &Service{
		repoManager, engine, pubsubSvc, metrics, submitter, &sync.Mutex{},
	}, nil
}

// ValidateAndCommit checks every input and output of the transfer and, if
// all checks pass, marks all inputs as spent at once. Nothing is mutated if
// any check fails.
func (s *Service) ValidateAndCommit(
	ctx context.Context, inputs []Input, outputs []domain.Output,
) error {
	if err := s.validateAndCommit(ctx, inputs, outputs); err != nil {
		log.WithError(err).Warn("transfer rejected")
		if s.metrics != nil {
			s.metrics.TransferRejected(rejectReason(err))
		}
		return err
	}
	return nil
}

// CommitmentHash returns the hash the inputs of the transfer must sign.
func CommitmentHash(inputs []domain.VtxoKey, outputs []domain.Output) [32]byte {
	ins := make([]verifier.InputRef, 0, len(inputs))
	for _, in := range inputs {
		ins = append(ins, verifier.InputRef{Txid: in.Txid, VOut: in.VOut})
	}
	outs := make([]verifier.OutputRef, 0, len(outputs))
	for _, out := range outputs {
		outs = append(outs, verifier.OutputRef{
			Locator: string(out.Locator), Amount: out.Amount,
		})
	}
	return verifier.CommitmentHash(ins, outs)
}

func (s *Service) validateAndCommit(
	ctx context.Context, inputs []Input, outputs []domain.Output,
) error {
	if len(inputs) <= 0 {
		return ErrMissingInputs
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	keys := make([]domain.VtxoKey, 0, len(inputs))
	for _, in := range inputs {
		keys = append(keys, in.Key)
	}
	hash := CommitmentHash(keys, outputs)

	vtxoRepo := s.repoManager.VtxoRepository()
	seen := make(map[domain.VtxoKey]struct{})
	var inAmount uint64
	for _, in := range inputs {
		if _, ok := seen[in.Key]; ok {
			return fmt.Errorf(
				"%w: %s is spent twice", domain.ErrVtxoAlreadySpent, in.Key,
			)
		}
		seen[in.Key] = struct{}{}

		vtxo, err := vtxoRepo.GetVtxo(ctx, in.Key)
		if err != nil {
			return err
		}
		if vtxo.IsSpent() {
			return fmt.Errorf("%w: %s", domain.ErrVtxoAlreadySpent, in.Key)
		}

		key, err := s.engine.ExtractKey(string(vtxo.Locator))
		if err != nil {
			return fmt.Errorf("input %s: %w", in.Key, err)
		}
		ok, err := s.engine.Verify(hash, key, in.Signature)
		if err != nil {
			return fmt.Errorf("input %s: %w", in.Key, err)
		}
		if !ok {
			return fmt.Errorf("%w for input %s", ErrInvalidSignature, in.Key)
		}

		if inAmount > math.MaxUint64-vtxo.Amount {
			return fmt.Errorf("%w: inputs amount overflows", ErrInvalidAmount)
		}
		inAmount += vtxo.Amount
	}

	var outAmount uint64
	for i, out := range outputs {
		if out.Amount == 0 {
			return fmt.Errorf("%w: output %d amount must be positive", ErrInvalidAmount, i)
		}
		if err := out.Locator.Validate(); err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
		if outAmount > math.MaxUint64-out.Amount {
			return fmt.Errorf("%w: outputs amount overflows", ErrInvalidAmount)
		}
		outAmount += out.Amount
	}

	if inAmount < outAmount {
		return fmt.Errorf(
			"%w: inputs %d, outputs %d", ErrInsufficientFunds, inAmount, outAmount,
		)
	}
	fee := inAmount - outAmount

	if err := vtxoRepo.SpendVtxos(ctx, keys); err != nil {
		return err
	}

	for _, out := range outputs {
		if err := s.submitter.SubmitPendingRequest(
			ctx, out.Locator, out.Amount,
		); err != nil {
			log.WithError(err).Errorf(
				"failed to enqueue output %s of committed transfer", out,
			)
		}
	}

	log.Debugf(
		"committed transfer of %d inputs and %d outputs, fee %d",
		len(inputs), len(outputs), fee,
	)
	if s.metrics != nil {
		s.metrics.TransferCommitted(len(inputs), len(outputs), fee)
	}
	go func() {
		if err := s.pubsub.PublishTransferCommittedEvent(
			keys, outputs, fee,
		); err != nil {
			log.WithError(err).Warnf(
				"an error occured while publishing message for topic %s",
				pubsub.EventTransferCommitted,
			)
		}
	}()

	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrVtxoNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrVtxoAlreadySpent):
		return "already_spent"
	case errors.Is(err, verifier.ErrMalformedScript),
		errors.Is(err, domain.ErrInvalidLocator):
		return "malformed_script"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrMissingInputs):
		return "invalid_parameter"
	default:
		return "unknown"
	}
}
