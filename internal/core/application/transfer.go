package application

import (
	"context"

	"github.com/tdex-network/arkd/internal/core/application/pubsub"
	"github.com/tdex-network/arkd/internal/core/application/transfer"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/tdex-network/arkd/pkg/verifier"
)

type TransferInput = transfer.Input

type TransferService interface {
	ValidateAndCommit(
		ctx context.Context, inputs []TransferInput, outputs []domain.Output,
	) error
}

func NewTransferService(
	repoManager ports.RepoManager, engine *verifier.Engine,
	pubsubSvc PubSubService, metrics ports.Metrics, batcher RoundBatcher,
) (TransferService, error) {
	p := pubsubSvc.(*pubsub.Service)
	svc, err := transfer.NewService(repoManager, engine, p, metrics, batcher)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CommitmentHash returns the message every input of a transfer must sign.
func CommitmentHash(inputs []domain.VtxoKey, outputs []domain.Output) [32]byte {
	return transfer.CommitmentHash(inputs, outputs)
}
