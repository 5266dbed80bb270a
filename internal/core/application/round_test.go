package application_test

import (
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/internal/core/application"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/infrastructure/storage/db/inmemory"
)

func TestLiftRequest(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	locator := newWallet(0x01).locator(t)
	height := svc.CurrentRoundHeight()
	sessionId := svc.CurrentRoundSessionId()

	err := svc.SubmitPendingRequest(ctx, locator, 1000)
	require.NoError(t, err)

	round, err := svc.Flush(ctx)
	require.NoError(t, err)
	require.NotNil(t, round)
	require.Equal(t, height+1, round.Height)
	require.Equal(t, height+1, svc.CurrentRoundHeight())
	require.NotEqual(t, sessionId, svc.CurrentRoundSessionId())
	require.Equal(t, round.SessionId, svc.CurrentRoundSessionId())

	vtxos, err := svc.GetVtxosForLocator(ctx, locator)
	require.NoError(t, err)
	require.Len(t, vtxos, 1)
	require.Equal(t, uint64(1000), vtxos[0].Amount)
	require.Equal(t, locator, vtxos[0].Locator)
	require.False(t, vtxos[0].Spent)
	require.Len(t, vtxos[0].Txid, 64)
	require.Zero(t, vtxos[0].VOut)

	vtxo, ok := svc.GetVtxo(ctx, vtxos[0].Key())
	require.True(t, ok)
	require.Equal(t, vtxos[0], *vtxo)
}

func TestEmptyFlush(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	sessionId := svc.CurrentRoundSessionId()

	round, err := svc.Flush(ctx)
	require.NoError(t, err)
	require.Nil(t, round)
	require.Zero(t, svc.CurrentRoundHeight())
	require.Equal(t, sessionId, svc.CurrentRoundSessionId())
}

func TestFlushOrdering(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	locators := []domain.Locator{
		newWallet(0x01).locator(t),
		newWallet(0x02).locator(t),
		newWallet(0x03).locator(t),
	}
	for i, locator := range locators {
		err := svc.SubmitPendingRequest(ctx, locator, uint64(1000*(i+1)))
		require.NoError(t, err)
	}

	round, err := svc.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, round.NumVtxos)

	txids := make(map[string]struct{})
	for i, locator := range locators {
		vtxos, err := svc.GetVtxosForLocator(ctx, locator)
		require.NoError(t, err)
		require.Len(t, vtxos, 1)
		require.Equal(t, uint32(i), vtxos[0].VOut)
		require.Equal(t, uint64(1000*(i+1)), vtxos[0].Amount)
		txids[vtxos[0].Txid] = struct{}{}
	}
	require.Len(t, txids, len(locators))
}

func TestRequestEnqueuedDuringFlush(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	blockingRepo := newBlockingVtxoRepository(repoManager.VtxoRepository())
	batcher, err := application.NewRoundBatcher(
		&hookedRepoManager{repoManager, blockingRepo},
		application.NewPubSubService(newMockPubSub()),
		newMockMetrics(), ticker.NewForce(time.Hour),
	)
	require.NoError(t, err)

	locators := []domain.Locator{
		newWallet(0x01).locator(t),
		newWallet(0x02).locator(t),
		newWallet(0x03).locator(t),
	}
	late := newWallet(0x04).locator(t)

	for _, locator := range locators {
		err := batcher.SubmitPendingRequest(ctx, locator, 1000)
		require.NoError(t, err)
	}

	type flushResult struct {
		round *domain.Round
		err   error
	}
	done := make(chan flushResult, 1)
	go func() {
		round, err := batcher.Flush(ctx)
		done <- flushResult{round, err}
	}()

	<-blockingRepo.entered
	require.Equal(t, application.RoundFlushing, batcher.State())

	err = batcher.SubmitPendingRequest(ctx, late, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, batcher.PendingRequests())

	_, err = batcher.Flush(ctx)
	require.ErrorIs(t, err, application.ErrFlushInProgress)

	close(blockingRepo.release)
	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, uint64(1), res.round.Height)
	require.Equal(t, 3, res.round.NumVtxos)
	require.Equal(t, application.RoundIdle, batcher.State())

	vtxos, err := repoManager.VtxoRepository().GetVtxosForLocator(ctx, late)
	require.NoError(t, err)
	require.Empty(t, vtxos)

	round, err := batcher.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), round.Height)
	require.Equal(t, 1, round.NumVtxos)

	vtxos, err = repoManager.VtxoRepository().GetVtxosForLocator(ctx, late)
	require.NoError(t, err)
	require.Len(t, vtxos, 1)
	require.Equal(t, uint64(2), vtxos[0].RoundHeight)
}

func TestDroppedRequests(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	failingRepo := &failingVtxoRepository{
		VtxoRepository: repoManager.VtxoRepository(),
		failAfter:      1,
	}
	ps := newMockPubSub()
	metrics := newMockMetrics()
	batcher, err := application.NewRoundBatcher(
		&hookedRepoManager{repoManager, failingRepo},
		application.NewPubSubService(ps), metrics, ticker.NewForce(time.Hour),
	)
	require.NoError(t, err)

	locators := []domain.Locator{
		newWallet(0x01).locator(t),
		newWallet(0x02).locator(t),
		newWallet(0x03).locator(t),
	}
	for _, locator := range locators {
		err := batcher.SubmitPendingRequest(ctx, locator, 1000)
		require.NoError(t, err)
	}

	round, err := batcher.Flush(ctx)
	require.ErrorIs(t, err, errInsertFailed)
	require.Nil(t, round)
	require.Zero(t, batcher.CurrentRoundHeight())
	require.Zero(t, batcher.PendingRequests())
	require.Equal(t, application.RoundIdle, batcher.State())

	// Vtxos inserted before the failure are kept.
	vtxos, err := repoManager.VtxoRepository().GetVtxosForLocator(ctx, locators[0])
	require.NoError(t, err)
	require.Len(t, vtxos, 1)
	for _, locator := range locators[1:] {
		vtxos, err := repoManager.VtxoRepository().GetVtxosForLocator(ctx, locator)
		require.NoError(t, err)
		require.Empty(t, vtxos)
	}

	metrics.AssertCalled(t, "RequestsDropped", 2)
	ps.AssertCalled(t, "Publish", "REQUESTS_DROPPED", mock.Anything)
}

func TestRoundTicker(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	tk := ticker.NewForce(time.Hour)
	batcher, err := application.NewRoundBatcher(
		repoManager, application.NewPubSubService(newMockPubSub()),
		newMockMetrics(), tk,
	)
	require.NoError(t, err)

	err = batcher.Start()
	require.NoError(t, err)
	t.Cleanup(batcher.Stop)

	err = batcher.Start()
	require.ErrorIs(t, err, application.ErrRoundAlreadyStarted)

	// Ticks with an empty queue don't advance the round.
	tk.Force <- time.Now()
	require.Zero(t, batcher.CurrentRoundHeight())

	locator := newWallet(0x01).locator(t)
	err = batcher.SubmitPendingRequest(ctx, locator, 1000)
	require.NoError(t, err)

	tk.Force <- time.Now()
	require.Eventually(t, func() bool {
		return batcher.CurrentRoundHeight() == 1
	}, 5*time.Second, 10*time.Millisecond)

	vtxos, err := repoManager.VtxoRepository().GetVtxosForLocator(ctx, locator)
	require.NoError(t, err)
	require.Len(t, vtxos, 1)
}

func TestRestoreRoundHeight(t *testing.T) {
	t.Parallel()

	repoManager := inmemory.NewRepoManager()
	pubsubSvc := application.NewPubSubService(newMockPubSub())
	batcher, err := application.NewRoundBatcher(
		repoManager, pubsubSvc, nil, ticker.NewForce(time.Hour),
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := batcher.SubmitPendingRequest(ctx, newWallet(0x01).locator(t), 10)
		require.NoError(t, err)
		_, err = batcher.Flush(ctx)
		require.NoError(t, err)
	}

	restored, err := application.NewRoundBatcher(
		repoManager, pubsubSvc, nil, ticker.NewForce(time.Hour),
	)
	require.NoError(t, err)
	require.Equal(t, uint64(3), restored.CurrentRoundHeight())
	require.Equal(t, batcher.CurrentRoundSessionId(), restored.CurrentRoundSessionId())
}

func TestFailingSubmitPendingRequest(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	err := svc.SubmitPendingRequest(ctx, "", 1000)
	require.Error(t, err)
	require.Equal(t, application.InvalidParameter, application.KindOf(err))

	err = svc.SubmitPendingRequest(ctx, newWallet(0x01).locator(t), 0)
	require.Error(t, err)
	require.Equal(t, application.InvalidParameter, application.KindOf(err))

	locator := newWallet(0x01).locator(t)
	err = svc.SubmitPendingRequest(ctx, locator+":1000,"+locator, 1000)
	require.Error(t, err)
	require.Equal(t, application.MalformedScript, application.KindOf(err))
	require.Zero(t, svc.PendingRequests())
}

func TestRoundBatcherRestart(t *testing.T) {
	t.Parallel()

	batcher, err := application.NewRoundBatcher(
		inmemory.NewRepoManager(), application.NewPubSubService(newMockPubSub()),
		nil, ticker.NewForce(time.Hour),
	)
	require.NoError(t, err)

	err = batcher.Start()
	require.NoError(t, err)
	batcher.Stop()

	err = batcher.Start()
	require.ErrorIs(t, err, application.ErrRoundBatcherStopped)

	// Stopping again is a no-op.
	batcher.Stop()
}
