package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
)

// **** PubSub ****

type mockPubSub struct {
	mock.Mock
}

func newMockPubSub() *mockPubSub {
	m := &mockPubSub{}
	m.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Close").Return().Maybe()
	return m
}

func (m *mockPubSub) Subscribe(topic, endpoint, secret string) (string, error) {
	args := m.Called(topic, endpoint, secret)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockPubSub) Unsubscribe(topic, id string) error {
	args := m.Called(topic, id)
	return args.Error(0)
}

func (m *mockPubSub) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	args := m.Called(topic)

	var res []ports.Subscription
	if a := args.Get(0); a != nil {
		res = a.([]ports.Subscription)
	}
	return res
}

func (m *mockPubSub) Publish(topic, message string) error {
	args := m.Called(topic, message)
	return args.Error(0)
}

func (m *mockPubSub) Close() {
	m.Called()
}

// **** Metrics ****

type mockMetrics struct {
	mock.Mock
}

func newMockMetrics() *mockMetrics {
	m := &mockMetrics{}
	m.On("RoundFinalized", mock.Anything, mock.Anything).Return().Maybe()
	m.On("RequestsEnqueued", mock.Anything).Return().Maybe()
	m.On("RequestsDropped", mock.Anything).Return().Maybe()
	m.On("TransferCommitted", mock.Anything, mock.Anything, mock.Anything).
		Return().Maybe()
	m.On("TransferRejected", mock.Anything).Return().Maybe()
	return m
}

func (m *mockMetrics) RoundFinalized(height uint64, numVtxos int) {
	m.Called(height, numVtxos)
}

func (m *mockMetrics) RequestsEnqueued(count int) {
	m.Called(count)
}

func (m *mockMetrics) RequestsDropped(count int) {
	m.Called(count)
}

func (m *mockMetrics) TransferCommitted(numInputs, numOutputs int, fee uint64) {
	m.Called(numInputs, numOutputs, fee)
}

func (m *mockMetrics) TransferRejected(reason string) {
	m.Called(reason)
}

// **** Repositories ****

var errInsertFailed = errors.New("insert failed")

// hookedRepoManager overrides the vtxo repository of the wrapped manager.
type hookedRepoManager struct {
	ports.RepoManager
	vtxoRepo domain.VtxoRepository
}

func (m *hookedRepoManager) VtxoRepository() domain.VtxoRepository {
	return m.vtxoRepo
}

// blockingVtxoRepository blocks the first AddVtxo call until released.
type blockingVtxoRepository struct {
	domain.VtxoRepository

	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingVtxoRepository(
	repo domain.VtxoRepository,
) *blockingVtxoRepository {
	return &blockingVtxoRepository{
		VtxoRepository: repo,
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (r *blockingVtxoRepository) AddVtxo(
	ctx context.Context, vtxo domain.Vtxo,
) error {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return r.VtxoRepository.AddVtxo(ctx, vtxo)
}

// failingVtxoRepository fails every AddVtxo call after the first failAfter.
type failingVtxoRepository struct {
	domain.VtxoRepository

	lock      sync.Mutex
	count     int
	failAfter int
}

func (r *failingVtxoRepository) AddVtxo(
	ctx context.Context, vtxo domain.Vtxo,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.count >= r.failAfter {
		return errInsertFailed
	}
	r.count++
	return r.VtxoRepository.AddVtxo(ctx, vtxo)
}
