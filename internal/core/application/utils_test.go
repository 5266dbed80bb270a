package application_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/internal/core/application"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/pkg/lock"
	"github.com/tdex-network/arkd/pkg/verifier"
)

var (
	ctx = context.Background()
	net = &chaincfg.RegressionNetParams

	maxGeneration uint32 = 2
)

type testService struct {
	*application.Service
	cfg     *application.Config
	pubsub  *mockPubSub
	metrics *mockMetrics
	ticker  *ticker.Force
}

func newTestService(t *testing.T) *testService {
	ps := newMockPubSub()
	metrics := newMockMetrics()
	tk := ticker.NewForce(time.Hour)

	cfg := &application.Config{
		DBType:        application.DBInMemory,
		Network:       net,
		RoundTicker:   tk,
		PubSub:        ps,
		Metrics:       metrics,
		MaxGeneration: maxGeneration,
	}
	svc, err := application.NewService(cfg)
	require.NoError(t, err)

	t.Cleanup(svc.Stop)

	return &testService{svc, cfg, ps, metrics, tk}
}

func newTestEngine(t *testing.T) *verifier.Engine {
	engine, err := verifier.NewEngine(net)
	require.NoError(t, err)
	return engine
}

type wallet struct {
	privKey  *btcec.PrivateKey
	ownerKey []byte
}

func newWallet(seed byte) *wallet {
	privKey, pubKey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	return &wallet{privKey, schnorr.SerializePubKey(pubKey)}
}

func (w *wallet) ownerKeyHex() string {
	return hex.EncodeToString(w.ownerKey)
}

// locator returns the single key locator of the wallet.
func (w *wallet) locator(t *testing.T) domain.Locator {
	_, script, err := lock.BuildSingleKeyAddress(w.ownerKey, net)
	require.NoError(t, err)
	return domain.Locator(hex.EncodeToString(script))
}

// lift enqueues a request for the given locator and amount, flushes and
// returns the resulting vtxo.
func lift(
	t *testing.T, svc *testService, locator domain.Locator, amount uint64,
) domain.Vtxo {
	err := svc.SubmitPendingRequest(ctx, locator, amount)
	require.NoError(t, err)

	round, err := svc.Flush(ctx)
	require.NoError(t, err)
	require.NotNil(t, round)

	vtxos, err := svc.GetVtxosForLocator(ctx, locator)
	require.NoError(t, err)
	for _, v := range vtxos {
		if v.RoundHeight == round.Height {
			return v
		}
	}
	t.Fatalf("vtxo for locator %s not found in round %d", locator, round.Height)
	return domain.Vtxo{}
}

func sign(
	t *testing.T, engine *verifier.Engine, hash [32]byte, w *wallet,
	identityHash *lock.IdentityHash,
) []byte {
	sig, err := engine.Sign(hash, w.privKey, identityHash)
	require.NoError(t, err)
	return sig
}

func flipBit(sig []byte) []byte {
	flipped := append([]byte{}, sig...)
	flipped[len(flipped)/2] ^= 0x01
	return flipped
}

func sumUnspent(t *testing.T, svc *testService) uint64 {
	vtxos, err := svc.cfg.RepoManager().VtxoRepository().GetAllVtxos(ctx)
	require.NoError(t, err)

	var sum uint64
	for _, v := range vtxos {
		if !v.IsSpent() {
			sum += v.Amount
		}
	}
	return sum
}
