package db_test

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	dbbadger "github.com/tdex-network/arkd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/arkd/internal/infrastructure/storage/db/inmemory"
)

type repoManager struct {
	Name      string
	DBManager ports.RepoManager
}

func createRepoManagers(t *testing.T) []repoManager {
	inmemoryDBManager := inmemory.NewRepoManager()
	badgerDBManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		badgerDBManager.Close()
	})

	return []repoManager{
		{
			Name:      "badger",
			DBManager: badgerDBManager,
		},
		{
			Name:      "inmemory",
			DBManager: inmemoryDBManager,
		},
	}
}

func makeRandomVtxos(num int, locator domain.Locator, height uint64) []domain.Vtxo {
	txid := randomHex(32)
	vtxos := make([]domain.Vtxo, 0, num)
	for i := 0; i < num; i++ {
		vtxos = append(vtxos, domain.NewVtxo(
			txid, uint32(i), uint64(1000*(i+1)), locator, height,
		))
	}
	return vtxos
}

func makeRandomAsset(owner string) domain.Asset {
	asset, _ := domain.NewAsset(owner, domain.AssetIdentity{
		Payload:  randomHex(16),
		Cooldown: 3,
	}, 1)
	return *asset
}

func randomLocator() domain.Locator {
	return domain.Locator("5120" + randomHex(32))
}

func randomHex(len int) string {
	return hex.EncodeToString(randomBytes(len))
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}
