package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/arkd/internal/core/domain"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	vtxoDir  = "vtxos"
	roundDir = "rounds"
	assetDir = "assets"

	valueLogGCInterval = 30 * time.Minute
)

type repoManager struct {
	stores []*badgerhold.Store

	vtxoRepository  domain.VtxoRepository
	roundRepository domain.RoundRepository
	assetRepository domain.AssetRepository
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk.
// It expects a base data dir and an optional logger. If the data dir is empty
// the stores are kept in memory.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	vtxoDb, err := createDb(dbDir(baseDbDir, vtxoDir), logger)
	if err != nil {
		return nil, fmt.Errorf("opening vtxo db: %w", err)
	}

	roundDb, err := createDb(dbDir(baseDbDir, roundDir), logger)
	if err != nil {
		vtxoDb.Close()
		return nil, fmt.Errorf("opening round db: %w", err)
	}

	assetDb, err := createDb(dbDir(baseDbDir, assetDir), logger)
	if err != nil {
		vtxoDb.Close()
		roundDb.Close()
		return nil, fmt.Errorf("opening asset db: %w", err)
	}

	return &repoManager{
		stores:          []*badgerhold.Store{vtxoDb, roundDb, assetDb},
		vtxoRepository:  NewVtxoRepositoryImpl(vtxoDb),
		roundRepository: NewRoundRepositoryImpl(roundDb),
		assetRepository: NewAssetRepositoryImpl(assetDb),
	}, nil
}

func (r *repoManager) VtxoRepository() domain.VtxoRepository {
	return r.vtxoRepository
}

func (r *repoManager) RoundRepository() domain.RoundRepository {
	return r.roundRepository
}

func (r *repoManager) AssetRepository() domain.AssetRepository {
	return r.assetRepository
}

func (r *repoManager) Close() {
	for _, store := range r.stores {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close badger store")
		}
	}
}

func dbDir(baseDbDir, name string) string {
	if len(baseDbDir) <= 0 {
		return ""
	}
	return filepath.Join(baseDbDir, name)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(valueLogGCInterval)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
