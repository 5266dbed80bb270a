package application

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/ticker"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/arkd/internal/core/ports"
	dbbadger "github.com/tdex-network/arkd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/arkd/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/arkd/pkg/verifier"
)

const (
	DBInMemory = "inmemory"
	DBBadger   = "badger"
)

var (
	SupportedDBType = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
	}
)

type Config struct {
	DBType   string
	DBConfig interface{}

	Network *chaincfg.Params
	// Engine, if set, is used in place of a new one for Network.
	Engine        *verifier.Engine
	RoundInterval time.Duration
	// RoundTicker, if set, overrides the ticker built from RoundInterval.
	RoundTicker   ticker.Ticker
	PubSub        ports.PubSub
	Metrics       ports.Metrics
	MaxGeneration uint32

	repo     ports.RepoManager
	engine   *verifier.Engine
	pubsub   PubSubService
	batcher  RoundBatcher
	transfer TransferService
	asset    AssetService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("db type not supported")
	}
	if c.Network == nil {
		return fmt.Errorf("missing network")
	}
	if c.RoundTicker == nil && c.RoundInterval <= 0 {
		return fmt.Errorf("round interval must be greater than zero")
	}
	if c.MaxGeneration == 0 {
		return fmt.Errorf("max generation must be greater than zero")
	}
	if _, err := c.signatureEngine(); err != nil {
		return err
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	svc, _ := c.repoManager()
	return svc
}

func (c *Config) SignatureEngine() *verifier.Engine {
	svc, _ := c.signatureEngine()
	return svc
}

func (c *Config) PubSubService() PubSubService {
	svc, _ := c.pubsubService()
	return svc
}

func (c *Config) RoundBatcher() RoundBatcher {
	svc, _ := c.roundBatcher()
	return svc
}

func (c *Config) TransferService() TransferService {
	svc, _ := c.transferService()
	return svc
}

func (c *Config) AssetService() AssetService {
	svc, _ := c.assetService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		default:
			c.repo = inmemory.NewRepoManager()
		}
	}
	return c.repo, nil
}

func (c *Config) signatureEngine() (*verifier.Engine, error) {
	if c.engine == nil && c.Engine != nil {
		c.engine = c.Engine
	}
	if c.engine == nil {
		engine, err := verifier.NewEngine(c.Network)
		if err != nil {
			return nil, err
		}
		c.engine = engine
	}
	return c.engine, nil
}

func (c *Config) pubsubService() (PubSubService, error) {
	if c.pubsub == nil {
		c.pubsub = NewPubSubService(c.PubSub)
	}
	return c.pubsub, nil
}

func (c *Config) roundBatcher() (RoundBatcher, error) {
	if c.batcher == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		t := c.RoundTicker
		if t == nil {
			t = ticker.New(c.RoundInterval)
		}
		batcher, err := NewRoundBatcher(repo, pubsub, c.Metrics, t)
		if err != nil {
			return nil, err
		}
		c.batcher = batcher
	}
	return c.batcher, nil
}

func (c *Config) transferService() (TransferService, error) {
	if c.transfer == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		engine, err := c.signatureEngine()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		batcher, err := c.roundBatcher()
		if err != nil {
			return nil, err
		}
		transfer, err := NewTransferService(
			repo, engine, pubsub, c.Metrics, batcher,
		)
		if err != nil {
			return nil, err
		}
		c.transfer = transfer
	}
	return c.transfer, nil
}

func (c *Config) assetService() (AssetService, error) {
	if c.asset == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		engine, err := c.signatureEngine()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		batcher, err := c.roundBatcher()
		if err != nil {
			return nil, err
		}
		transfer, err := c.transferService()
		if err != nil {
			return nil, err
		}
		asset, err := NewAssetService(
			repo, engine, pubsub, batcher, transfer, c.MaxGeneration,
		)
		if err != nil {
			return nil, err
		}
		c.asset = asset
	}
	return c.asset, nil
}
