package controller

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/canopy-network/poh/finality"
	"github.com/canopy-network/poh/ledger"
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"github.com/canopy-network/poh/poh"
	"github.com/canopy-network/poh/store"
	"golang.org/x/sync/errgroup"
)

// deliveryBuffer sizes the hand-off to the banking stage; batches beyond it queue inside the recorder
const deliveryBuffer = 64

// Controller acts as the 'manager' of the modules of the node
type Controller struct {
	Config     lib.Config
	PublicKey  []byte
	PrivateKey crypto.PrivateKeyI

	Metrics  *lib.Metrics
	Store    lib.StoreI
	Ledger   *ledger.Ledger
	Recorder *poh.Recorder
	PoH      *poh.Service
	Finality *finality.Service

	entries     chan lib.Entries // recorder -> banking stage
	bankingDone chan struct{}    // closed once the banking stage drained the delivery channel
	started     atomic.Bool
	stats       BankingStats
	statsMux    sync.RWMutex

	log lib.LoggerI
}

// New() creates a new instance of a Controller, this is the entry point when initializing a node
func New(c lib.Config, nodeKey crypto.PrivateKeyI, l lib.LoggerI) (*Controller, lib.ErrorI) {
	metrics := lib.NewMetricsServer(c.MetricsConfig, l)
	db, err := store.New(c, l.With("store"))
	if err != nil {
		return nil, err
	}
	return NewWithStore(c, nodeKey, db, metrics, l)
}

// NewWithStore() creates a Controller over an already open account table
func NewWithStore(c lib.Config, nodeKey crypto.PrivateKeyI, db lib.StoreI, metrics *lib.Metrics, l lib.LoggerI) (*Controller, lib.ErrorI) {
	publicKey := nodeKey.PublicKey().Bytes()
	// the chain of every node starts at the hash of its identity
	ledg := ledger.New(c.LedgerConfig, db, crypto.Hash(publicKey), metrics, l.With("ledger"))
	// credit the genesis stake only once per account table
	account, err := ledg.GetAccount(publicKey)
	if err != nil {
		return nil, err
	}
	if account == nil && c.GenesisStake != 0 {
		if err = ledg.Credit(publicKey, c.GenesisStake); err != nil {
			return nil, err
		}
		l.Infof("Credited genesis stake of %d to %s", c.GenesisStake, lib.BytesToTruncatedString(publicKey))
	}
	entries := make(chan lib.Entries, deliveryBuffer)
	recorder := poh.NewRecorder(ledg, entries, metrics, l.With("recorder"))
	pohService, err := poh.NewService(c.PoHConfig, recorder, l.With("poh"))
	if err != nil {
		return nil, err
	}
	return &Controller{
		Config:      c,
		PublicKey:   publicKey,
		PrivateKey:  nodeKey,
		Metrics:     metrics,
		Store:       db,
		Ledger:      ledg,
		Recorder:    recorder,
		PoH:         pohService,
		Finality:    finality.NewService(c.FinalityConfig, ledg, publicKey, metrics, l.With("finality")),
		entries:     entries,
		bankingDone: make(chan struct{}),
		log:         l,
	}, nil
}

// Start() begins the Controller service
func (c *Controller) Start(ctx context.Context) lib.ErrorI {
	if !c.started.CompareAndSwap(false, true) {
		return poh.ErrAlreadyStarted()
	}
	// start the metrics server
	c.Metrics.Start()
	// start consuming delivered entries before the first tick
	go c.bankingStage(c.Recorder.LastId())
	// start the clock
	if err := c.PoH.Start(ctx); err != nil {
		return err
	}
	// start the finality service
	c.Finality.Start(ctx)
	c.log.Infof("Node %s started at tick height %d", lib.BytesToTruncatedString(c.PublicKey), c.Ledger.TickHeight())
	return nil
}

// Stop() terminates the Controller service
// The PoH service stops at its next tick, then the recorder is closed which ends the banking stage
func (c *Controller) Stop() lib.ErrorI {
	var g errgroup.Group
	g.Go(func() error {
		err := c.PoH.Close()
		c.Recorder.Close()
		if c.started.Load() {
			<-c.bankingDone
		}
		if err != nil && !lib.IsCode(err, lib.PoHModule, lib.CodeServiceNotStart) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		c.Finality.Close()
		return nil
	})
	er := g.Wait()
	c.Metrics.Stop()
	if err := c.Store.Close(); err != nil {
		c.log.Error(err.Error())
	}
	if er != nil {
		return ErrErrorGroup(er)
	}
	c.log.Info("Node stopped")
	return nil
}
