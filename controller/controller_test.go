package controller

import (
	"context"
	"testing"
	"time"

	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"github.com/canopy-network/poh/store"
	"github.com/canopy-network/poh/vote"
	"github.com/stretchr/testify/require"
)

// newTestConfig() is a fast, in memory configuration with the servers disabled
func newTestConfig() lib.Config {
	c := lib.DefaultConfig()
	c.InMemory = true
	c.MetricsConfig.Enabled = false
	c.RPCEnabled = false
	c.PoHConfig = lib.PoHConfig{Mode: lib.PoHModeSleep, TickIntervalMS: 5}
	c.PollIntervalMS = 5
	c.GenesisStake = 3
	return c
}

func newTestController(t *testing.T) *Controller {
	nodeKey, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	c, e := New(newTestConfig(), nodeKey, lib.NewNullLogger())
	require.NoError(t, e)
	return c
}

func TestGenesisStake(t *testing.T) {
	nodeKey, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	db, e := store.NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, e)
	defer db.Close()
	config := newTestConfig()
	metrics := lib.NewMetricsServer(config.MetricsConfig, lib.NewNullLogger())
	// execute the function call
	c, e := NewWithStore(config, nodeKey, db, metrics, lib.NewNullLogger())
	require.NoError(t, e)
	require.EqualValues(t, 3, c.Ledger.GetStake(c.PublicKey))
	// reopening the same table doesn't credit again
	c, e = NewWithStore(config, nodeKey, db, metrics, lib.NewNullLogger())
	require.NoError(t, e)
	require.EqualValues(t, 3, c.Ledger.GetStake(c.PublicKey))
}

func TestInvalidPoHConfig(t *testing.T) {
	nodeKey, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	config := newTestConfig()
	config.PoHConfig.Mode = "fast"
	_, e := New(config, nodeKey, lib.NewNullLogger())
	require.Error(t, e)
	require.Equal(t, lib.CodeInvalidPoHMode, e.Code())
}

func TestStartStop(t *testing.T) {
	c := newTestController(t)
	require.NoError(t, c.Start(context.Background()))
	// a second start is rejected
	require.Error(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return c.Ledger.TickHeight() >= 3 }, 5*time.Second, 5*time.Millisecond)
	// execute the function call
	require.NoError(t, c.Stop())
	require.True(t, c.PoH.Exited())
	// every registered tick was delivered and continued the chain
	stats := c.BankingStats()
	require.Equal(t, c.Ledger.TickHeight(), stats.Batches)
	require.Equal(t, stats.Batches, stats.Entries)
	require.Zero(t, stats.InvalidChains)
	require.Equal(t, lib.HexBytes(c.Ledger.LastId()), stats.LastId)
}

func TestStopBeforeStart(t *testing.T) {
	c := newTestController(t)
	require.NoError(t, c.Stop())
}

func TestSubmitTransactions(t *testing.T) {
	c := newTestController(t)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()
	// fund a validator and give it a registered vote account
	node, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	voteKey, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	require.NoError(t, c.Ledger.Credit(node.PublicKey().Bytes(), 5))
	require.NoError(t, c.Ledger.CreateVoteAccount(voteKey.PublicKey().Bytes()))
	register := vote.NewRegisterTx(node, voteKey.PublicKey().Bytes(), c.Ledger.LastId())
	results, e := c.SubmitTransactions([]*lib.Transaction{register})
	require.NoError(t, e)
	require.NoError(t, results[0])
	// vote for the current tick; the replay is rejected without failing the batch
	voteTx := vote.NewVoteTx(voteKey, c.Ledger.TickHeight(), c.Ledger.LastId())
	results, e = c.SubmitTransactions([]*lib.Transaction{voteTx, voteTx})
	require.NoError(t, e)
	require.NoError(t, results[0])
	require.Equal(t, lib.CodeDuplicateSignature, results[1].Code())
	// both accepted transactions are delivered with the next ticks
	require.Eventually(t, func() bool { return c.BankingStats().Transactions == 2 }, 5*time.Second, 5*time.Millisecond)
	// the only voting validator holds all the stake, so its vote confirms
	require.Eventually(t, func() bool { return c.Ledger.Finality().Confirmed }, 5*time.Second, 5*time.Millisecond)
	require.LessOrEqual(t, c.Ledger.Finality().LastConfirmedTickHeight, c.Ledger.TickHeight())
}

func TestSubmitRejectedOnly(t *testing.T) {
	c := newTestController(t)
	defer c.Stop()
	stranger, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	// nothing is recorded when every transaction is rejected
	results, e := c.SubmitTransactions([]*lib.Transaction{vote.NewVoteTx(stranger, 0, c.Ledger.LastId())})
	require.NoError(t, e)
	require.Equal(t, lib.CodeUnauthorized, results[0].Code())
}
