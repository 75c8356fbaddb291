package rpc

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canopy-network/poh/controller"
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"github.com/canopy-network/poh/vote"
	"github.com/stretchr/testify/require"
)

// newTestServer() serves the api of an idle in memory node
func newTestServer(t *testing.T) (*controller.Controller, *Client) {
	config := lib.DefaultConfig()
	config.InMemory = true
	config.MetricsConfig.Enabled = false
	nodeKey, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	c, e := controller.New(config, nodeKey, lib.NewNullLogger())
	require.NoError(t, e)
	t.Cleanup(func() { c.Stop() })
	ts := httptest.NewServer(NewServer(c, config, lib.NewNullLogger()).Handler())
	t.Cleanup(ts.Close)
	return c, NewClient(ts.URL, "")
}

func TestVersionAndHeight(t *testing.T) {
	c, client := newTestServer(t)
	version, err := client.Version()
	require.NoError(t, err)
	require.Equal(t, SoftwareVersion, *version)
	// register a tick directly with the ledger
	c.Ledger.RegisterTick(crypto.Hash([]byte("tick")))
	height, err := client.Height()
	require.NoError(t, err)
	require.EqualValues(t, 1, height.TickHeight)
	require.Equal(t, lib.HexBytes(crypto.Hash([]byte("tick"))), height.LastId)
}

func TestFinality(t *testing.T) {
	c, client := newTestServer(t)
	// nothing confirmed
	got, err := client.Finality()
	require.NoError(t, err)
	require.False(t, got.Confirmed)
	require.Equal(t, uint64(math.MaxUint64), got.FinalityMS)
	require.Zero(t, got.StalenessMS)
	// publish a confirmation
	c.Ledger.SetFinality(3, lib.NowMS()-50, 40)
	got, err = client.Finality()
	require.NoError(t, err)
	require.True(t, got.Confirmed)
	require.EqualValues(t, 3, got.LastConfirmedTickHeight)
	require.EqualValues(t, 40, got.FinalityMS)
	require.GreaterOrEqual(t, got.StalenessMS, uint64(50))
}

func TestAccount(t *testing.T) {
	c, client := newTestServer(t)
	voteKey, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	voteAccount := voteKey.PublicKey().Bytes()
	require.NoError(t, c.Ledger.CreateVoteAccount(voteAccount))
	results := c.Ledger.ProcessTransactions([]*lib.Transaction{vote.NewRegisterTx(c.PrivateKey, voteAccount, c.Ledger.LastId())})
	require.NoError(t, results[0])
	// the node's stake account has no vote state
	got, e := client.Account(lib.BytesToString(c.PublicKey))
	require.NoError(t, e)
	require.EqualValues(t, c.Config.GenesisStake, got.Account.Balance)
	require.Nil(t, got.VoteState)
	// the vote account is decoded
	got, e = client.Account(lib.BytesToString(voteAccount))
	require.NoError(t, e)
	require.NotNil(t, got.VoteState)
	require.Equal(t, lib.HexBytes(c.PublicKey), got.VoteState.NodeId)
	require.Zero(t, got.VoteState.Votes.Len())
	// unknown and malformed keys
	_, e = client.Account(lib.BytesToString(crypto.Hash([]byte("missing"))))
	require.Equal(t, lib.CodeHttpStatus, e.Code())
	_, e = client.Account("not-hex")
	require.Equal(t, lib.CodeHttpStatus, e.Code())
}

func TestAccountStatusCodes(t *testing.T) {
	_, client := newTestServer(t)
	tests := []struct {
		name string
		key  string
		code int
	}{
		{name: "malformed key", key: "zz", code: http.StatusBadRequest},
		{name: "not a public key", key: lib.BytesToString([]byte("missing")), code: http.StatusBadRequest},
		{name: "missing account", key: lib.BytesToString(crypto.Hash([]byte("missing"))), code: http.StatusNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			resp, err := http.Get(client.url(AccountRouteName, test.key))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, test.code, resp.StatusCode)
		})
	}
}

func TestConfigRoute(t *testing.T) {
	c, client := newTestServer(t)
	got, err := client.Config()
	require.NoError(t, err)
	require.Equal(t, c.Config.PoHConfig, got.PoHConfig)
	require.Equal(t, c.Config.LedgerConfig, got.LedgerConfig)
}
