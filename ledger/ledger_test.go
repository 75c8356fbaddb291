package ledger

import (
	"math"
	"testing"

	"github.com/canopy-network/poh/finality"
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"github.com/canopy-network/poh/store"
	"github.com/canopy-network/poh/vote"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, sink lib.MetricsSinkI) *Ledger {
	s, err := store.NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(lib.DefaultLedgerConfig(), s, tickId(0), sink, lib.NewNullLogger())
}

// validator is a node key and its vote account key
type validator struct {
	node, vote crypto.PrivateKeyI
}

// newValidator() credits stake to a fresh node key and registers a vote account for it
func newValidator(t *testing.T, l *Ledger, stake uint64) validator {
	node, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	voteKey, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	require.NoError(t, l.Credit(node.PublicKey().Bytes(), stake))
	require.NoError(t, l.CreateVoteAccount(voteKey.PublicKey().Bytes()))
	results := l.ProcessTransactions([]*lib.Transaction{vote.NewRegisterTx(node, voteKey.PublicKey().Bytes(), l.LastId())})
	require.NoError(t, results[0])
	return validator{node: node, vote: voteKey}
}

// voteState() reads the decoded vote state of the vote account
func voteState(t *testing.T, l *Ledger, key []byte) *vote.VoteState {
	account, err := l.GetAccount(key)
	require.NoError(t, err)
	require.NotNil(t, account)
	state, err := vote.NewVoteStateFromBytes(account.Data)
	require.NoError(t, err)
	return state
}

func TestCreditAndStake(t *testing.T) {
	l := newTestLedger(t, lib.NullSink{})
	key := []byte("node")
	require.Zero(t, l.GetStake(key))
	require.NoError(t, l.Credit(key, 3))
	require.NoError(t, l.Credit(key, 4))
	require.EqualValues(t, 7, l.GetStake(key))
}

func TestCreateVoteAccount(t *testing.T) {
	l := newTestLedger(t, lib.NullSink{})
	key := []byte("vote account")
	require.NoError(t, l.CreateVoteAccount(key))
	account, err := l.GetAccount(key)
	require.NoError(t, err)
	require.True(t, account.IsOwnedBy(vote.ProgramId))
	// a second creation fails
	err = l.CreateVoteAccount(key)
	require.Equal(t, lib.CodeAccountExists, err.Code())
}

func TestProcessTransactionsVote(t *testing.T) {
	sink := new(lib.MemorySink)
	l := newTestLedger(t, sink)
	v := newValidator(t, l, 5)
	voteAccount := v.vote.PublicKey().Bytes()
	// the vote account is registered to the node
	state := voteState(t, l, voteAccount)
	require.Equal(t, lib.HexBytes(v.node.PublicKey().Bytes()), state.NodeId)
	// vote for two tick heights
	l.RegisterTick(tickId(1))
	l.RegisterTick(tickId(2))
	results := l.ProcessTransactions([]*lib.Transaction{
		vote.NewVoteTx(v.vote, 1, l.LastId()),
		vote.NewVoteTx(v.vote, 2, l.LastId()),
	})
	require.Len(t, results, 2)
	require.NoError(t, results[0])
	require.NoError(t, results[1])
	state = voteState(t, l, voteAccount)
	require.Equal(t, []vote.Vote{{TickHeight: 1}, {TickHeight: 2}}, state.Votes.Slice())
	require.Len(t, sink.Measurements(lib.MeasurementVoteNative), 2)
	// the stake didn't move
	require.EqualValues(t, 5, l.GetStake(v.node.PublicKey().Bytes()))
}

func TestProcessTransactionErrors(t *testing.T) {
	l := newTestLedger(t, lib.NullSink{})
	v := newValidator(t, l, 1)
	replayed := vote.NewVoteTx(v.vote, 1, l.LastId())
	require.NoError(t, l.ProcessTransaction(replayed))
	stranger, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	tests := []struct {
		name    string
		tx      func() *lib.Transaction
		errCode lib.ErrorCode
	}{
		{
			name:    "replayed signature",
			tx:      func() *lib.Transaction { return replayed },
			errCode: lib.CodeDuplicateSignature,
		},
		{
			name:    "unknown last id",
			tx:      func() *lib.Transaction { return vote.NewVoteTx(v.vote, 2, tickId(99)) },
			errCode: lib.CodeUnknownLastId,
		},
		{
			name: "unsigned",
			tx: func() *lib.Transaction {
				tx := vote.NewVoteTx(v.vote, 3, l.LastId())
				tx.Signature = nil
				return tx
			},
			errCode: lib.CodeEmptySignature,
		},
		{
			name: "no accounts",
			tx: func() *lib.Transaction {
				tx := vote.NewVoteTx(v.vote, 4, l.LastId())
				tx.AccountKeys = nil
				return tx
			},
			errCode: lib.CodeNoAccountKeys,
		},
		{
			name: "unknown program",
			tx: func() *lib.Transaction {
				tx := vote.NewVoteTx(v.vote, 5, l.LastId())
				tx.ProgramId = crypto.Hash([]byte("other program"))
				tx.Sign(v.vote)
				return tx
			},
			errCode: lib.CodeUnknownProgram,
		},
		{
			name:    "vote from an account the vote program doesn't own",
			tx:      func() *lib.Transaction { return vote.NewVoteTx(stranger, 6, l.LastId()) },
			errCode: lib.CodeUnauthorized,
		},
		{
			name: "register an already registered vote account",
			tx: func() *lib.Transaction {
				return vote.NewRegisterTx(stranger, v.vote.PublicKey().Bytes(), l.LastId())
			},
			errCode: lib.CodeAlreadyRegistered,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			err := l.ProcessTransaction(test.tx())
			require.Error(t, err)
			require.Equal(t, test.errCode, err.Code())
			// no partial write survives: the history only holds the first vote
			state := voteState(t, l, v.vote.PublicKey().Bytes())
			require.Equal(t, []vote.Vote{{TickHeight: 1}}, state.Votes.Slice())
			require.Equal(t, lib.HexBytes(v.node.PublicKey().Bytes()), state.NodeId)
		})
	}
	// failed transactions don't create accounts
	account, e := l.GetAccount(stranger.PublicKey().Bytes())
	require.NoError(t, e)
	require.Nil(t, account)
}

func TestFailedExecutionReservesSignature(t *testing.T) {
	l := newTestLedger(t, lib.NullSink{})
	stranger, err := crypto.NewEd25519PrivateKey()
	require.NoError(t, err)
	tx := vote.NewVoteTx(stranger, 1, l.LastId())
	require.Equal(t, lib.CodeUnauthorized, l.ProcessTransaction(tx).Code())
	// resubmitting the same transaction is a replay
	require.Equal(t, lib.CodeDuplicateSignature, l.ProcessTransaction(tx).Code())
}

func TestFinalityState(t *testing.T) {
	l := newTestLedger(t, lib.NullSink{})
	// nothing confirmed yet
	require.False(t, l.Finality().Confirmed)
	require.Equal(t, uint64(math.MaxUint64), l.FinalityMS())
	// execute the function call
	l.SetFinality(4, 1000, 250)
	require.Equal(t, lib.FinalityState{
		Confirmed:                true,
		LastConfirmedTickHeight:  4,
		LastConfirmedTimestampMS: 1000,
		DurationMS:               250,
	}, l.Finality())
	require.EqualValues(t, 250, l.FinalityMS())
}

func TestGetFinalityTimestamp(t *testing.T) {
	l := newTestLedger(t, lib.NullSink{})
	for h := uint64(1); h <= 3; h++ {
		l.RegisterTick(tickId(h))
	}
	expected, ok := l.TickTimestamp(2)
	require.True(t, ok)
	// the supermajority is at tick height 2
	h, ts, ok := l.GetFinalityTimestamp([]finality.TickStake{{TickHeight: 3, Stake: 1}, {TickHeight: 2, Stake: 5}}, 6)
	require.True(t, ok)
	require.EqualValues(t, 2, h)
	require.Equal(t, expected, ts)
	// below threshold
	_, _, ok = l.GetFinalityTimestamp([]finality.TickStake{{TickHeight: 3, Stake: 1}}, 6)
	require.False(t, ok)
	// a tick height that was never registered has no timestamp
	_, _, ok = l.GetFinalityTimestamp([]finality.TickStake{{TickHeight: 9, Stake: 10}}, 6)
	require.False(t, ok)
}

func TestLeaderFinalityScenarios(t *testing.T) {
	sink := new(lib.MemorySink)
	l := newTestLedger(t, lib.NullSink{})
	// the leader votes too, but is excluded
	leader := newValidator(t, l, 100)
	// ten validators of stake 1
	validators := make([]validator, 10)
	for i := range validators {
		validators[i] = newValidator(t, l, 1)
	}
	for h := uint64(1); h <= 7; h++ {
		l.RegisterTick(tickId(h))
	}
	require.NoError(t, l.ProcessTransaction(vote.NewVoteTx(leader.vote, 7, l.LastId())))
	// scenario A: six validators vote for tick heights 1 through 6
	for i := 0; i < 6; i++ {
		require.NoError(t, l.ProcessTransaction(vote.NewVoteTx(validators[i].vote, uint64(i+1), l.LastId())))
	}
	s := finality.NewService(lib.DefaultFinalityConfig(), l, leader.node.PublicKey().Bytes(), sink, lib.NewNullLogger())
	now := lib.NowMS() + 10
	require.NoError(t, s.ComputeFinality(now))
	expected, ok := l.TickTimestamp(1)
	require.True(t, ok)
	require.EqualValues(t, 1, l.Finality().LastConfirmedTickHeight)
	require.Equal(t, expected, l.Finality().LastConfirmedTimestampMS)
	require.Equal(t, now-expected, l.FinalityMS())
	// scenario B: a seventh validator votes for tick height 7
	require.NoError(t, l.ProcessTransaction(vote.NewVoteTx(validators[6].vote, 7, l.LastId())))
	require.NoError(t, s.ComputeFinality(now))
	require.EqualValues(t, 2, l.Finality().LastConfirmedTickHeight)
	require.Len(t, sink.Measurements(lib.MeasurementLeaderFinality), 2)
}
