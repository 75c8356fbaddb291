package finality

import (
	"bytes"
	"math"
	"math/bits"
	"sort"

	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/vote"
)

// TickStake is a voter's most recent voted tick height weighted by its stake
type TickStake struct {
	TickHeight uint64
	Stake      uint64
}

// Voter is the minimal tuple copied out of the account table per vote account
type Voter struct {
	NodeId         []byte // the validator the vote account belongs to
	LastTickHeight uint64 // the most recent vote, valid if HasVote
	HasVote        bool   // false for a registered validator that never voted
	Stake          uint64 // the validator's balance
}

// TimestampLookupI maps the supermajority tick height to the time its tick was registered
type TimestampLookupI interface {
	GetFinalityTimestamp(pairs []TickStake, threshold uint64) (tickHeight, timestampMS uint64, ok bool)
}

// Threshold() is the supermajority stake: floor(2 * total / 3), met inclusively
// Divides first so totals above MaxUint64/2 don't wrap
func Threshold(total uint64) uint64 { return total/3*2 + total%3*2/3 }

// addStake() sums stake, saturating at MaxUint64
func addStake(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// SupermajorityTickHeight() returns the highest tick height T such that the stake of voters whose most recent
// vote is at or above T meets the threshold
func SupermajorityTickHeight(pairs []TickStake, threshold uint64) (uint64, bool) {
	sorted := make([]TickStake, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TickHeight > sorted[j].TickHeight })
	var accumulated uint64
	for _, p := range sorted {
		accumulated = addStake(accumulated, p.Stake)
		if accumulated >= threshold {
			return p.TickHeight, true
		}
	}
	return 0, false
}

// Snapshot() copies the voter tuples out of the account table, skipping the leader's own vote accounts
// Accounts that don't hold a decodable vote state are ignored
func Snapshot(r lib.AccountReaderI, leaderId []byte) (voters []Voter, err lib.ErrorI) {
	err = r.IterateAccounts(func(_ []byte, account *lib.Account) lib.ErrorI {
		if !vote.IsVoteAccount(account) {
			return nil
		}
		state, e := vote.NewVoteStateFromBytes(account.Data)
		if e != nil {
			return nil
		}
		if bytes.Equal(state.NodeId, leaderId) {
			return nil
		}
		stakeAccount, e := r.GetAccount(state.NodeId)
		if e != nil {
			return e
		}
		v := Voter{NodeId: state.NodeId}
		if stakeAccount != nil {
			v.Stake = stakeAccount.Balance
		}
		if last, ok := state.LastVote(); ok {
			v.LastTickHeight, v.HasVote = last.TickHeight, true
		}
		voters = append(voters, v)
		return nil
	})
	return
}

// ComputeFinality() returns the supermajority tick height and its registration timestamp
// Every voter's stake counts toward the total, but only voters with a vote contribute a pair
func ComputeFinality(voters []Voter, lookup TimestampLookupI) (tickHeight, timestampMS uint64, err lib.ErrorI) {
	var total uint64
	pairs := make([]TickStake, 0, len(voters))
	for _, v := range voters {
		total = addStake(total, v.Stake)
		if v.HasVote {
			pairs = append(pairs, TickStake{TickHeight: v.LastTickHeight, Stake: v.Stake})
		}
	}
	if total == 0 {
		return 0, 0, ErrNoValidSupermajority()
	}
	tickHeight, timestampMS, ok := lookup.GetFinalityTimestamp(pairs, Threshold(total))
	if !ok {
		return 0, 0, ErrNoValidSupermajority()
	}
	return tickHeight, timestampMS, nil
}
