package vote

import (
	"encoding/json"
	"errors"

	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"google.golang.org/protobuf/encoding/protowire"
)

// MaxVoteHistory is the number of most recent votes kept per validator
const MaxVoteHistory = 32

// ProgramId is the identity of the vote program; vote accounts must be owned by it
var ProgramId = crypto.Hash([]byte("vote_program"))

// Vote acknowledges the chain up to a tick height
type Vote struct {
	TickHeight uint64 `json:"tickHeight"`
}

// VoteState is the account data of a vote account: the validator it votes for and its bounded vote history
type VoteState struct {
	NodeId lib.HexBytes    // the validator's public key, whose balance is its stake
	Votes  *lib.Ring[Vote] // oldest to newest, at most MaxVoteHistory
}

const (
	stateFieldNodeId protowire.Number = iota + 1
	stateFieldVotes
)

// NewVoteState() returns a vote state with an empty history
func NewVoteState(nodeId []byte) *VoteState {
	return &VoteState{NodeId: lib.CopyBytes(nodeId), Votes: lib.NewRing[Vote](MaxVoteHistory)}
}

// AddVote() appends the vote, evicting the oldest when the history is full
func (x *VoteState) AddVote(v Vote) {
	x.Votes.Push(v)
}

// LastVote() returns the most recent vote
func (x *VoteState) LastVote() (Vote, bool) { return x.Votes.Newest() }

// Bytes() encodes the vote state in the protobuf wire format
func (x *VoteState) Bytes() (bz []byte) {
	heights := make([]uint64, 0, x.Votes.Len())
	x.Votes.Range(func(_ int, v Vote) bool {
		heights = append(heights, v.TickHeight)
		return true
	})
	bz = lib.AppendBytesField(bz, stateFieldNodeId, x.NodeId)
	return lib.AppendPackedVarints(bz, stateFieldVotes, heights)
}

// NewVoteStateFromBytes() decodes the account data of a vote account
func NewVoteStateFromBytes(bz []byte) (*VoteState, lib.ErrorI) {
	if len(bz) == 0 {
		return nil, ErrDeserialize(errors.New("empty account data"))
	}
	var (
		nodeId  []byte
		heights []uint64
	)
	err := lib.ReadFields(bz, func(f lib.ProtoField) lib.ErrorI {
		if f.Type != protowire.BytesType {
			return lib.ErrWrongWireType(f)
		}
		switch f.Num {
		case stateFieldNodeId:
			nodeId = lib.CopyBytes(f.Bytes)
		case stateFieldVotes:
			h, e := lib.ReadPackedVarints(f.Bytes)
			if e != nil {
				return e
			}
			heights = append(heights, h...)
		}
		return nil
	})
	if err != nil {
		return nil, ErrDeserialize(err)
	}
	if len(nodeId) == 0 {
		return nil, ErrDeserialize(ErrInvalidVoteStateNode())
	}
	if len(heights) > MaxVoteHistory {
		return nil, ErrDeserialize(ErrVoteHistoryTooLong(len(heights)))
	}
	x := NewVoteState(nodeId)
	for _, h := range heights {
		x.AddVote(Vote{TickHeight: h})
	}
	return x, nil
}

// IsVoteAccount() returns true if the account is owned by the vote program and holds a vote state
func IsVoteAccount(a *lib.Account) bool {
	return a != nil && a.IsOwnedBy(ProgramId) && len(a.Data) != 0
}

// jsonVoteState is the json representation of a VoteState
type jsonVoteState struct {
	NodeId lib.HexBytes `json:"nodeId"`
	Votes  []Vote       `json:"votes"`
}

// MarshalJSON() implements the json.Marshaler interface
func (x *VoteState) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonVoteState{NodeId: x.NodeId, Votes: x.Votes.Slice()})
}

// UnmarshalJSON() implements the json.Unmarshaler interface
func (x *VoteState) UnmarshalJSON(b []byte) error {
	j := new(jsonVoteState)
	if err := json.Unmarshal(b, j); err != nil {
		return err
	}
	if len(j.Votes) > MaxVoteHistory {
		return ErrVoteHistoryTooLong(len(j.Votes))
	}
	*x = *NewVoteState(j.NodeId)
	for _, v := range j.Votes {
		x.AddVote(v)
	}
	return nil
}
