package vote

import (
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"google.golang.org/protobuf/encoding/protowire"
)

// InstructionType tags the vote instruction union
type InstructionType uint64

const (
	InstructionRegister InstructionType = iota + 1 // accounts: [signer, vote account]
	InstructionNewVote                             // accounts: [vote account (signer)]
)

// Instruction is the decoded userdata of a vote program transaction
type Instruction struct {
	Type InstructionType
	Vote Vote // set for NewVote
}

const (
	instructionFieldType protowire.Number = iota + 1
	instructionFieldTickHeight
)

// Bytes() encodes the instruction in the protobuf wire format
func (x *Instruction) Bytes() (bz []byte) {
	bz = lib.AppendVarintField(bz, instructionFieldType, uint64(x.Type))
	return lib.AppendVarintField(bz, instructionFieldTickHeight, x.Vote.TickHeight)
}

// NewInstructionFromBytes() decodes transaction userdata into a vote instruction
func NewInstructionFromBytes(bz []byte) (*Instruction, lib.ErrorI) {
	x := new(Instruction)
	err := lib.ReadFields(bz, func(f lib.ProtoField) lib.ErrorI {
		if f.Type != protowire.VarintType {
			return lib.ErrWrongWireType(f)
		}
		switch f.Num {
		case instructionFieldType:
			x.Type = InstructionType(f.Varint)
		case instructionFieldTickHeight:
			x.Vote.TickHeight = f.Varint
		}
		return nil
	})
	if err != nil {
		return nil, ErrInvalidInstruction(err)
	}
	switch x.Type {
	case InstructionRegister, InstructionNewVote:
		return x, nil
	default:
		return nil, ErrUnknownInstruction(uint64(x.Type))
	}
}

// NewRegisterTx() creates a signed transaction registering the vote account on behalf of the validator
func NewRegisterTx(node crypto.PrivateKeyI, voteAccount, lastId []byte) *lib.Transaction {
	tx := &lib.Transaction{
		AccountKeys: []lib.HexBytes{node.PublicKey().Bytes(), voteAccount},
		LastId:      lastId,
		ProgramId:   ProgramId,
		Userdata:    (&Instruction{Type: InstructionRegister}).Bytes(),
	}
	tx.Sign(node)
	return tx
}

// NewVoteTx() creates a transaction signed by the vote account voting for the tick height
func NewVoteTx(voteAccount crypto.PrivateKeyI, tickHeight uint64, lastId []byte) *lib.Transaction {
	tx := &lib.Transaction{
		AccountKeys: []lib.HexBytes{voteAccount.PublicKey().Bytes()},
		LastId:      lastId,
		ProgramId:   ProgramId,
		Userdata:    (&Instruction{Type: InstructionNewVote, Vote: Vote{TickHeight: tickHeight}}).Bytes(),
	}
	tx.Sign(voteAccount)
	return tx
}
