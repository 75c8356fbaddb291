package vote

import (
	"github.com/canopy-network/poh/lib"
)

// ProcessInstruction() executes a vote instruction against the keyed accounts
// Accounts are mutated in place; the caller persists them only if no error is returned
func ProcessInstruction(accounts []*lib.KeyedAccount, userdata []byte, metrics lib.MetricsSinkI) lib.ErrorI {
	// all vote instructions require accounts[0] to be a signer
	if len(accounts) == 0 {
		return ErrMissingAccounts(1, 0)
	}
	if !accounts[0].Signer {
		return ErrUnauthorized("account[0] is unsigned")
	}
	instruction, err := NewInstructionFromBytes(userdata)
	if err != nil {
		return err
	}
	switch instruction.Type {
	case InstructionRegister:
		return register(accounts)
	default:
		if err = newVote(accounts[0], instruction.Vote); err != nil {
			return err
		}
		// best effort, the sink never fails the instruction
		metrics.Submit(lib.MeasurementVoteNative, map[string]int64{"count": 1})
		return nil
	}
}

// register() initializes the vote state of accounts[1] for the signer of accounts[0]
func register(accounts []*lib.KeyedAccount) lib.ErrorI {
	if len(accounts) < 2 {
		return ErrMissingAccounts(2, len(accounts))
	}
	target := accounts[1].Account
	if !target.IsOwnedBy(ProgramId) {
		return ErrUnauthorized("account[1] is not assigned to the vote program")
	}
	if len(target.Data) != 0 {
		return ErrAlreadyRegistered()
	}
	target.Data = NewVoteState(accounts[0].Key).Bytes()
	return nil
}

// newVote() appends the vote to the history held by the signing vote account
func newVote(voteAccount *lib.KeyedAccount, v Vote) lib.ErrorI {
	if !voteAccount.Account.IsOwnedBy(ProgramId) {
		return ErrUnauthorized("account[0] is not assigned to the vote program")
	}
	state, err := NewVoteStateFromBytes(voteAccount.Account.Data)
	if err != nil {
		return err
	}
	state.AddVote(v)
	voteAccount.Account.Data = state.Bytes()
	return nil
}
