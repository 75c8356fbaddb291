package vote

import (
	"fmt"

	"github.com/canopy-network/poh/lib"
)

func ErrDeserialize(err error) lib.ErrorI {
	return lib.NewError(lib.CodeDeserialize, lib.VoteModule, fmt.Sprintf("vote state deserialization failed with err: %s", err.Error()))
}

func ErrUnauthorized(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeUnauthorized, lib.VoteModule, fmt.Sprintf("unauthorized: %s", reason))
}

func ErrInvalidInstruction(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidInstruction, lib.VoteModule, fmt.Sprintf("invalid vote instruction: %s", err.Error()))
}

func ErrAlreadyRegistered() lib.ErrorI {
	return lib.NewError(lib.CodeAlreadyRegistered, lib.VoteModule, "vote account already holds a vote state")
}

func ErrMissingAccounts(expected, got int) lib.ErrorI {
	return lib.NewError(lib.CodeMissingAccounts, lib.VoteModule, fmt.Sprintf("expected %d accounts, got %d", expected, got))
}

func ErrVoteHistoryTooLong(n int) lib.ErrorI {
	return lib.NewError(lib.CodeVoteHistoryTooLong, lib.VoteModule, fmt.Sprintf("vote history of %d exceeds the max of %d", n, MaxVoteHistory))
}

func ErrUnknownInstruction(tag uint64) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownInstruction, lib.VoteModule, fmt.Sprintf("unknown vote instruction %d", tag))
}

func ErrInvalidVoteStateNode() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidVoteStateNode, lib.VoteModule, "vote state is missing the node id")
}
