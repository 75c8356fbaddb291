package ledger

import (
	"github.com/canopy-network/poh/lib"
)

func ErrUnknownLastId() lib.ErrorI {
	return lib.NewError(lib.CodeUnknownLastId, lib.LedgerModule, "last id is not in the status window")
}

func ErrDuplicateSignature() lib.ErrorI {
	return lib.NewError(lib.CodeDuplicateSignature, lib.LedgerModule, "signature already processed for this last id")
}

func ErrUnknownProgram() lib.ErrorI {
	return lib.NewError(lib.CodeUnknownProgram, lib.LedgerModule, "no program with the id")
}

func ErrEmptySignature() lib.ErrorI {
	return lib.NewError(lib.CodeEmptySignature, lib.LedgerModule, "transaction is unsigned")
}

func ErrNoAccountKeys() lib.ErrorI {
	return lib.NewError(lib.CodeNoAccountKeys, lib.LedgerModule, "transaction has no account keys")
}

func ErrAccountExists() lib.ErrorI {
	return lib.NewError(lib.CodeAccountExists, lib.LedgerModule, "account already exists")
}
