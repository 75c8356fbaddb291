package poh

import (
	"fmt"

	"github.com/canopy-network/poh/lib"
)

func ErrConflict() lib.ErrorI {
	return lib.NewError(lib.CodeConflict, lib.PoHModule, "the chain advanced past the expected id, retry with a fresh id")
}

func ErrRecorderClosed() lib.ErrorI {
	return lib.NewError(lib.CodeRecorderClosed, lib.PoHModule, "recorder is closed")
}

func ErrAlreadyStarted() lib.ErrorI {
	return lib.NewError(lib.CodeAlreadyStarted, lib.PoHModule, "service already started")
}

func ErrInvalidPoHMode(mode string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidPoHMode, lib.PoHModule, fmt.Sprintf("invalid poh mode %q", mode))
}

func ErrInvalidCadence() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidCadence, lib.PoHModule, "hashes per tick and tick interval must be greater than zero")
}

func ErrServiceNotStarted() lib.ErrorI {
	return lib.NewError(lib.CodeServiceNotStart, lib.PoHModule, "service not started")
}
