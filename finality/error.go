package finality

import "github.com/canopy-network/poh/lib"

func ErrNoValidSupermajority() lib.ErrorI {
	return lib.NewError(lib.CodeNoValidSupermajority, lib.FinalityModule, "no valid supermajority")
}
