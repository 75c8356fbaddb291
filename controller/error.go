package controller

import (
	"fmt"

	"github.com/canopy-network/poh/lib"
)

func ErrErrorGroup(err error) lib.ErrorI {
	return lib.NewError(lib.CodeErrorGroup, lib.ControllerModule, fmt.Sprintf("errgroup.Wait() failed with err: %s", err.Error()))
}
