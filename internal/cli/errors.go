package cli

import (
	"errors"

	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/store"
)

func isTransitionError(err error) bool {
	var terr *lifecycle.TransitionError
	return errors.As(err, &terr)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
