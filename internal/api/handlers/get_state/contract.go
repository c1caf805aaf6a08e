package get_state

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/store"
)

type StateSource interface {
	SnapshotWithVersion() (store.State, uint64)
	WaitNewer(ctx context.Context, after uint64) (store.State, uint64)
}

type Logger interface {
	Warn(format string, v ...interface{})
}
