package get_state

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/store"
)

// maxWait верхняя граница long-poll ожидания
const maxWait = 30 * time.Second

// StateResponse HTTP response model
type StateResponse struct {
	Version uint64      `json:"version"`
	State   store.State `json:"state"`
}

// pollParams параметры long-poll: вернуть состояние новее версии after, ожидая не дольше wait
type pollParams struct {
	after uint64
	wait  time.Duration
}

func parsePollParams(afterStr, waitStr string) (*pollParams, error) {
	p := &pollParams{}
	if afterStr == "" {
		return p, nil
	}

	after, err := strconv.ParseUint(afterStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid after value: %w", err)
	}
	p.after = after

	if waitStr != "" {
		seconds, err := strconv.Atoi(waitStr)
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid wait value %q", waitStr)
		}
		p.wait = time.Duration(seconds) * time.Second
		if p.wait > maxWait {
			p.wait = maxWait
		}
	}
	return p, nil
}
