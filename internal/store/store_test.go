package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

func TestStore_DispatchIsAtomic(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := newRequest(fmt.Sprintf("r%d", i), domain.StatusOpen)
			s.Dispatch(func(st State) State { return AddToMine(st, r) })
		}(i)
	}
	wg.Wait()

	state, version := s.SnapshotWithVersion()
	assert.Len(t, state.MyRequests, 50)
	assert.Equal(t, 50, state.TotalMyRequests)
	assert.Equal(t, uint64(50), version)
	assert.NoError(t, state.CheckInvariants())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New()
	s.Dispatch(func(st State) State { return AddToMine(st, newRequest("r1", domain.StatusOpen)) })

	snap := s.Snapshot()
	snap.MyRequests[0] = nil
	snap.MyRequests = append(snap.MyRequests, newRequest("r2", domain.StatusOpen))

	fresh := s.Snapshot()
	require.Len(t, fresh.MyRequests, 1)
	assert.NotNil(t, fresh.MyRequests[0])
}

func TestStore_Subscribe(t *testing.T) {
	s := New()

	var versions []uint64
	unsubscribe := s.Subscribe(func(_ State, v uint64) {
		versions = append(versions, v)
	})

	s.Dispatch(ClearError)
	s.Dispatch(ClearError)
	unsubscribe()
	s.Dispatch(ClearError)

	assert.Equal(t, []uint64{1, 2}, versions)
	assert.Equal(t, uint64(3), s.Version())
}

func TestStore_WaitNewer(t *testing.T) {
	t.Run("returns at once when already newer", func(t *testing.T) {
		s := New()
		s.Dispatch(ClearError)

		_, v := s.WaitNewer(context.Background(), 0)
		assert.Equal(t, uint64(1), v)
	})

	t.Run("wakes up on dispatch", func(t *testing.T) {
		s := New()

		go func() {
			time.Sleep(20 * time.Millisecond)
			s.Dispatch(func(st State) State { return SetError(st, "late") })
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		state, v := s.WaitNewer(ctx, 0)
		assert.Equal(t, uint64(1), v)
		assert.Equal(t, "late", state.Error)
	})

	t.Run("gives up with the context", func(t *testing.T) {
		s := New()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, v := s.WaitNewer(ctx, 0)
		assert.Equal(t, uint64(0), v)
	})
}
