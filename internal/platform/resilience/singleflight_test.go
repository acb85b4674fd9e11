package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_Do_CollapsesConcurrentCalls(t *testing.T) {
	var g Group[string]
	var runs, leaders atomic.Int32

	const callers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, err, shared := g.Do("week:3", func() (string, error) {
				runs.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "done", nil
			})
			if !shared {
				leaders.Add(1)
			}
			assert.NoError(t, err)
			assert.Equal(t, "done", got)
		}()
	}

	close(start)
	wg.Wait()

	require.EqualValues(t, 1, runs.Load())
	assert.EqualValues(t, 1, leaders.Load())
}

func TestGroup_Do_RunsAgainAfterCompletion(t *testing.T) {
	var g Group[int]
	boom := errors.New("boom")

	_, err, shared := g.Do("k", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, shared)

	got, err, _ := g.Do("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}
