package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firedRecorder struct {
	mu    sync.Mutex
	fires []uint
}

func (r *firedRecorder) record(key uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fires = append(r.fires, key)
}

func (r *firedRecorder) snapshot() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint(nil), r.fires...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	rec := &firedRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.record)

	for i := 0; i < 10; i++ {
		d.Trigger(42)
	}

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	// Quiet period, no further fires
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []uint{42}, rec.snapshot())
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	rec := &firedRecorder{}
	d := NewDebouncer(20*time.Millisecond, rec.record)

	d.Trigger(1)
	d.Trigger(2)
	d.Trigger(1)

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	fired := rec.snapshot()
	assert.ElementsMatch(t, []uint{1, 2}, fired)
}

func TestDebouncer_NewBurstAfterFlushFiresAgain(t *testing.T) {
	rec := &firedRecorder{}
	d := NewDebouncer(15*time.Millisecond, rec.record)

	d.Trigger(7)
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	d.Trigger(7)
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopFlushesPending(t *testing.T) {
	rec := &firedRecorder{}
	d := NewDebouncer(time.Hour, rec.record)

	d.Trigger(9)
	d.Stop()

	assert.Equal(t, []uint{9}, rec.snapshot())

	// Triggers after Stop are dropped
	d.Trigger(10)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []uint{9}, rec.snapshot())
}
