package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCellStoreRejectsOlderVersion(t *testing.T) {
	var c Cell[string]
	assert.True(t, c.Store(2, "second"))
	assert.False(t, c.Store(1, "first"))

	version, value := c.Load()
	assert.Equal(t, int64(2), version)
	assert.Equal(t, "second", value)
}

func TestCellStoreAcceptsEqualOrNewerVersion(t *testing.T) {
	var c Cell[int]
	assert.True(t, c.Store(1, 10))
	assert.True(t, c.Store(1, 11))
	_, value := c.Load()
	assert.Equal(t, 11, value)
}

func TestDebouncerDeliversOnlyTheLatestRequest(t *testing.T) {
	d := NewDebouncer[int](10 * time.Millisecond)
	var mu sync.Mutex
	var delivered []int

	deliver := func(v int) {
		mu.Lock()
		delivered = append(delivered, v)
		mu.Unlock()
	}

	d.Request(func() int { return 1 }, deliver, -1)
	d.Request(func() int { return 2 }, deliver, -1)

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require := assert.New(t)
	require.Len(delivered, 1)
	require.Equal(2, delivered[0])
}

func TestCancelTokenNilIsNotCancelled(t *testing.T) {
	var token *CancelToken
	assert.False(t, token.IsCancelled())
}

func TestCancelTokenCancel(t *testing.T) {
	token := NewCancelToken()
	assert.False(t, token.IsCancelled())
	token.Cancel()
	assert.True(t, token.IsCancelled())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "preload", StepPreload.String())
	assert.Equal(t, "plan", StepPlan.String())
}
