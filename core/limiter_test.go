package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelLimiter(t *testing.T) {
	ml := NewModelLimiter(2)
	require.NoError(t, ml.Increment())
	require.NoError(t, ml.Increment())
	assert.Equal(t, 0, ml.Remaining())

	err := ml.Increment()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsageLimitExceeded)
	assert.Equal(t, 3, ml.Count())
}

func TestModelLimiterUnlimited(t *testing.T) {
	ml := NewModelLimiter(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ml.Increment())
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, ml.Count())
	assert.Equal(t, -1, ml.Remaining())
}
