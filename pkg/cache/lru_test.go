package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_GetPut(t *testing.T) {
	t.Parallel()

	c := New[string](4)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Put(1, "one")

	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", got)

	c.Put(1, "uno")

	got, _ = c.Get(1)
	assert.Equal(t, "uno", got)
	assert.Equal(t, 1, c.Len())
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := New[int](2)

	c.Put(1, 10)
	c.Put(2, 20)
	c.Get(1)
	c.Put(3, 30)

	_, ok := c.Get(2)
	assert.False(t, ok, "key 2 should have been evicted")

	_, ok = c.Get(1)
	assert.True(t, ok)

	_, ok = c.Get(3)
	assert.True(t, ok)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestResultCache_DefaultSize(t *testing.T) {
	t.Parallel()

	c := New[int](0)
	assert.Equal(t, DefaultEntries, c.Stats().MaxEntries)
}

func TestResultCache_Stats(t *testing.T) {
	t.Parallel()

	c := New[int](2)
	c.Put(1, 1)
	c.Get(1)
	c.Get(1)
	c.Get(9)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)
	assert.Zero(t, Stats{}.HitRate())
}

func TestResultCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := New[int](16)

	var wg sync.WaitGroup

	for w := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 200 {
				key := uint64((w*200 + i) % 32)
				c.Put(key, i)
				c.Get(key)
			}
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	values := []float64{1, -2, 3.5}

	assert.Equal(t, Fingerprint(values, 0), Fingerprint([]float64{1, -2, 3.5}, 0))
	assert.NotEqual(t, Fingerprint(values, 0), Fingerprint(values, 0.5))
	assert.NotEqual(t, Fingerprint(values, 0), Fingerprint([]float64{1, -2}, 0))
	assert.NotEqual(t, Fingerprint([]float64{1, 2}, 0), Fingerprint([]float64{2, 1}, 0))
	assert.NotEqual(t, Fingerprint(nil, 0), Fingerprint([]float64{0}, 0))
}

func TestFingerprint_LongInput(t *testing.T) {
	t.Parallel()

	long := make([]float64, 3*fingerprintChunk+7)
	for i := range long {
		long[i] = float64(i)
	}

	other := append([]float64(nil), long...)
	other[len(other)-1] = -1

	assert.Equal(t, Fingerprint(long, 1), Fingerprint(append([]float64(nil), long...), 1))
	assert.NotEqual(t, Fingerprint(long, 1), Fingerprint(other, 1))
}
