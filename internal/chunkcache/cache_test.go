package chunkcache

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voxelcore/voxelserver/internal/world"
)

func countingGenerator(delay time.Duration) (Generator, *atomic.Int64) {
	var calls atomic.Int64
	gen := func(origin world.Vec3) (*world.Chunk, error) {
		calls.Add(1)
		time.Sleep(delay)
		return world.NewChunk(origin), nil
	}
	return gen, &calls
}

func TestGetCachesAfterFirstGeneration(t *testing.T) {
	gen, calls := countingGenerator(0)
	c := New(gen, time.Hour, 0, zerolog.New(io.Discard), nil)

	origin := world.Vec3{X: 16, Y: 0, Z: 16}
	first, err := c.Get(origin)
	require.NoError(t, err)

	second, err := c.Get(origin)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.EqualValues(t, 1, calls.Load())
}

func TestConcurrentGetsSingleFlightToOneGeneration(t *testing.T) {
	gen, calls := countingGenerator(50 * time.Millisecond)
	c := New(gen, time.Hour, 0, zerolog.New(io.Discard), nil)

	origin := world.Vec3{X: 32, Y: 0, Z: 32}

	var wg sync.WaitGroup
	results := make([]*world.Chunk, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chunk, err := c.Get(origin)
			require.NoError(t, err)
			results[i] = chunk
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		require.Same(t, results[0], r)
	}
}

func TestEvictExpiredRemovesOldEntries(t *testing.T) {
	gen, _ := countingGenerator(0)
	c := New(gen, time.Minute, 0, zerolog.New(io.Discard), nil)

	origin := world.Vec3{X: 0, Y: 0, Z: 0}
	_, err := c.Get(origin)
	require.NoError(t, err)

	require.Equal(t, 0, c.EvictExpired(time.Now()))
	require.Equal(t, 1, c.EvictExpired(time.Now().Add(2*time.Minute)))
	require.Equal(t, 0, c.Len())
}

func TestEnforceCapEvictsLeastRecentlyAccessedFirst(t *testing.T) {
	gen, _ := countingGenerator(0)
	c := New(gen, time.Hour, 2, zerolog.New(io.Discard), nil)

	a := world.Vec3{X: 0, Y: 0, Z: 0}
	b := world.Vec3{X: 16, Y: 0, Z: 0}
	d := world.Vec3{X: 32, Y: 0, Z: 0}

	_, err := c.Get(a)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = c.Get(b)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = c.Get(d)
	require.NoError(t, err)

	require.Equal(t, 1, c.EnforceCap())
	require.Equal(t, 2, c.Len())

	_, stillCached := c.entries[d]
	require.True(t, stillCached)
	_, aStillCached := c.entries[a]
	require.False(t, aStillCached)
}

func TestStatsReflectsHitsAndMisses(t *testing.T) {
	gen, _ := countingGenerator(0)
	c := New(gen, time.Hour, 0, zerolog.New(io.Discard), nil)

	origin := world.Vec3{X: 0, Y: 0, Z: 0}
	_, err := c.Get(origin)
	require.NoError(t, err)
	_, err = c.Get(origin)
	require.NoError(t, err)

	stats := c.Stats()
	require.EqualValues(t, 1, stats.Misses)
	require.EqualValues(t, 1, stats.Hits)
	require.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestPopulateAreaGeneratesSquareRegion(t *testing.T) {
	gen, calls := countingGenerator(0)
	c := New(gen, time.Hour, 0, zerolog.New(io.Discard), nil)

	c.PopulateArea(1)
	require.EqualValues(t, 9, calls.Load()) // 3x3 region
	require.Equal(t, 9, c.Len())
}
