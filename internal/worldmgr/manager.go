// Package worldmgr is the thin facade the rest of the server uses to read
// and mutate block state: coordinate algebra over internal/world composed
// with the generation-backed chunk cache. It is its own package rather
// than folded into internal/world to avoid an import cycle — the cache's
// Generator is a generation pipeline, and generation itself depends on
// internal/world.
package worldmgr

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxelcore/voxelserver/internal/chunkcache"
	"github.com/voxelcore/voxelserver/internal/eventloop"
	"github.com/voxelcore/voxelserver/internal/generation"
	"github.com/voxelcore/voxelserver/internal/world"
)

// Config controls the chunk cache a Manager owns.
type Config struct {
	TTL                time.Duration
	MaxCachedChunks    int
	InitialChunkRadius int

	// SweepInterval is how often RunEvictionSweep applies TTL/LRU
	// eviction. Zero falls back to DefaultSweepInterval.
	SweepInterval time.Duration
}

// DefaultSweepInterval is used whenever a Config leaves SweepInterval
// unset.
const DefaultSweepInterval = time.Minute

// Manager reduces every block read or write to chunkCoordsOf -> getChunk ->
// in-place update. Reads and immediate mutations must only happen on the
// event loop's own goroutine, since Chunk carries no synchronization of its
// own; ModifyBlock and RemoveBlock give callers on other goroutines a safe
// path by enqueuing the mutation instead of touching the chunk directly.
type Manager struct {
	cache         *chunkcache.Cache
	loop          *eventloop.Loop
	sweepInterval time.Duration
}

// New builds a Manager backed by pipeline's Generate method, eagerly
// populating cfg.InitialChunkRadius chunks around the world origin if
// positive.
func New(pipeline *generation.Pipeline, cfg Config, loop *eventloop.Loop, log zerolog.Logger, metrics *chunkcache.Metrics) *Manager {
	cache := chunkcache.New(pipeline.Generate, cfg.TTL, cfg.MaxCachedChunks, log, metrics)
	if cfg.InitialChunkRadius > 0 {
		cache.PopulateArea(cfg.InitialChunkRadius)
	}
	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Manager{cache: cache, loop: loop, sweepInterval: sweepInterval}
}

// RunEvictionSweep runs the cache's TTL/LRU eviction sweep until ctx is
// cancelled. Blocks the calling goroutine — callers run it via `go`, tying
// its lifetime to the same context the rest of the server shuts down on.
func (m *Manager) RunEvictionSweep(ctx context.Context) {
	stop := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	m.cache.Run(stop, m.sweepInterval)
}

// GetBlock reads the block at a world-space position. Must be called from
// the event loop's own goroutine.
func (m *Manager) GetBlock(pos world.Vec3) (world.Block, error) {
	chunk, err := m.cache.Get(world.ChunkOriginOf(pos))
	if err != nil {
		return world.Block{}, err
	}
	local := world.LocalOf(pos)
	return chunk.Block(local.X, local.Y, local.Z)
}

// ModifyBlockNow mutates pos in place immediately. Must only be called from
// the event loop's own goroutine — typically from inside a listener or a
// delayed/async action's onComplete.
func (m *Manager) ModifyBlockNow(pos world.Vec3, kind world.BlockKind) error {
	chunk, err := m.cache.Get(world.ChunkOriginOf(pos))
	if err != nil {
		return err
	}
	local := world.LocalOf(pos)
	return chunk.SetBlock(local.X, local.Y, local.Z, kind)
}

// RemoveBlockNow is ModifyBlockNow(pos, world.Air).
func (m *Manager) RemoveBlockNow(pos world.Vec3) error {
	return m.ModifyBlockNow(pos, world.Air)
}

// ModifyBlock is safe to call from any goroutine: it enqueues the mutation
// onto the event loop at priority and reports the outcome via onDone, which
// may be nil if the caller doesn't need it.
func (m *Manager) ModifyBlock(priority eventloop.Priority, pos world.Vec3, kind world.BlockKind, onDone func(error)) eventloop.ActionID {
	return m.loop.Enqueue(priority, func() {
		err := m.ModifyBlockNow(pos, kind)
		if onDone != nil {
			onDone(err)
		}
	})
}

// RemoveBlock is ModifyBlock(priority, pos, world.Air, onDone).
func (m *Manager) RemoveBlock(priority eventloop.Priority, pos world.Vec3, onDone func(error)) eventloop.ActionID {
	return m.ModifyBlock(priority, pos, world.Air, onDone)
}

// Cache exposes the underlying chunk cache to streaming and diagnostics
// code that needs direct Get/Stats/PopulateArea access.
func (m *Manager) Cache() *chunkcache.Cache {
	return m.cache
}
