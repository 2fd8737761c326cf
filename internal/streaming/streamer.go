// Package streaming sends newly-visible chunks to a player as their
// position changes: diff the view-radius set against what the session has
// already been sent, generate anything missing nearest-first, and batch
// the result into byte-budgeted ChunkResponse frames.
package streaming

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/voxelcore/voxelserver/internal/netsession"
	"github.com/voxelcore/voxelserver/internal/protocol"
	"github.com/voxelcore/voxelserver/internal/world"
	"github.com/voxelcore/voxelserver/internal/worldmgr"
)

// DefaultMaxPayloadBytes is the estimated byte budget a ChunkResponse batch
// is filled up to. A batch always takes at least one chunk, and a single
// chunk's perChunkBytes estimate already exceeds this budget, so with the
// default every ChunkResponse carries exactly one chunk and is larger than
// the transport's reliable MTU.
const DefaultMaxPayloadBytes = 1200

// perChunkBytes is a conservative per-chunk estimate (one kind byte per
// cell plus a small header) used only to decide when a batch is full —
// not relied on for exact framing, since Processor.Serialize is the one
// source of truth for actual frame size.
const perChunkBytes = world.BlockCount + 32

// Streamer is stateless beyond its dependencies: all mutable state
// (sentChunkSet, position) lives on the Session it streams to.
type Streamer struct {
	world      *worldmgr.Manager
	sessions   *netsession.Manager
	viewRadius int
	maxPayload int
	log        zerolog.Logger
	metrics    *Metrics
}

// New builds a Streamer. viewRadius is in chunks; maxPayloadBytes <= 0
// falls back to DefaultMaxPayloadBytes.
func New(w *worldmgr.Manager, sessions *netsession.Manager, viewRadius, maxPayloadBytes int, log zerolog.Logger, metrics *Metrics) *Streamer {
	if maxPayloadBytes <= 0 {
		maxPayloadBytes = DefaultMaxPayloadBytes
	}
	return &Streamer{
		world:      w,
		sessions:   sessions,
		viewRadius: viewRadius,
		maxPayload: maxPayloadBytes,
		log:        log,
		metrics:    metrics,
	}
}

// Stream computes the chunk origins within view radius of session's
// current position, skips any already in session's sent set, fetches
// (generating as needed) each missing one nearest-first, and delivers them
// in one or more ChunkResponse batches before marking each sent. A chunk
// whose generation fails is logged and left unsent, to be retried on the
// next call. Must run on the event loop's own goroutine: it reads chunk
// contents, which carry no synchronization of their own.
func (s *Streamer) Stream(session *netsession.Session) error {
	center := vec3FToVec3(session.Position())
	origins := s.pendingOrigins(session, center)
	if len(origins) == 0 {
		return nil
	}

	sort.Slice(origins, func(i, j int) bool {
		return origins[i].DistSq(center) < origins[j].DistSq(center)
	})

	var (
		batch      = make([]protocol.ChunkPayload, 0, 8)
		batchBytes = 0
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.sessions.Send(session.ID, protocol.Message{
			Type: protocol.ChunkResponse,
			Body: &protocol.ChunkResponseBody{Chunks: batch},
		})
		if err != nil {
			return err
		}
		for _, c := range batch {
			session.MarkChunkSent(c.Position)
		}
		if s.metrics != nil {
			s.metrics.ChunksStreamed.Add(float64(len(batch)))
			s.metrics.BatchesSent.Inc()
		}
		batch = make([]protocol.ChunkPayload, 0, 8)
		batchBytes = 0
		return nil
	}

	for _, origin := range origins {
		chunk, err := s.world.Cache().Get(origin)
		if err != nil {
			s.log.Warn().Err(err).Str("origin", origin.String()).
				Msg("chunk generation failed, leaving unsent for retry on next position update")
			if s.metrics != nil {
				s.metrics.GenerationFailures.Inc()
			}
			continue
		}

		if batchBytes+perChunkBytes > s.maxPayload && len(batch) > 0 {
			if err := flush(); err != nil {
				return err
			}
		}

		batch = append(batch, protocol.ChunkPayload{
			Position: chunk.Position,
			Blocks:   protocol.EncodeChunkBlocks(chunk),
		})
		batchBytes += perChunkBytes
	}

	return flush()
}

// pendingOrigins enumerates every chunk origin in the X/Z square of the
// configured view radius around center's chunk, excluding origins session
// has already been sent.
func (s *Streamer) pendingOrigins(session *netsession.Session, center world.Vec3) []world.Vec3 {
	cx, _, cz := world.ChunkCoordsOf(center)
	origins := make([]world.Vec3, 0, (2*s.viewRadius+1)*(2*s.viewRadius+1))
	for dx := -s.viewRadius; dx <= s.viewRadius; dx++ {
		for dz := -s.viewRadius; dz <= s.viewRadius; dz++ {
			origin := world.WorldOrigin(cx+dx, 0, cz+dz)
			if session.HasSentChunk(origin) {
				continue
			}
			origins = append(origins, origin)
		}
	}
	return origins
}

func vec3FToVec3(v protocol.Vec3F) world.Vec3 {
	return world.Vec3{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}
