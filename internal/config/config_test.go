package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelcore/voxelserver/internal/codec"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseAppliesDefaultsForOmittedFields(t *testing.T) {
	cfg, err := Parse([]byte(`
network:
  port: 9999
`))
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Network.Port)
	require.Equal(t, DefaultTickIntervalMs, cfg.EventLoop.TickIntervalMs)
	require.Equal(t, DefaultInitialChunkRadius, cfg.ChunkGenerator.InitialChunkRadius)
}

func TestParseMapsCompressionAndEncryptionNames(t *testing.T) {
	cfg, err := Parse([]byte(`
network:
  compression: LZ4
  encryption: AES256
  encryptionKeyBase64: c29tZWtleQ==
`))
	require.NoError(t, err)
	require.Equal(t, codec.CompressionLZ4, cfg.Network.Compression)
	require.Equal(t, codec.EncryptionAES256CBC, cfg.Network.Encryption)
}

func TestParseRejectsUnknownCompressionName(t *testing.T) {
	_, err := Parse([]byte(`
network:
  compression: Zstd
`))
	require.Error(t, err)
}

func TestParseRequiresEncryptionKeyWhenEncryptionEnabled(t *testing.T) {
	_, err := Parse([]byte(`
network:
  encryption: ChaCha20Poly1305
`))
	require.Error(t, err)
}

func TestParseRejectsOutOfRangePort(t *testing.T) {
	_, err := Parse([]byte(`
network:
  port: 70000
`))
	require.Error(t, err)
}

func TestListenAddrFormatsPort(t *testing.T) {
	cfg := Default()
	cfg.Network.Port = 1234
	require.Equal(t, ":1234", cfg.ListenAddr())
}

func TestEventLoopConfigConvertsToLoopConfig(t *testing.T) {
	cfg := Default()
	loopCfg := cfg.EventLoop.ToLoopConfig()
	require.Equal(t, cfg.EventLoop.TickIntervalMs, int(loopCfg.TickInterval.Milliseconds()))
	require.Equal(t, cfg.EventLoop.MaxActionsPerTick, loopCfg.MaxActionsPerTick)
}

func TestChunkGeneratorConfigConvertsToWorldMgrConfig(t *testing.T) {
	cfg := Default()
	cfg.ChunkGenerator.CacheExpirationMinutes = 10
	worldCfg := cfg.ChunkGenerator.ToWorldMgrConfig()
	require.Equal(t, cfg.ChunkGenerator.InitialChunkRadius, worldCfg.InitialChunkRadius)
	require.Equal(t, 10*60, int(worldCfg.TTL.Seconds()))
	require.Equal(t, DefaultEvictionSweepIntervalSec, int(worldCfg.SweepInterval.Seconds()))
}

func TestParseAppliesMaxQueueDepthAndSweepIntervalOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
eventLoop:
  maxQueueDepth: 500
chunkGenerator:
  evictionSweepIntervalSeconds: 15
`))
	require.NoError(t, err)
	require.Equal(t, 500, cfg.EventLoop.MaxQueueDepth)
	require.Equal(t, 15, cfg.ChunkGenerator.EvictionSweepIntervalSec)
}

func TestParseRejectsOutOfRangeSweepInterval(t *testing.T) {
	_, err := Parse([]byte(`
chunkGenerator:
  evictionSweepIntervalSeconds: 100000
`))
	require.Error(t, err)
}
