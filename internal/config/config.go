// Package config loads and validates the server's YAML configuration
// document: the network transport, the event loop, the chunk generator,
// and the ambient logging section.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voxelcore/voxelserver/internal/codec"
	"github.com/voxelcore/voxelserver/internal/eventloop"
	"github.com/voxelcore/voxelserver/internal/validation"
	"github.com/voxelcore/voxelserver/internal/worldmgr"
)

// Defaults applied to any field a loaded document omits.
const (
	DefaultPort                     = 7666
	DefaultTickIntervalMs           = 50
	DefaultMaxActionsPerTick        = 256
	DefaultSlowActionThresholdMs    = 20
	DefaultMaxQueueDepth            = 10_000
	DefaultCacheExpirationMinutes   = 30
	DefaultInitialChunkRadius       = 4
	DefaultEvictionSweepIntervalSec = 60
)

// NetworkConfig is the `network` document section.
type NetworkConfig struct {
	Port                int
	Compression         codec.Compression
	Encryption          codec.Encryption
	EncryptionKeyBase64 string
}

// EventLoopConfig is the `eventLoop` document section.
type EventLoopConfig struct {
	TickIntervalMs        int
	MaxActionsPerTick     int
	SlowActionThresholdMs int
	MaxQueueDepth         int
	EnableDetailedMetrics bool
}

// ToLoopConfig adapts this section into the shape internal/eventloop.New
// expects.
func (c EventLoopConfig) ToLoopConfig() eventloop.Config {
	return eventloop.Config{
		TickInterval:          time.Duration(c.TickIntervalMs) * time.Millisecond,
		MaxActionsPerTick:     c.MaxActionsPerTick,
		SlowActionThreshold:   time.Duration(c.SlowActionThresholdMs) * time.Millisecond,
		MaxQueueDepth:         c.MaxQueueDepth,
		EnableDetailedMetrics: c.EnableDetailedMetrics,
	}
}

// ChunkGeneratorConfig is the `chunkGenerator` document section.
type ChunkGeneratorConfig struct {
	Seed                     int64
	CacheExpirationMinutes   int
	InitialChunkRadius       int
	EvictionSweepIntervalSec int
}

// ToWorldMgrConfig adapts this section into the shape worldmgr.New expects.
func (c ChunkGeneratorConfig) ToWorldMgrConfig() worldmgr.Config {
	return worldmgr.Config{
		TTL:                time.Duration(c.CacheExpirationMinutes) * time.Minute,
		InitialChunkRadius: c.InitialChunkRadius,
		SweepInterval:      time.Duration(c.EvictionSweepIntervalSec) * time.Second,
	}
}

// LoggingConfig is the ambient `logging` section: not named in the
// persisted-state surface, but carried regardless, the same way every other
// section is, since logging configuration is never a feature a spec's
// non-goals could exclude.
type LoggingConfig struct {
	Level string
	JSON  bool
}

// Config is the fully-resolved, validated configuration document.
type Config struct {
	Network        NetworkConfig
	EventLoop      EventLoopConfig
	ChunkGenerator ChunkGeneratorConfig
	Logging        LoggingConfig
}

// Default returns a Config with every field at its documented default.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Port:        DefaultPort,
			Compression: codec.CompressionNone,
			Encryption:  codec.EncryptionNone,
		},
		EventLoop: EventLoopConfig{
			TickIntervalMs:        DefaultTickIntervalMs,
			MaxActionsPerTick:     DefaultMaxActionsPerTick,
			SlowActionThresholdMs: DefaultSlowActionThresholdMs,
			MaxQueueDepth:         DefaultMaxQueueDepth,
		},
		ChunkGenerator: ChunkGeneratorConfig{
			CacheExpirationMinutes:   DefaultCacheExpirationMinutes,
			InitialChunkRadius:       DefaultInitialChunkRadius,
			EvictionSweepIntervalSec: DefaultEvictionSweepIntervalSec,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// document is the literal on-disk YAML shape: compression and encryption
// are spelled out by name, not by the numeric codec constants Config uses
// internally.
type document struct {
	Network struct {
		Port                int    `yaml:"port"`
		Compression         string `yaml:"compression"`
		Encryption          string `yaml:"encryption"`
		EncryptionKeyBase64 string `yaml:"encryptionKeyBase64"`
	} `yaml:"network"`
	EventLoop struct {
		TickIntervalMs        int  `yaml:"tickIntervalMs"`
		MaxActionsPerTick     int  `yaml:"maxActionsPerTick"`
		SlowActionThresholdMs int  `yaml:"slowActionThresholdMs"`
		MaxQueueDepth         int  `yaml:"maxQueueDepth"`
		EnableDetailedMetrics bool `yaml:"enableDetailedMetrics"`
	} `yaml:"eventLoop"`
	ChunkGenerator struct {
		Seed                     int64 `yaml:"seed"`
		CacheExpirationMinutes   int   `yaml:"cacheExpirationMinutes"`
		InitialChunkRadius       int   `yaml:"initialChunkRadius"`
		EvictionSweepIntervalSec int   `yaml:"evictionSweepIntervalSeconds"`
	} `yaml:"chunkGenerator"`
	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`
}

// Load reads and validates the YAML document at path. A field the document
// omits keeps its Default() value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates and converts a YAML document already read into memory,
// so callers that receive config bytes from somewhere other than a file
// (tests, embedded defaults) don't need a real path.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse document: %w", err)
	}

	if doc.Network.Port != 0 {
		cfg.Network.Port = doc.Network.Port
	}
	compression, err := parseCompression(doc.Network.Compression)
	if err != nil {
		return nil, err
	}
	cfg.Network.Compression = compression

	encryption, err := parseEncryption(doc.Network.Encryption)
	if err != nil {
		return nil, err
	}
	cfg.Network.Encryption = encryption
	cfg.Network.EncryptionKeyBase64 = doc.Network.EncryptionKeyBase64

	if doc.EventLoop.TickIntervalMs != 0 {
		cfg.EventLoop.TickIntervalMs = doc.EventLoop.TickIntervalMs
	}
	if doc.EventLoop.MaxActionsPerTick != 0 {
		cfg.EventLoop.MaxActionsPerTick = doc.EventLoop.MaxActionsPerTick
	}
	if doc.EventLoop.SlowActionThresholdMs != 0 {
		cfg.EventLoop.SlowActionThresholdMs = doc.EventLoop.SlowActionThresholdMs
	}
	if doc.EventLoop.MaxQueueDepth != 0 {
		cfg.EventLoop.MaxQueueDepth = doc.EventLoop.MaxQueueDepth
	}
	cfg.EventLoop.EnableDetailedMetrics = doc.EventLoop.EnableDetailedMetrics

	cfg.ChunkGenerator.Seed = doc.ChunkGenerator.Seed
	if doc.ChunkGenerator.CacheExpirationMinutes != 0 {
		cfg.ChunkGenerator.CacheExpirationMinutes = doc.ChunkGenerator.CacheExpirationMinutes
	}
	if doc.ChunkGenerator.InitialChunkRadius != 0 {
		cfg.ChunkGenerator.InitialChunkRadius = doc.ChunkGenerator.InitialChunkRadius
	}
	if doc.ChunkGenerator.EvictionSweepIntervalSec != 0 {
		cfg.ChunkGenerator.EvictionSweepIntervalSec = doc.ChunkGenerator.EvictionSweepIntervalSec
	}

	if doc.Logging.Level != "" {
		cfg.Logging.Level = doc.Logging.Level
	}
	cfg.Logging.JSON = doc.Logging.JSON

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field this package is responsible for reading
// against the ranges the rest of the server assumes.
func (c *Config) Validate() error {
	if err := validation.ValidateRangeInt(c.Network.Port, 1, 65535); err != nil {
		return fmt.Errorf("config: network.port: %w", err)
	}
	if err := validation.ValidateRangeInt(c.EventLoop.TickIntervalMs, 1, 60_000); err != nil {
		return fmt.Errorf("config: eventLoop.tickIntervalMs: %w", err)
	}
	if err := validation.ValidateRangeInt(c.EventLoop.MaxActionsPerTick, 1, 1_000_000); err != nil {
		return fmt.Errorf("config: eventLoop.maxActionsPerTick: %w", err)
	}
	if err := validation.ValidateRangeInt(c.EventLoop.SlowActionThresholdMs, 1, 60_000); err != nil {
		return fmt.Errorf("config: eventLoop.slowActionThresholdMs: %w", err)
	}
	if err := validation.ValidateRangeInt(c.EventLoop.MaxQueueDepth, 0, 10_000_000); err != nil {
		return fmt.Errorf("config: eventLoop.maxQueueDepth: %w", err)
	}
	if err := validation.ValidateRangeInt(c.ChunkGenerator.InitialChunkRadius, 0, 64); err != nil {
		return fmt.Errorf("config: chunkGenerator.initialChunkRadius: %w", err)
	}
	if err := validation.ValidateRangeInt(c.ChunkGenerator.EvictionSweepIntervalSec, 1, 86_400); err != nil {
		return fmt.Errorf("config: chunkGenerator.evictionSweepIntervalSeconds: %w", err)
	}
	if c.Network.Encryption != codec.EncryptionNone && c.Network.EncryptionKeyBase64 == "" {
		return fmt.Errorf("config: network.encryptionKeyBase64 is required when network.encryption is %s", c.Network.Encryption)
	}
	if err := validation.ValidateStringNonEmpty(c.Logging.Level); err != nil {
		return fmt.Errorf("config: logging.level: %w", err)
	}
	return nil
}

// ListenAddr is the ":port" form internal/transport.Listen expects.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Network.Port)
}

func parseCompression(s string) (codec.Compression, error) {
	switch s {
	case "", "None":
		return codec.CompressionNone, nil
	case "Brotli":
		return codec.CompressionBrotli, nil
	case "GZip":
		return codec.CompressionGZip, nil
	case "Deflate":
		return codec.CompressionDeflate, nil
	case "LZ4":
		return codec.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("config: unknown network.compression %q", s)
	}
}

func parseEncryption(s string) (codec.Encryption, error) {
	switch s {
	case "", "None":
		return codec.EncryptionNone, nil
	case "AES256":
		return codec.EncryptionAES256CBC, nil
	case "ChaCha20Poly1305":
		return codec.EncryptionChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("config: unknown network.encryption %q", s)
	}
}
