// Command voxelserver is the authoritative server process: it wires
// configuration, logging, the event loop, the chunk generation
// pipeline, the entity store, and the session transport together in
// the order config -> logger -> event loop -> services -> transport,
// then runs until asked to stop.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxelcore/voxelserver/internal/chunkcache"
	"github.com/voxelcore/voxelserver/internal/codec"
	"github.com/voxelcore/voxelserver/internal/config"
	"github.com/voxelcore/voxelserver/internal/entitystore"
	"github.com/voxelcore/voxelserver/internal/eventloop"
	"github.com/voxelcore/voxelserver/internal/generation"
	"github.com/voxelcore/voxelserver/internal/netsession"
	"github.com/voxelcore/voxelserver/internal/observability"
	"github.com/voxelcore/voxelserver/internal/protocol"
	"github.com/voxelcore/voxelserver/internal/streaming"
	"github.com/voxelcore/voxelserver/internal/transport"
	"github.com/voxelcore/voxelserver/internal/validation"
	"github.com/voxelcore/voxelserver/internal/worldmgr"
)

// ServerVersion is reported verbatim in VersionResponse and the health
// checker's version field.
const ServerVersion = "0.1.0"

const (
	defaultDatabaseDir = "./data/Database"
	defaultViewRadius  = 8
	defaultAdminEmail  = "admin@voxelcore.dev"
	defaultAdminPass   = "changeme"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration document; built-in defaults if omitted")
	port := flag.Int("port", 0, "overrides network.port from the configuration document when non-zero")
	observAddr := flag.String("observ-addr", "127.0.0.1:8091", "metrics/health/pprof server address")
	databaseDir := flag.String("database-dir", defaultDatabaseDir, "entity store directory")
	flag.Parse()

	if err := validation.ValidateAddr(*observAddr); err != nil {
		fmt.Fprintf(os.Stderr, "voxelserver: --observ-addr: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxelserver: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Network.Port = *port
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "voxelserver: %v\n", err)
			os.Exit(1)
		}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Logging.Level))
	var logOutput io.Writer = os.Stdout
	if !cfg.Logging.JSON {
		logOutput = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	logger := observability.NewLogger("voxelserver", ServerVersion, logOutput)
	metrics := observability.NewMetrics()
	health := observability.NewHealthChecker(ServerVersion)
	if shutdownTracing, err := observability.InitTracing(context.Background(), "voxelserver", ServerVersion); err == nil {
		defer shutdownTracing(context.Background())
	}

	logger.Info("voxelserver starting")

	loop := eventloop.New(cfg.EventLoop.ToLoopConfig(), logger.Zerolog(), eventloop.NewMetrics())
	loop.OnTick(func(elapsed time.Duration) {
		if cfg.EventLoop.EnableDetailedMetrics {
			logger.TickCompleted(0, cfg.EventLoop.MaxActionsPerTick, elapsed)
		}
	})

	pipeline := generation.NewPipeline(cfg.ChunkGenerator.Seed)
	worldMgr := worldmgr.New(pipeline, cfg.ChunkGenerator.ToWorldMgrConfig(), loop, logger.Zerolog(), chunkcache.NewMetrics())
	logger.Info("chunk cache populated around origin")

	accounts, err := entitystore.Open(*databaseDir, "useraccount", func() *entitystore.UserAccount { return &entitystore.UserAccount{} })
	if err != nil {
		logger.Fatal(err, "failed to open entity store")
	}
	if err := seedDefaultAdmin(accounts); err != nil {
		logger.Fatal(err, "failed to seed default admin account")
	}

	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		logger.Fatal(err, "failed to resolve network encryption key")
	}
	transform := codec.Transform{Compression: cfg.Network.Compression, Encryption: cfg.Network.Encryption}
	processor := protocol.NewProcessor(transform, key, func(kind protocol.MessageKind) {
		logger.Warn(fmt.Sprintf("message kind %s re-registered", kind))
	})
	protocol.RegisterDefaults(processor)

	adapter, err := transport.Listen(cfg.ListenAddr(), nil)
	if err != nil {
		logger.Fatal(err, "failed to start session transport")
	}
	defer adapter.Close()
	logger.Info("session transport listening on " + cfg.ListenAddr())

	sessions := netsession.NewManager(adapter, processor, loop, helloMessages, logger.Zerolog(), netsession.NewMetrics())
	streamer := streaming.New(worldMgr, sessions, defaultViewRadius, streaming.DefaultMaxPayloadBytes, logger.Zerolog(), streaming.NewMetrics())

	registerHandlers(sessions, accounts, worldMgr, streamer, logger)

	health.RegisterCheck("session_transport", observability.NetworkListenerCheck(cfg.ListenAddr()))
	health.RegisterCheck("chunk_cache", observability.ChunkCacheCheck(worldMgr.Cache()))
	health.RegisterCheck("entity_store", observability.EntityStoreCheck(*databaseDir))
	health.RegisterCheck("disk_space", observability.DiskSpaceCheck(*databaseDir, 1))

	var lastTickNanos atomic.Int64
	lastTickNanos.Store(time.Now().UnixNano())
	loop.OnTick(func(time.Duration) { lastTickNanos.Store(time.Now().UnixNano()) })
	health.RegisterCheck("event_loop", observability.EventLoopCheck(func() time.Duration {
		return time.Since(time.Unix(0, lastTickNanos.Load()))
	}, 5*time.Second))

	// The core calls Poll once per event-loop tick, draining whatever the
	// transport's own I/O goroutines queued since the last drain.
	loop.OnTick(func(time.Duration) { sessions.Poll() })

	go startObservabilityServer(*observAddr, metrics, health, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	go worldMgr.RunEvictionSweep(ctx)

	logger.Info("voxelserver running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down gracefully")
	cancel()
	logger.Info("voxelserver stopped")
}

// loadConfig reads path if given, falling back to Default() so the
// server is runnable with zero on-disk configuration.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	if err := validation.ValidateFilePath(path, true); err != nil {
		return nil, fmt.Errorf("voxelserver: --config: %w", err)
	}
	return config.Load(path)
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

// resolveEncryptionKey base64-decodes network.encryptionKeyBase64. An
// empty key is valid whenever encryption is None, since codec.Encode
// never touches key bytes in that case.
func resolveEncryptionKey(cfg *config.Config) ([]byte, error) {
	if cfg.Network.EncryptionKeyBase64 == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(cfg.Network.EncryptionKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("voxelserver: decode network.encryptionKeyBase64: %w", err)
	}
	return key, nil
}

// seedDefaultAdmin provisions the default super-admin account the login
// end-to-end scenario depends on, if it does not already exist.
func seedDefaultAdmin(accounts *entitystore.Store[*entitystore.UserAccount]) error {
	existing := accounts.Search(func(a *entitystore.UserAccount) bool { return a.Email == defaultAdminEmail })
	if len(existing) > 0 {
		return nil
	}
	account, err := entitystore.NewUserAccount(defaultAdminEmail, defaultAdminPass)
	if err != nil {
		return err
	}
	_, err = accounts.Insert(account)
	return err
}

// helloMessages is the per-connect greeting: a VersionResponse so a
// freshly connected client immediately learns the server build it
// talked to, without having to round-trip a VersionRequest first.
func helloMessages(sessionID uint64) []protocol.Message {
	return []protocol.Message{
		{Type: protocol.VersionResponse, Body: &protocol.VersionResponseBody{Version: ServerVersion}},
	}
}

// registerHandlers wires the game-layer listeners spec.md's end-to-end
// scenarios depend on: Ping/Pong, login against the entity store,
// version handshake, and position-driven chunk streaming.
func registerHandlers(sessions *netsession.Manager, accounts *entitystore.Store[*entitystore.UserAccount], w *worldmgr.Manager, streamer *streaming.Streamer, logger *observability.Logger) {
	sessions.OnKind(protocol.Ping, "ping", func(session *netsession.Session, msg protocol.Message) error {
		session.Touch()
		return sessions.Send(session.ID, protocol.Message{
			Type:      protocol.Pong,
			RequestID: msg.RequestID,
			Body:      &protocol.PongBody{Timestamp: time.Now().Unix()},
		})
	})

	netsession.OnType(sessions, protocol.VersionRequest, "version", func(session *netsession.Session, body *protocol.VersionRequestBody) error {
		return sessions.Send(session.ID, protocol.Message{
			Type: protocol.VersionResponse,
			Body: &protocol.VersionResponseBody{Version: ServerVersion},
		})
	})

	netsession.OnType(sessions, protocol.LoginRequest, "login", func(session *netsession.Session, body *protocol.LoginRequestBody) error {
		matches := accounts.Search(func(a *entitystore.UserAccount) bool { return a.Email == body.Email })
		success := len(matches) == 1 && matches[0].VerifyPassword(body.Password)

		if err := sessions.Send(session.ID, protocol.Message{
			Type: protocol.LoginResponse,
			Body: &protocol.LoginResponseBody{Success: success},
		}); err != nil {
			return err
		}
		if !success {
			return nil
		}

		session.SetLoggedIn(true)
		logger.SessionAuthenticated(fmt.Sprintf("%d", session.ID), matches[0].ID)

		spawn := protocol.Vec3F{X: 1, Y: 1, Z: 1}
		session.SetPosition(spawn)
		if err := sessions.Send(session.ID, protocol.Message{
			Type: protocol.PlayerPositionResponse,
			Body: &protocol.PlayerPositionResponseBody{Position: spawn},
		}); err != nil {
			return err
		}
		return streamer.Stream(session)
	})

	netsession.OnType(sessions, protocol.PlayerPositionRequest, "position", func(session *netsession.Session, body *protocol.PlayerPositionRequestBody) error {
		session.SetPosition(body.Position)
		session.SetRotation(body.Rotation)
		if err := sessions.Send(session.ID, protocol.Message{
			Type: protocol.PlayerPositionResponse,
			Body: &protocol.PlayerPositionResponseBody{Position: body.Position, Rotation: body.Rotation},
		}); err != nil {
			return err
		}
		return streamer.Stream(session)
	})

	netsession.OnType(sessions, protocol.ChunkRequest, "chunk", func(session *netsession.Session, body *protocol.ChunkRequestBody) error {
		chunk, err := w.Cache().Get(body.Position)
		if err != nil {
			return err
		}
		err = sessions.Send(session.ID, protocol.Message{
			Type: protocol.ChunkResponse,
			Body: &protocol.ChunkResponseBody{Chunks: []protocol.ChunkPayload{
				{Position: chunk.Position, Blocks: protocol.EncodeChunkBlocks(chunk)},
			}},
		})
		if err == nil {
			session.MarkChunkSent(chunk.Position)
		}
		return err
	})
}

func startObservabilityServer(addr string, metrics *observability.Metrics, health *observability.HealthChecker, logger *observability.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", health.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	server := &http.Server{Addr: addr, Handler: mux}
	logger.Info("observability server listening on " + addr + " (metrics, health, pprof)")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(err, "observability server error")
	}
}
