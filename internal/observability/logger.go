package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog for structured logging.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new structured logger.
func NewLogger(service, version string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Str("host", getHostname()).
		Logger()

	return &Logger{
		logger: logger,
	}
}

// Zerolog exposes the underlying zerolog.Logger for packages that take a
// zerolog.Logger directly rather than this wrapper (eventloop, netsession,
// worldmgr, streaming).
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// WithSession adds session_id context to logger.
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{
		logger: l.logger.With().Str("session_id", sessionID).Logger(),
	}
}

// WithAccount adds account_id context to logger.
func (l *Logger) WithAccount(accountID uint64) *Logger {
	return &Logger{
		logger: l.logger.With().Uint64("account_id", accountID).Logger(),
	}
}

// WithChunk adds chunk-origin context to logger.
func (l *Logger) WithChunk(x, y, z int) *Logger {
	return &Logger{
		logger: l.logger.With().
			Int("chunk_x", x).
			Int("chunk_y", y).
			Int("chunk_z", z).
			Logger(),
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(err error, msg string) {
	l.logger.Error().Err(err).Msg(msg)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(err error, msg string) {
	l.logger.Fatal().Err(err).Msg(msg)
}

// SessionConnected logs a new peer session starting.
func (l *Logger) SessionConnected(sessionID string, remoteAddr string) {
	l.logger.Info().
		Str("session_id", sessionID).
		Str("remote_addr", remoteAddr).
		Msg("session connected")
}

// SessionDisconnected logs a session ending.
func (l *Logger) SessionDisconnected(sessionID string, reason string) {
	l.logger.Info().
		Str("session_id", sessionID).
		Str("reason", reason).
		Msg("session disconnected")
}

// SessionAuthenticated logs a session completing login.
func (l *Logger) SessionAuthenticated(sessionID string, accountID uint64) {
	l.logger.Info().
		Str("session_id", sessionID).
		Uint64("account_id", accountID).
		Msg("session authenticated")
}

// TickCompleted logs a single event loop tick at debug level; callers
// typically gate this behind Config.EnableDetailedMetrics since it fires
// once per tick.
func (l *Logger) TickCompleted(seq uint32, actionsRun int, elapsed time.Duration) {
	l.logger.Debug().
		Uint32("tick_seq", seq).
		Int("actions_run", actionsRun).
		Dur("elapsed", elapsed).
		Msg("tick completed")
}

// SlowAction logs an event loop action that exceeded the configured slow
// action threshold.
func (l *Logger) SlowAction(actionID uint64, priority string, elapsed time.Duration) {
	l.logger.Warn().
		Uint64("action_id", actionID).
		Str("priority", priority).
		Dur("elapsed", elapsed).
		Msg("slow event loop action")
}

// ChunkGenerated logs a chunk generation event.
func (l *Logger) ChunkGenerated(x, y, z int, elapsed time.Duration) {
	l.logger.Debug().
		Int("chunk_x", x).
		Int("chunk_y", y).
		Int("chunk_z", z).
		Dur("elapsed", elapsed).
		Msg("chunk generated")
}

// ChunkGenerationFailed logs a chunk generation failure.
func (l *Logger) ChunkGenerationFailed(x, y, z int, err error) {
	l.logger.Error().
		Int("chunk_x", x).
		Int("chunk_y", y).
		Int("chunk_z", z).
		Err(err).
		Msg("chunk generation failed")
}

// ChunksStreamed logs a batch of chunks sent to a session.
func (l *Logger) ChunksStreamed(sessionID string, count int, batchBytes int) {
	l.logger.Debug().
		Str("session_id", sessionID).
		Int("chunk_count", count).
		Int("batch_bytes", batchBytes).
		Msg("chunks streamed")
}

// ConnectionEstablished logs connection establishment.
func (l *Logger) ConnectionEstablished(remoteAddr string, connectionID string) {
	l.logger.Info().
		Str("remote_addr", remoteAddr).
		Str("connection_id", connectionID).
		Msg("transport connection established")
}

// ConnectionFailed logs connection failure.
func (l *Logger) ConnectionFailed(remoteAddr string, err error) {
	l.logger.Error().
		Str("remote_addr", remoteAddr).
		Err(err).
		Msg("transport connection failed")
}

// Helper function to get hostname.
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
