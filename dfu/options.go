package dfu

import (
	"time"

	"github.com/google/uuid"

	"github.com/moffa90/go-legacydfu/protocol"
)

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called as image bytes are sent (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// EventTimeout bounds each wait for a notification. Zero waits forever.
	EventTimeout time.Duration

	// ChunkSize is the image chunk size written to the packet characteristic
	// Default is 20 bytes (one write with the default ATT MTU)
	ChunkSize int

	// PRNInterval is the number of chunks between packet receipt notifications
	PRNInterval int

	// SessionID tags every log line of the session
	SessionID uuid.UUID
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ChunkSize:   protocol.DefaultChunkSize,
		PRNInterval: protocol.DefaultPRNInterval,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	sess := dfu.NewSession(access, img,
//	    dfu.WithProgressCallback(func(p dfu.Progress) {
//	        fmt.Printf("%d%% complete\n", p.Percent)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the session.
//
// Example:
//
//	sess := dfu.NewSession(access, img, dfu.WithLogger(dfu.NewLogrusLogger(entry)))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithEventTimeout bounds every wait for a device notification.
// A wait that expires fails the session with *TimeoutError.
//
// Example:
//
//	sess := dfu.NewSession(access, img, dfu.WithEventTimeout(10*time.Second))
func WithEventTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.EventTimeout = timeout
		}
	}
}

// WithChunkSize sets the image chunk size.
// Only use sizes above 20 on links with a negotiated MTU that fits them.
//
// Example:
//
//	sess := dfu.NewSession(access, img, dfu.WithChunkSize(20))
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= 512 {
			c.ChunkSize = size
		}
	}
}

// WithPRNInterval sets the packet receipt notification interval in chunks.
// Values outside 1..255 are ignored.
//
// Example:
//
//	sess := dfu.NewSession(access, img, dfu.WithPRNInterval(10))
func WithPRNInterval(interval int) Option {
	return func(c *Config) {
		if interval >= 1 && interval <= 0xFF {
			c.PRNInterval = interval
		}
	}
}

// WithSessionID overrides the random session ID used in log fields.
func WithSessionID(id uuid.UUID) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}
