package dfu

import "time"

// Progress contains information about the image transfer.
// Passed to ProgressCallback during Run.
type Progress struct {
	// BytesSent is the number of image bytes written so far
	BytesSent int

	// TotalBytes is the application image length
	TotalBytes int

	// Percent is the whole completion percentage (0 to 100)
	Percent int

	// ElapsedTime is the time since the first chunk was sent
	ElapsedTime time.Duration
}

// ProgressCallback is called when the whole transfer percentage increases.
// It runs on the session goroutine and should return quickly.
//
// Example:
//
//	sess := dfu.NewSession(access, img,
//	    dfu.WithProgressCallback(func(p dfu.Progress) {
//	        fmt.Printf("Sent %6d/%06d - %d%%\n", p.BytesSent, p.TotalBytes, p.Percent)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the session.
// This allows integration with any logging framework; NewLogrusLogger adapts a
// logrus entry.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	sess := dfu.NewSession(access, img, dfu.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
