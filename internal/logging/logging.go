// Package logging configures logrus for the command line tools.
package logging

import (
	"flag"
	"io"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

// Level is bound to the -loglevel flag by RegisterFlags.
type Level struct {
	value int
}

// RegisterFlags adds -loglevel to fs with def as default.
func RegisterFlags(fs *flag.FlagSet, def logrus.Level) *Level {
	l := &Level{}
	fs.IntVar(&l.value, "loglevel", int(def), "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
	return l
}

// Logrus returns the configured level, clamped to the valid range.
func (l *Level) Logrus() logrus.Level {
	switch {
	case l == nil:
		return logrus.InfoLevel
	case l.value < int(logrus.PanicLevel):
		return logrus.PanicLevel
	case l.value > int(logrus.TraceLevel):
		return logrus.TraceLevel
	}
	return logrus.Level(l.value)
}

// New returns a logger writing to out with the prefixed text formatter.
func New(out io.Writer, level logrus.Level) *logrus.Entry {
	logrus.ErrorKey = "$error"

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)

	formatter := new(prefixed.TextFormatter)
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.FullTimestamp = true
	formatter.SpacePadding = 50
	logger.SetFormatter(formatter)

	return logrus.NewEntry(logger)
}
