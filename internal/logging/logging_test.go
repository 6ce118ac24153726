package logging

import (
	"bytes"
	"flag"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		args []string
		want logrus.Level
	}{
		{nil, logrus.InfoLevel},
		{[]string{"-loglevel", "5"}, logrus.DebugLevel},
		{[]string{"-loglevel", "0"}, logrus.PanicLevel},
		{[]string{"-loglevel", "42"}, logrus.TraceLevel},
		{[]string{"-loglevel", "-3"}, logrus.PanicLevel},
	}

	for _, tt := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		lvl := RegisterFlags(fs, logrus.InfoLevel)
		require.NoError(t, fs.Parse(tt.args))
		assert.Equal(t, tt.want, lvl.Logrus(), "args %v", tt.args)
	}

	var nilLevel *Level
	assert.Equal(t, logrus.InfoLevel, nilLevel.Logrus())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, logrus.InfoLevel)

	log.WithField("prefix", "dfu").Info("Update started")
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "Update started")
	assert.Contains(t, out, "dfu")
	assert.NotContains(t, out, "hidden")
}
