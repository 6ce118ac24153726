package impl

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-legacydfu/dfutest"
	"github.com/moffa90/go-legacydfu/protocol"
	"github.com/moffa90/go-legacydfu/services"
)

func writeFirmwareZip(t *testing.T, app []byte) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string][]byte{
		"pinetime-mcuboot-app-image.dat": {0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		"pinetime-mcuboot-app-image.bin": app,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "pinetime-app-dfu.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func newTestConsole(t *testing.T, input string) (*console, *dfutest.Peripheral, *bytes.Buffer, *logrustest.Hook) {
	t.Helper()

	dev := dfutest.NewPeripheral()
	t.Cleanup(dev.Close)

	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	out := &bytes.Buffer{}
	c := newConsole(Opts{
		EventTimeout: 5 * time.Second,
		Log:          logrus.NewEntry(logger),
		In:           strings.NewReader(input),
		Out:          out,
	}, dev, dev)
	c.now = func() time.Time { return time.Date(2024, time.March, 9, 14, 30, 5, 0, time.UTC) }
	return c, dev, out, hook
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"1", actionShowInfo},
		{" 2 ", actionSetTime},
		{"3", actionNotify},
		{"4", actionUpdate},
		{"5", actionQuit},
		{"quit", actionQuit},
		{"Update Firmware", actionUpdate},
		{"", 0},
		{"9", 0},
		{"flash", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAction(tt.line), "line %q", tt.line)
	}
}

func TestConsoleUpdate(t *testing.T) {
	app := make([]byte, 1234)
	for i := range app {
		app[i] = byte(i)
	}
	path := writeFirmwareZip(t, app)

	c, dev, out, _ := newTestConsole(t, "4\n"+path+"\n5\n")
	require.NoError(t, c.run(testContext(t)))

	assert.True(t, dev.Activated())
	assert.Equal(t, app, dev.ReceivedImage())
	assert.Equal(t, protocol.DefaultPRNInterval, dev.PRN())
	assert.Contains(t, out.String(), "Update finished!")
}

func TestConsoleUpdateMissingFile(t *testing.T) {
	c, dev, _, hook := newTestConsole(t, "4\n/does/not/exist.zip\nquit\n")
	require.NoError(t, c.run(testContext(t)))

	assert.False(t, dev.Activated())
	assert.Empty(t, dev.Writes())

	var failed bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Firmware update failed" {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestConsoleSetTime(t *testing.T) {
	c, dev, out, _ := newTestConsole(t, "2\n5\n")
	require.NoError(t, c.run(testContext(t)))

	want := services.EncodeCurrentTime(c.now())
	assert.Equal(t, [][]byte{want}, dev.WritesTo(services.CurrentTimeCharUUID))
	assert.Contains(t, out.String(), "Time is set to: 2024-03-09 14:30:05")
}

func TestConsoleNotify(t *testing.T) {
	c, dev, _, _ := newTestConsole(t, "3\nHello\nFrom the console\n5\n")
	require.NoError(t, c.run(testContext(t)))

	want := services.EncodeNewAlert(services.AlertSimple, "Hello", "From the console")
	assert.Equal(t, [][]byte{want}, dev.WritesTo(services.NewAlertUUID))
}

func TestConsoleShowInfo(t *testing.T) {
	c, dev, out, _ := newTestConsole(t, "1\n")
	dev.SetValue(services.ManufacturerNameUUID, []byte("PINE64"))
	dev.SetValue(services.FirmwareRevisionUUID, []byte("1.14.0\x00"))
	dev.SetValue(services.BatteryLevelUUID, []byte{87})

	// Input ends after the first action.
	require.NoError(t, c.run(testContext(t)))

	assert.Contains(t, out.String(), "Manufacturer: PINE64\n")
	assert.Contains(t, out.String(), "Firmware Version: 1.14.0\n")
	assert.Contains(t, out.String(), "Battery Level: 87%\n")
	assert.NotContains(t, out.String(), "Model:")
}

func TestConsoleUnknownAction(t *testing.T) {
	c, _, out, _ := newTestConsole(t, "7\n")
	require.NoError(t, c.run(testContext(t)))
	assert.Contains(t, out.String(), `Unknown action "7"`)
}

func TestConsoleCancelled(t *testing.T) {
	c, _, _, _ := newTestConsole(t, "1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.run(ctx), context.Canceled)
}
