// infinidfu updates the firmware of InfiniTime watches over Bluetooth LE using
// the legacy Nordic DFU protocol, and offers a few device utilities.
//
// Usage:
//
//	go run ./cmd/infinidfu/ --loglevel=4
//	go run ./cmd/infinidfu/ --device=AA:BB:CC:DD:EE:FF --firmware=/path/to/pinetime-app-dfu.zip
//
// Without --firmware an interactive menu is shown once a device is connected.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moffa90/go-legacydfu/cmd/infinidfu/impl"
	"github.com/moffa90/go-legacydfu/internal/logging"
	"github.com/moffa90/go-legacydfu/protocol"
)

var (
	device       = flag.String("device", "", "Device name prefix or address. Defaults to any InfiniTime watch")
	scanTimeout  = flag.Duration("scan_timeout", time.Minute, "How long to scan for the device")
	eventTimeout = flag.Duration("event_timeout", 30*time.Second, "How long to wait for each DFU notification, 0 to wait forever")
	prn          = flag.Int("prn", protocol.DefaultPRNInterval, "Packet receipt notification interval in chunks (1-255)")
	verifyCRC    = flag.Bool("verify_crc", false, "Verify the image CRC against the init packet before updating")
	firmwareFile = flag.String("firmware", "", "Firmware zip to flash without showing the menu")
)

func main() {
	level := logging.RegisterFlags(flag.CommandLine, logrus.InfoLevel)
	flag.Parse()

	log := logging.New(os.Stderr, level.Logrus())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := impl.Main(ctx, impl.Opts{
		Device:       *device,
		ScanTimeout:  *scanTimeout,
		EventTimeout: *eventTimeout,
		PRN:          *prn,
		VerifyCRC:    *verifyCRC,
		Firmware:     *firmwareFile,
		Log:          log,
		In:           os.Stdin,
		Out:          os.Stdout,
	}); err != nil {
		log.WithError(err).Fatal("infinidfu failed")
	}
}
