// Package impl is the implementation of infinidfu.
package impl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moffa90/go-legacydfu/ble"
	"github.com/moffa90/go-legacydfu/protocol"
	"github.com/moffa90/go-legacydfu/services"
)

// Opts encapsulates infinidfu parameters.
type Opts struct {
	Device       string
	ScanTimeout  time.Duration
	EventTimeout time.Duration
	PRN          int
	VerifyCRC    bool
	Firmware     string

	Log *logrus.Entry
	In  io.Reader
	Out io.Writer
}

// serviceSpecs lists everything the tool uses. Only DFU is mandatory.
var serviceSpecs = []ble.ServiceSpec{
	ble.Required(protocol.ServiceUUID, protocol.ControlPointUUID, protocol.PacketUUID),
	ble.Optional(services.DeviceInformationUUID),
	ble.Optional(services.BatteryUUID, services.BatteryLevelUUID),
	ble.Optional(services.CurrentTimeUUID, services.CurrentTimeCharUUID),
	ble.Optional(services.AlertNotificationUUID, services.NewAlertUUID),
}

// Main connects to the device and runs either a single update or the menu.
func Main(ctx context.Context, opts Opts) error {
	adapter := ble.NewAdapter(opts.Log)
	if err := adapter.Enable(); err != nil {
		return err
	}

	match := ble.MatchNamePrefix(ble.InfiniTimeNames...)
	if opts.Device != "" {
		if strings.Count(opts.Device, ":") == 5 {
			match = ble.MatchAddress(opts.Device)
		} else {
			match = ble.MatchNamePrefix(opts.Device)
		}
	}

	scanCtx, cancel := context.WithTimeout(ctx, opts.ScanTimeout)
	found, err := adapter.Find(scanCtx, match)
	cancel()
	if err != nil {
		return fmt.Errorf("no device found: %w", err)
	}

	conn, err := adapter.Connect(ctx, found)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Disconnect(); err != nil {
			opts.Log.WithError(err).Warn("Disconnect failed")
		}
	}()

	handles, err := conn.Resolve(serviceSpecs...)
	if err != nil {
		return err
	}

	c := newConsole(opts, handles, handles.WithoutResponse(protocol.PacketUUID))
	fmt.Fprintf(c.out, "Connected to %s (%s)\n", conn.Name(), conn.Address())

	if opts.Firmware != "" {
		return c.update(ctx, opts.Firmware)
	}

	c.showInfo(ctx)
	return c.run(ctx)
}
