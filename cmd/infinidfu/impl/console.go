package impl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/moffa90/go-legacydfu/dfu"
	"github.com/moffa90/go-legacydfu/firmware"
	"github.com/moffa90/go-legacydfu/gatt"
	"github.com/moffa90/go-legacydfu/protocol"
	"github.com/moffa90/go-legacydfu/services"
)

const spacer = "_______________________"

// Menu actions, in display order.
const (
	actionShowInfo = iota + 1
	actionSetTime
	actionNotify
	actionUpdate
	actionQuit
)

var actionNames = map[int]string{
	actionShowInfo: "Show device information",
	actionSetTime:  "Set time",
	actionNotify:   "Send notification",
	actionUpdate:   "Update firmware",
	actionQuit:     "Quit",
}

// console is the interactive front end over one connected device.
type console struct {
	opts      Opts
	in        *bufio.Scanner
	out       io.Writer
	log       *logrus.Entry
	access    gatt.CharacteristicAccess
	dfuAccess gatt.CharacteristicAccess
	now       func() time.Time
}

func newConsole(opts Opts, access, dfuAccess gatt.CharacteristicAccess) *console {
	return &console{
		opts:      opts,
		in:        bufio.NewScanner(opts.In),
		out:       opts.Out,
		log:       opts.Log.WithField("prefix", "console"),
		access:    access,
		dfuAccess: dfuAccess,
		now:       time.Now,
	}
}

// run shows the menu until the user quits or input ends.
func (c *console) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(c.out, spacer)
		fmt.Fprintln(c.out, "Select action:")
		for i := actionShowInfo; i <= actionQuit; i++ {
			fmt.Fprintf(c.out, "  %d) %s\n", i, actionNames[i])
		}

		line, ok := c.prompt("> ")
		if !ok {
			return c.in.Err()
		}

		switch parseAction(line) {
		case actionShowInfo:
			c.showInfo(ctx)
		case actionSetTime:
			if err := c.setTime(ctx); err != nil {
				c.log.WithError(err).Error("Setting time failed")
			}
		case actionNotify:
			title, ok := c.prompt("Title: ")
			if !ok {
				return c.in.Err()
			}
			body, ok := c.prompt("Message: ")
			if !ok {
				return c.in.Err()
			}
			if err := services.NewAlert(c.access).Send(ctx, services.AlertSimple, title, body); err != nil {
				c.log.WithError(err).Error("Sending notification failed")
			}
		case actionUpdate:
			path, ok := c.prompt("Enter path to firmware zip archive: ")
			if !ok {
				return c.in.Err()
			}
			if err := c.update(ctx, path); err != nil {
				c.log.WithError(err).Error("Firmware update failed")
				// The device resets or drops the link after a failed update.
				var terr *dfu.TransportError
				if errors.As(err, &terr) {
					return err
				}
			}
		case actionQuit:
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown action %q\n", line)
		}
	}
}

// parseAction accepts a menu number or an action name.
func parseAction(line string) int {
	line = strings.TrimSpace(line)
	for id, name := range actionNames {
		if line == fmt.Sprint(id) || strings.EqualFold(line, name) {
			return id
		}
	}
	return 0
}

func (c *console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *console) showInfo(ctx context.Context) {
	fmt.Fprintln(c.out, spacer)

	info, err := services.NewDeviceInformation(c.access).Read(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Reading device information failed")
	} else {
		printField(c.out, "Manufacturer", info.Manufacturer)
		printField(c.out, "Model", info.Model)
		printField(c.out, "Serial Number", info.Serial)
		printField(c.out, "Firmware Version", info.FirmwareRevision)
		printField(c.out, "Hardware Revision", info.HardwareRevision)
		printField(c.out, "Software Revision", info.SoftwareRevision)
	}

	level, err := services.NewBattery(c.access).Level(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Reading battery level failed")
		return
	}
	fmt.Fprintf(c.out, "Battery Level: %d%%\n", level)
}

func printField(w io.Writer, name, value string) {
	if value != "" {
		fmt.Fprintf(w, "%s: %s\n", name, value)
	}
}

func (c *console) setTime(ctx context.Context) error {
	now := c.now()
	if err := services.NewCurrentTime(c.access).Set(ctx, now); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Time is set to: %s\n", now.Format("2006-01-02 15:04:05"))
	return nil
}

func (c *console) update(ctx context.Context, path string) error {
	var parseOpts []firmware.ParseOption
	if c.opts.VerifyCRC {
		parseOpts = append(parseOpts, firmware.WithCRCCheck())
	}

	img, err := firmware.Parse(path, parseOpts...)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(img.Len(),
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Updating"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(c.out, "\nAll chunks are sent") }),
	)

	log := c.log.WithField("prefix", "dfu")
	opts := []dfu.Option{
		dfu.WithLogger(dfu.NewLogrusLogger(log)),
		dfu.WithEventTimeout(c.opts.EventTimeout),
		dfu.WithProgressCallback(func(p dfu.Progress) {
			_ = bar.Set(p.BytesSent)
			log.Debugf("Sent %6d/%06d - %d%%", p.BytesSent, p.TotalBytes, p.Percent)
		}),
	}
	if c.opts.PRN > 0 {
		opts = append(opts, dfu.WithPRNInterval(c.opts.PRN))
	}

	if err := dfu.Start(ctx, img, c.dfuAccess, opts...); err != nil {
		if protocol.IsProtocolError(err) {
			return fmt.Errorf("device rejected update: %w", err)
		}
		return err
	}

	fmt.Fprintln(c.out, "Update finished!")
	return nil
}
