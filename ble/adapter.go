package ble

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// InfiniTimeNames are the advertised name prefixes of InfiniTime watches.
var InfiniTimeNames = []string{"InfiniTime", "Pinetime-JF", "PineTime", "Y7S"}

// Matcher selects a scan result by advertised name and address.
type Matcher func(name, address string) bool

// MatchNamePrefix matches devices whose local name starts with any prefix.
func MatchNamePrefix(prefixes ...string) Matcher {
	return func(name, _ string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

// MatchAddress matches a device address, case-insensitively.
func MatchAddress(address string) Matcher {
	return func(_, addr string) bool {
		return strings.EqualFold(addr, address)
	}
}

// Device is a peripheral seen during a scan.
type Device struct {
	Name    string
	Address string
	RSSI    int16

	result bluetooth.ScanResult
}

// Adapter wraps a host bluetooth adapter.
type Adapter struct {
	adapter *bluetooth.Adapter
	log     *logrus.Entry
}

// NewAdapter wraps the default host adapter.
func NewAdapter(log *logrus.Entry) *Adapter {
	return &Adapter{
		adapter: bluetooth.DefaultAdapter,
		log:     log.WithField("prefix", "ble"),
	}
}

// Enable powers on the adapter.
func (a *Adapter) Enable() error {
	return errors.Wrap(a.adapter.Enable(), "enable adapter")
}

// Find scans until a device accepted by match is seen or ctx is done.
func (a *Adapter) Find(ctx context.Context, match Matcher) (*Device, error) {
	var (
		once  sync.Once
		found *Device
	)

	a.log.Info("Scanning for device")

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = a.adapter.StopScan()
		case <-stop:
		}
	}()
	defer close(stop)

	err := a.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		name := result.LocalName()
		addr := result.Address.String()
		if !match(name, addr) {
			return
		}
		once.Do(func() {
			found = &Device{Name: name, Address: addr, RSSI: result.RSSI, result: result}
			_ = adapter.StopScan()
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	if found == nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "scan")
		}
		return nil, errors.New("scan stopped without finding a device")
	}

	a.log.WithFields(logrus.Fields{"name": found.Name, "address": found.Address, "rssi": found.RSSI}).Info("Found device")
	return found, nil
}

// Connect connects to a device returned by Find.
func (a *Adapter) Connect(ctx context.Context, dev *Device) (*Connection, error) {
	connect := func() (bluetooth.Device, error) {
		return a.adapter.Connect(dev.result.Address, bluetooth.ConnectionParams{})
	}
	abandon := func(d bluetooth.Device) {
		a.log.WithField("address", dev.Address).Debug("Dropping connection completed after cancel")
		if err := d.Disconnect(); err != nil {
			a.log.WithError(err).WithField("address", dev.Address).Warn("Disconnect failed")
		}
	}

	d, err := awaitConnect(ctx, connect, abandon)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", dev.Address)
	}
	a.log.WithField("address", dev.Address).Info("Connected")
	return &Connection{device: d, name: dev.Name, address: dev.Address, log: a.log}, nil
}

// awaitConnect runs connect until it returns or ctx is done. A connection
// that completes after ctx is done is passed to abandon.
func awaitConnect(ctx context.Context, connect func() (bluetooth.Device, error), abandon func(bluetooth.Device)) (bluetooth.Device, error) {
	type result struct {
		device bluetooth.Device
		err    error
	}

	done := make(chan result, 1)
	go func() {
		d, err := connect()
		done <- result{d, err}
	}()

	select {
	case r := <-done:
		return r.device, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				abandon(r.device)
			}
		}()
		return bluetooth.Device{}, ctx.Err()
	}
}
