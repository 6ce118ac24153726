package ble

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/moffa90/go-legacydfu/gatt"
)

// maxReadSize is the largest attribute value the ATT protocol allows.
const maxReadSize = 512

// ServiceSpec names a service to resolve and the characteristics it must have.
type ServiceSpec struct {
	Service  uuid.UUID
	Required []uuid.UUID
	Optional bool
}

// Required builds a spec whose service and characteristics must all exist.
func Required(service uuid.UUID, chars ...uuid.UUID) ServiceSpec {
	return ServiceSpec{Service: service, Required: chars}
}

// Optional builds a spec for a service that may be absent.
func Optional(service uuid.UUID, chars ...uuid.UUID) ServiceSpec {
	return ServiceSpec{Service: service, Required: chars, Optional: true}
}

// Connection is a connected peripheral.
type Connection struct {
	device  bluetooth.Device
	name    string
	address string
	log     *logrus.Entry
}

// Name returns the advertised name of the peripheral.
func (c *Connection) Name() string { return c.name }

// Address returns the peripheral address.
func (c *Connection) Address() string { return c.address }

// Disconnect closes the connection.
func (c *Connection) Disconnect() error {
	return errors.Wrap(c.device.Disconnect(), "disconnect")
}

// Resolve discovers the services in specs and returns a snapshot of their
// characteristics.
func (c *Connection) Resolve(specs ...ServiceSpec) (*HandleSet, error) {
	hs := &HandleSet{
		chars:      make(map[uuid.UUID]bluetooth.DeviceCharacteristic),
		noResponse: make(map[uuid.UUID]bool),
		writeMu:    new(sync.Mutex),
		log:        c.log,
	}

	for _, spec := range specs {
		if err := c.resolveService(hs, spec); err != nil {
			if spec.Optional {
				c.log.WithError(err).WithField("service", spec.Service).Debug("Optional service unavailable")
				continue
			}
			return nil, err
		}
	}
	return hs, nil
}

func (c *Connection) resolveService(hs *HandleSet, spec ServiceSpec) error {
	svcUUID, err := toBluetooth(spec.Service)
	if err != nil {
		return err
	}

	services, err := c.device.DiscoverServices([]bluetooth.UUID{svcUUID})
	if err != nil {
		return errors.Wrapf(err, "discover service %s", spec.Service)
	}
	if len(services) == 0 {
		return errors.Errorf("service %s not found", spec.Service)
	}

	chars, err := services[0].DiscoverCharacteristics(nil)
	if err != nil {
		return errors.Wrapf(err, "discover characteristics of %s", spec.Service)
	}

	found := make(map[uuid.UUID]bluetooth.DeviceCharacteristic, len(chars))
	for _, ch := range chars {
		id, err := uuid.Parse(ch.UUID().String())
		if err != nil {
			return errors.Wrapf(err, "characteristic uuid %s", ch.UUID().String())
		}
		found[id] = ch
	}
	for _, id := range spec.Required {
		if _, ok := found[id]; !ok {
			return errors.Wrapf(gatt.NotFoundError(id), "service %s", spec.Service)
		}
	}

	for id, ch := range found {
		hs.chars[id] = ch
	}
	c.log.WithFields(logrus.Fields{"service": spec.Service, "characteristics": len(found)}).Debug("Resolved service")
	return nil
}

func toBluetooth(id uuid.UUID) (bluetooth.UUID, error) {
	bid, err := bluetooth.ParseUUID(id.String())
	if err != nil {
		return bluetooth.UUID{}, errors.Wrapf(err, "convert uuid %s", id)
	}
	return bid, nil
}

// HandleSet is an immutable snapshot of resolved characteristics. It
// implements gatt.CharacteristicAccess.
type HandleSet struct {
	chars      map[uuid.UUID]bluetooth.DeviceCharacteristic
	noResponse map[uuid.UUID]bool
	writeMu    *sync.Mutex
	log        *logrus.Entry
}

var _ gatt.CharacteristicAccess = (*HandleSet)(nil)

// WithoutResponse returns a copy of the set that writes ids with
// write-without-response.
func (h *HandleSet) WithoutResponse(ids ...uuid.UUID) *HandleSet {
	cp := &HandleSet{
		chars:      h.chars,
		noResponse: make(map[uuid.UUID]bool, len(h.noResponse)+len(ids)),
		writeMu:    h.writeMu,
		log:        h.log,
	}
	for id := range h.noResponse {
		cp.noResponse[id] = true
	}
	for _, id := range ids {
		cp.noResponse[id] = true
	}
	return cp
}

// Has reports whether id was resolved.
func (h *HandleSet) Has(id uuid.UUID) bool {
	_, ok := h.chars[id]
	return ok
}

func (h *HandleSet) lookup(id uuid.UUID) (bluetooth.DeviceCharacteristic, error) {
	ch, ok := h.chars[id]
	if !ok {
		return bluetooth.DeviceCharacteristic{}, gatt.NotFoundError(id)
	}
	return ch, nil
}

// ReadCharacteristic reads the value of id.
func (h *HandleSet) ReadCharacteristic(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch, err := h.lookup(id)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, maxReadSize)
	n, err := ch.Read(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", id)
	}
	return buf[:n], nil
}

// WriteCharacteristic writes value to id. Writes are serialized.
func (h *HandleSet) WriteCharacteristic(ctx context.Context, id uuid.UUID, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := h.lookup(id)
	if err != nil {
		return err
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	acked, err := writeValue(ch, value, h.noResponse[id])
	if !acked && !h.noResponse[id] && h.log != nil {
		h.log.WithField("characteristic", id).Debug("Write with response unsupported, wrote without response")
	}
	return errors.Wrapf(err, "write %s", id)
}

type unackedWriter interface {
	WriteWithoutResponse(p []byte) (int, error)
}

type ackedWriter interface {
	Write(p []byte) (int, error)
}

// writeValue writes with response unless withoutResponse is set or the
// platform only offers write-without-response (BlueZ). It reports whether a
// write with response was used.
func writeValue(ch unackedWriter, value []byte, withoutResponse bool) (acked bool, err error) {
	if !withoutResponse {
		if w, ok := ch.(ackedWriter); ok {
			_, err = w.Write(value)
			return true, err
		}
	}
	_, err = ch.WriteWithoutResponse(value)
	return false, err
}

// Subscribe enables notifications on id.
func (h *HandleSet) Subscribe(ctx context.Context, id uuid.UUID, handler gatt.NotificationHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := h.lookup(id)
	if err != nil {
		return err
	}

	return errors.Wrapf(ch.EnableNotifications(func(buf []byte) {
		handler(buf)
	}), "enable notifications %s", id)
}
