package dfutest

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"

	"github.com/google/uuid"

	"github.com/moffa90/go-legacydfu/gatt"
	"github.com/moffa90/go-legacydfu/protocol"
)

type packetMode int

const (
	modeIdle packetMode = iota
	modeSize
	modeInit
	modeImage
)

// Option configures a Peripheral.
type Option func(*Peripheral)

// WithOffsetSkew adds delta to every offset reported in packet receipt notifications.
func WithOffsetSkew(delta int) Option {
	return func(p *Peripheral) {
		p.offsetSkew = delta
	}
}

// WithResponse replaces the notification the peripheral sends in response to
// opcode. For OpReceiveFirmwareImage this is the completion notification.
func WithResponse(opcode byte, raw []byte) Option {
	return func(p *Peripheral) {
		p.responses[opcode] = raw
	}
}

// WithSilence suppresses the notification the peripheral would send for opcode.
func WithSilence(opcode byte) Option {
	return func(p *Peripheral) {
		p.silent[opcode] = true
	}
}

// WithWriteError fails the nth (1-based) write to a characteristic with err.
func WithWriteError(id uuid.UUID, nth int, err error) Option {
	return func(p *Peripheral) {
		p.writeErrs[writeKey{id, nth}] = err
	}
}

// WithSubscribeError fails Subscribe with err.
func WithSubscribeError(err error) Option {
	return func(p *Peripheral) {
		p.subscribeErr = err
	}
}

// WithCompletionFirst sends the 10 03 01 completion notification before the
// final packet receipt notification.
func WithCompletionFirst() Option {
	return func(p *Peripheral) {
		p.completionFirst = true
	}
}

type writeKey struct {
	id  uuid.UUID
	nth int
}

// Write is one recorded characteristic write.
type Write struct {
	Characteristic uuid.UUID
	Value          []byte
}

// Peripheral simulates a legacy DFU bootloader.
type Peripheral struct {
	mu sync.Mutex

	values       map[uuid.UUID][]byte
	writes       []Write
	writeCounts  map[uuid.UUID]int
	writeErrs    map[writeKey]error
	subscribeErr error

	responses       map[byte][]byte
	silent          map[byte]bool
	offsetSkew      int
	completionFirst bool

	notify    chan []byte
	started   bool
	closeOnce sync.Once
	done      chan struct{}

	mode      packetMode
	imageSize int
	prn       int
	sinceAck  int
	initData  bytes.Buffer
	image     bytes.Buffer
	activated bool
}

// NewPeripheral creates a simulated peripheral.
func NewPeripheral(opts ...Option) *Peripheral {
	p := &Peripheral{
		values:      make(map[uuid.UUID][]byte),
		writeCounts: make(map[uuid.UUID]int),
		writeErrs:   make(map[writeKey]error),
		responses:   make(map[byte][]byte),
		silent:      make(map[byte]bool),
		notify:      make(chan []byte, 4096),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetValue sets the value returned by ReadCharacteristic for id.
func (p *Peripheral) SetValue(id uuid.UUID, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[id] = append([]byte(nil), value...)
}

// ReadCharacteristic returns the value set with SetValue.
func (p *Peripheral) ReadCharacteristic(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.values[id]
	if !ok {
		return nil, gatt.NotFoundError(id)
	}
	return append([]byte(nil), v...), nil
}

// Subscribe registers handler and starts asynchronous notification delivery.
func (p *Peripheral) Subscribe(ctx context.Context, id uuid.UUID, handler gatt.NotificationHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subscribeErr != nil {
		return p.subscribeErr
	}
	if id == protocol.ControlPointUUID && !p.started {
		p.started = true
		go p.deliver(handler)
	}
	return nil
}

func (p *Peripheral) deliver(handler gatt.NotificationHandler) {
	for {
		select {
		case raw := <-p.notify:
			handler(raw)
		case <-p.done:
			return
		}
	}
}

// Close stops notification delivery.
func (p *Peripheral) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// WriteCharacteristic records the write and advances the simulated bootloader.
func (p *Peripheral) WriteCharacteristic(ctx context.Context, id uuid.UUID, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.writeCounts[id]++
	if err, ok := p.writeErrs[writeKey{id, p.writeCounts[id]}]; ok {
		return err
	}

	v := append([]byte(nil), value...)
	p.writes = append(p.writes, Write{Characteristic: id, Value: v})

	switch id {
	case protocol.ControlPointUUID:
		p.controlPoint(v)
	case protocol.PacketUUID:
		p.packet(v)
	default:
		p.values[id] = v
	}
	return nil
}

func (p *Peripheral) controlPoint(cmd []byte) {
	if len(cmd) == 0 {
		return
	}

	switch cmd[0] {
	case protocol.OpStartDfu:
		p.mode = modeSize
	case protocol.OpInitDfuParams:
		if len(cmd) > 1 && cmd[1] == protocol.InitBegin {
			p.initData.Reset()
			p.mode = modeInit
		} else {
			p.mode = modeIdle
			p.respond(protocol.OpInitDfuParams)
		}
	case protocol.OpPacketReceiptNotifRequest:
		if len(cmd) > 1 {
			p.prn = int(cmd[1])
		}
	case protocol.OpReceiveFirmwareImage:
		p.image.Reset()
		p.sinceAck = 0
		p.mode = modeImage
	case protocol.OpValidateFirmware:
		p.respond(protocol.OpValidateFirmware)
	case protocol.OpActivateAndReset:
		p.activated = true
	}
}

func (p *Peripheral) packet(data []byte) {
	switch p.mode {
	case modeSize:
		if len(data) == protocol.SizeRecordLength {
			p.imageSize = int(binary.LittleEndian.Uint32(data[8:]))
		}
		p.mode = modeIdle
		p.respond(protocol.OpStartDfu)
	case modeInit:
		p.initData.Write(data)
	case modeImage:
		p.image.Write(data)
		p.sinceAck++

		complete := p.image.Len() >= p.imageSize
		receipt := p.prn > 0 && p.sinceAck == p.prn
		if receipt {
			p.sinceAck = 0
		}

		if complete && p.completionFirst {
			p.respond(protocol.OpReceiveFirmwareImage)
		}
		if receipt {
			p.send(p.receipt())
		}
		if complete && !p.completionFirst {
			p.respond(protocol.OpReceiveFirmwareImage)
		}
		if complete {
			p.mode = modeIdle
		}
	}
}

func (p *Peripheral) receipt() []byte {
	raw := make([]byte, protocol.ChunkAckLength)
	raw[0] = protocol.OpPacketReceiptNotification
	binary.LittleEndian.PutUint32(raw[1:], uint32(p.image.Len()+p.offsetSkew))
	return raw
}

func (p *Peripheral) respond(opcode byte) {
	if p.silent[opcode] {
		return
	}
	if raw, ok := p.responses[opcode]; ok {
		p.send(raw)
		return
	}
	p.send([]byte{protocol.OpResponse, opcode, protocol.StatusSuccess})
}

func (p *Peripheral) send(raw []byte) {
	p.notify <- append([]byte(nil), raw...)
}

// Notify delivers an arbitrary control point notification.
func (p *Peripheral) Notify(raw []byte) {
	p.send(raw)
}

// Writes returns every recorded write in order.
func (p *Peripheral) Writes() []Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Write(nil), p.writes...)
}

// WritesTo returns the recorded values written to id.
func (p *Peripheral) WritesTo(id uuid.UUID) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out [][]byte
	for _, w := range p.writes {
		if w.Characteristic == id {
			out = append(out, w.Value)
		}
	}
	return out
}

// ReceivedInitPacket returns the init packet written between 02 00 and 02 01.
func (p *Peripheral) ReceivedInitPacket() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.initData.Bytes()...)
}

// ReceivedImage returns the image bytes received in receive mode.
func (p *Peripheral) ReceivedImage() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.image.Bytes()...)
}

// ImageSize returns the length announced in the size record.
func (p *Peripheral) ImageSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.imageSize
}

// PRN returns the packet receipt notification interval requested by the client.
func (p *Peripheral) PRN() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prn
}

// Activated reports whether activate and reset was written.
func (p *Peripheral) Activated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activated
}
