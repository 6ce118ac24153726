package dfu

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/moffa90/go-legacydfu/firmware"
	"github.com/moffa90/go-legacydfu/gatt"
	"github.com/moffa90/go-legacydfu/protocol"
)

// Session states.
const (
	StateIdle                    = "idle"
	StateStarting                = "starting"
	StateAwaitingSizeAck         = "awaiting_size_ack"
	StateAwaitingInitAck         = "awaiting_init_ack"
	StateAwaitingInitCompleteAck = "awaiting_init_complete_ack"
	StateAwaitingPRNAck          = "awaiting_prn_ack"
	StateAwaitingReceiveModeAck  = "awaiting_receive_mode_ack"
	StateTransferring            = "transferring"
	StateAwaitingValidateAck     = "awaiting_validate_ack"
	StateValidating              = "validating"
	StateAwaitingActivateAck     = "awaiting_activate_ack"
	StateDone                    = "done"
	StateFailed                  = "failed"
)

// fsm events.
const (
	evStart         = "start"
	evSizeSent      = "size_sent"
	evStartAcked    = "start_acked"
	evInitSent      = "init_sent"
	evInitAcked     = "init_acked"
	evPRNSet        = "prn_set"
	evReceiving     = "receiving"
	evImageSent     = "image_sent"
	evReceiveAcked  = "receive_acked"
	evValidateAcked = "validate_acked"
	evActivated     = "activated"
	evFail          = "fail"
)

// Session runs one legacy DFU upgrade against one peripheral.
// A Session is single-use: create a new one for every attempt.
//
// Run must be called from one goroutine; Progress, State and Err may be
// called concurrently with it.
type Session struct {
	access  gatt.CharacteristicAccess
	image   *firmware.Image
	planner *ChunkPlanner
	config  Config

	fsm      *fsm.FSM
	queue    *eventQueue
	progress *ProgressReporter
	used     atomic.Bool
	invalid  error

	mu   sync.Mutex
	sent int
	err  error
}

// NewSession creates a session that will upload img through access.
// A session for an empty image fails in Run with *firmware.ValidationError.
//
// Example:
//
//	img, _ := firmware.Parse("firmware.zip")
//	sess := dfu.NewSession(handles, img,
//	    dfu.WithProgressCallback(progressFunc),
//	    dfu.WithEventTimeout(30*time.Second),
//	)
//	err := sess.Run(ctx)
func NewSession(access gatt.CharacteristicAccess, img *firmware.Image, opts ...Option) *Session {
	if access == nil {
		panic("characteristic access cannot be nil")
	}
	if img == nil {
		panic("image cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SessionID == uuid.Nil {
		cfg.SessionID = uuid.New()
	}

	s := &Session{
		access:   access,
		image:    img,
		planner:  NewChunkPlanner(img.Application(), cfg.ChunkSize),
		config:   cfg,
		queue:    newEventQueue(),
		progress: NewProgressReporter(cfg.ProgressCallback),
	}
	if img.Len() == 0 {
		s.invalid = &firmware.ValidationError{Field: "application image", Reason: "empty"}
	}
	s.fsm = newSessionFSM(s)
	return s
}

func newSessionFSM(s *Session) *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: evStart, Src: []string{StateIdle}, Dst: StateStarting},
			{Name: evSizeSent, Src: []string{StateStarting}, Dst: StateAwaitingSizeAck},
			{Name: evStartAcked, Src: []string{StateAwaitingSizeAck}, Dst: StateAwaitingInitAck},
			{Name: evInitSent, Src: []string{StateAwaitingInitAck}, Dst: StateAwaitingInitCompleteAck},
			{Name: evInitAcked, Src: []string{StateAwaitingInitCompleteAck}, Dst: StateAwaitingPRNAck},
			{Name: evPRNSet, Src: []string{StateAwaitingPRNAck}, Dst: StateAwaitingReceiveModeAck},
			{Name: evReceiving, Src: []string{StateAwaitingReceiveModeAck}, Dst: StateTransferring},
			{Name: evImageSent, Src: []string{StateTransferring}, Dst: StateAwaitingValidateAck},
			{Name: evReceiveAcked, Src: []string{StateAwaitingValidateAck}, Dst: StateValidating},
			{Name: evValidateAcked, Src: []string{StateValidating}, Dst: StateAwaitingActivateAck},
			{Name: evActivated, Src: []string{StateAwaitingActivateAck}, Dst: StateDone},
			{Name: evFail, Src: []string{
				StateIdle, StateStarting, StateAwaitingSizeAck, StateAwaitingInitAck,
				StateAwaitingInitCompleteAck, StateAwaitingPRNAck, StateAwaitingReceiveModeAck,
				StateTransferring, StateAwaitingValidateAck, StateValidating, StateAwaitingActivateAck,
			}, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				s.logDebug("state transition", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
}

// Start runs a new session for img over access to completion.
//
// Example:
//
//	err := dfu.Start(ctx, img, handles, dfu.WithLogger(logger))
func Start(ctx context.Context, img *firmware.Image, access gatt.CharacteristicAccess, opts ...Option) error {
	if img == nil {
		return &firmware.ValidationError{Field: "image", Reason: "nil"}
	}
	if img.Len() == 0 {
		return &firmware.ValidationError{Field: "application image", Reason: "empty"}
	}
	return NewSession(access, img, opts...).Run(ctx)
}

// Run performs the complete upgrade sequence:
//  1. Subscribe to the control point
//  2. Start DFU and send the image size
//  3. Send the init packet
//  4. Set the PRN interval and enter receive mode
//  5. Stream the image, verifying every packet receipt notification
//  6. Validate, then activate and reset
//
// Run returns nil once activate has been written. Any transport failure,
// protocol violation or timeout moves the session to StateFailed; nothing is
// retried. Run can be called only once.
func (s *Session) Run(ctx context.Context) error {
	if !s.used.CompareAndSwap(false, true) {
		return ErrSessionUsed
	}
	if s.invalid != nil {
		s.fail(s.invalid)
		return s.invalid
	}

	s.logInfo("starting firmware update",
		"init_packet_bytes", len(s.image.InitPacket()),
		"image_bytes", s.image.Len(),
		"chunks", s.planner.TotalChunks(),
		"prn", s.config.PRNInterval,
	)

	if err := s.run(ctx); err != nil {
		s.fail(err)
		return err
	}

	s.logInfo("firmware update complete", "bytes", s.image.Len())
	return nil
}

func (s *Session) run(ctx context.Context) error {
	if err := s.access.Subscribe(ctx, protocol.ControlPointUUID, s.queue.push); err != nil {
		return &TransportError{Op: "subscribe", Characteristic: protocol.ControlPointUUID, Err: err}
	}

	if err := s.transition(evStart); err != nil {
		return err
	}
	s.logDebug("sending start DFU", "image_type", "application")
	if err := s.write(ctx, protocol.ControlPointUUID, protocol.BuildStartDfuCmd()); err != nil {
		return err
	}

	if err := s.transition(evSizeSent); err != nil {
		return err
	}
	if err := s.write(ctx, protocol.PacketUUID, protocol.BuildImageSizeRecord(s.image.Len())); err != nil {
		return err
	}

	for !s.fsm.Is(StateDone) {
		ev, err := s.next(ctx)
		if err != nil {
			return err
		}
		if err := s.handle(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// next waits for the next notification and classifies it.
func (s *Session) next(ctx context.Context) (protocol.Event, error) {
	waitCtx := ctx
	if s.config.EventTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.config.EventTimeout)
		defer cancel()
	}

	raw, err := s.queue.pop(waitCtx)
	if err != nil {
		return protocol.Event{}, &TimeoutError{State: s.fsm.Current(), Err: err}
	}

	ev := protocol.ParseNotification(raw)
	s.logDebug("notification", "event", ev.Kind.String(), "raw", protocol.HexDump(ev.Raw))
	return ev, nil
}

// handle applies one notification to the current state.
func (s *Session) handle(ctx context.Context, ev protocol.Event) error {
	state := s.fsm.Current()

	switch ev.Kind {
	case protocol.EventUnrecognized:
		s.logError("unrecognized notification", "state", state, "raw", protocol.HexDump(ev.Raw))
		return s.unexpected(ev)
	case protocol.EventErrorResponse:
		return &protocol.DeviceError{Opcode: ev.Opcode, Status: ev.Status}
	}

	switch state {
	case StateAwaitingSizeAck:
		if ev.Kind != protocol.EventStartDfuAck {
			return s.unexpected(ev)
		}
		return s.sendInitPacket(ctx)

	case StateAwaitingInitCompleteAck:
		if ev.Kind != protocol.EventInitPacketAck {
			return s.unexpected(ev)
		}
		return s.beginTransfer(ctx)

	case StateTransferring:
		switch ev.Kind {
		case protocol.EventChunkAck:
			if err := s.verifyOffset(ev.Offset); err != nil {
				return err
			}
			if s.planner.Done() {
				return s.transition(evImageSent)
			}
			return s.sendWindow(ctx)
		case protocol.EventReceiveImageAck:
			// The device may report completion before the final boundary ack.
			if !s.planner.Done() {
				return s.unexpected(ev)
			}
			if err := s.transition(evImageSent); err != nil {
				return err
			}
			return s.validate(ctx)
		}
		return s.unexpected(ev)

	case StateAwaitingValidateAck:
		switch {
		case ev.Kind == protocol.EventReceiveImageAck:
			return s.validate(ctx)
		case s.isFinalChunkAck(ev):
			s.logDebug("ignoring late packet receipt notification", "offset", ev.Offset)
			return nil
		case ev.Kind == protocol.EventChunkAck:
			return s.verifyOffset(ev.Offset)
		}
		return s.unexpected(ev)

	case StateValidating:
		switch {
		case ev.Kind == protocol.EventValidateAck:
			return s.activate(ctx)
		case s.isFinalChunkAck(ev):
			s.logDebug("ignoring late packet receipt notification", "offset", ev.Offset)
			return nil
		}
		return s.unexpected(ev)
	}

	return s.unexpected(ev)
}

func (s *Session) sendInitPacket(ctx context.Context) error {
	if err := s.transition(evStartAcked); err != nil {
		return err
	}

	s.logDebug("sending init packet", "bytes", len(s.image.InitPacket()))
	if err := s.write(ctx, protocol.ControlPointUUID, protocol.BuildInitBeginCmd()); err != nil {
		return err
	}
	if err := s.write(ctx, protocol.PacketUUID, s.image.InitPacket()); err != nil {
		return err
	}
	if err := s.write(ctx, protocol.ControlPointUUID, protocol.BuildInitCompleteCmd()); err != nil {
		return err
	}

	return s.transition(evInitSent)
}

func (s *Session) beginTransfer(ctx context.Context) error {
	if err := s.transition(evInitAcked); err != nil {
		return err
	}

	cmd, err := protocol.BuildSetPRNCmd(s.config.PRNInterval)
	if err != nil {
		return err
	}
	if err := s.write(ctx, protocol.ControlPointUUID, cmd); err != nil {
		return err
	}
	if err := s.transition(evPRNSet); err != nil {
		return err
	}

	if err := s.write(ctx, protocol.ControlPointUUID, protocol.BuildReceiveImageCmd()); err != nil {
		return err
	}
	// Receive mode is not acknowledged; transfer starts immediately.
	if err := s.transition(evReceiving); err != nil {
		return err
	}

	return s.sendWindow(ctx)
}

func (s *Session) sendWindow(ctx context.Context) error {
	w, err := s.planner.SendWindow(ctx, s.config.PRNInterval, func(chunk []byte) error {
		if err := s.write(ctx, protocol.PacketUUID, chunk); err != nil {
			return err
		}
		s.addSent(len(chunk))
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return &TimeoutError{State: s.fsm.Current(), Err: err}
		}
		return err
	}

	if w.Exhausted {
		s.logDebug("all chunks sent", "chunks", s.planner.TotalChunks(), "await_ack", w.AwaitAck)
		if !w.AwaitAck {
			return s.transition(evImageSent)
		}
	}
	return nil
}

func (s *Session) verifyOffset(offset uint32) error {
	expected := s.planner.ExpectedOffset()
	if offset != expected {
		s.logError("offset mismatch", "expected", expected, "actual", offset)
		return &protocol.OffsetMismatchError{Expected: expected, Actual: offset}
	}
	return nil
}

// isFinalChunkAck matches a packet receipt notification for the whole image,
// which the device may send after reporting completion.
func (s *Session) isFinalChunkAck(ev protocol.Event) bool {
	return ev.Kind == protocol.EventChunkAck && ev.Offset == uint32(s.image.Len())
}

func (s *Session) validate(ctx context.Context) error {
	s.logDebug("sending validate")
	if err := s.write(ctx, protocol.ControlPointUUID, protocol.BuildValidateCmd()); err != nil {
		return err
	}
	return s.transition(evReceiveAcked)
}

func (s *Session) activate(ctx context.Context) error {
	if err := s.transition(evValidateAcked); err != nil {
		return err
	}
	s.logDebug("sending activate and reset")
	if err := s.write(ctx, protocol.ControlPointUUID, protocol.BuildActivateAndResetCmd()); err != nil {
		return err
	}
	// The device resets without acknowledging.
	return s.transition(evActivated)
}

func (s *Session) write(ctx context.Context, id uuid.UUID, value []byte) error {
	if err := s.access.WriteCharacteristic(ctx, id, value); err != nil {
		return &TransportError{Op: "write", Characteristic: id, Err: err}
	}
	return nil
}

func (s *Session) transition(event string) error {
	if err := s.fsm.Event(event); err != nil {
		return fmt.Errorf("transition %s from %s: %w", event, s.fsm.Current(), err)
	}
	return nil
}

func (s *Session) unexpected(ev protocol.Event) error {
	return &protocol.UnexpectedEventError{State: s.fsm.Current(), Event: ev}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.logError("firmware update failed", "state", s.fsm.Current(), "error", err)
	if s.fsm.Can(evFail) {
		_ = s.fsm.Event(evFail)
	}
}

func (s *Session) addSent(n int) {
	s.mu.Lock()
	s.sent += n
	sent := s.sent
	s.mu.Unlock()

	s.progress.Update(sent, s.image.Len())
}

// Progress returns the bytes sent, the image length and the whole percentage.
func (s *Session) Progress() (sent, total, percent int) {
	s.mu.Lock()
	sent = s.sent
	s.mu.Unlock()

	total = s.image.Len()
	if total == 0 {
		return sent, 0, 0
	}
	return sent, total, sent * 100 / total
}

// State returns the current state name.
func (s *Session) State() string {
	return s.fsm.Current()
}

// Err returns the error that failed the session, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ID returns the session ID used in log fields.
func (s *Session) ID() uuid.UUID {
	return s.config.SessionID
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, kv ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, append(kv, "session", s.config.SessionID.String())...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, kv ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, append(kv, "session", s.config.SessionID.String())...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, kv ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, append(kv, "session", s.config.SessionID.String())...)
	}
}
