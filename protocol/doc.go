// Package protocol implements the wire format of the legacy Nordic DFU service.
//
// This package provides functions to build control point commands and to
// classify control point notifications. It performs no I/O.
//
// # Protocol Overview
//
// The legacy DFU service exposes two characteristics:
//
//	Control Point (00001531-...): opcodes written by the client, notifications from the device
//	Packet        (00001532-...): size record, init packet and image data
//
// A client drives the device through this sequence:
//
//	CP  <- 01 04               start DFU, application image
//	PKT <- 00*8 + u32le(len)   image size record
//	CP  -> 10 01 01            start acknowledged
//	CP  <- 02 00, PKT <- init packet, CP <- 02 01
//	CP  -> 10 02 01            init packet acknowledged
//	CP  <- 08 NN               packet receipt notification interval
//	CP  <- 03                  receive firmware image
//	PKT <- 20-byte chunks, CP -> 11 + u32le(offset) every NN chunks
//	CP  -> 10 03 01            image received
//	CP  <- 04, CP -> 10 04 01  validate
//	CP  <- 05                  activate and reset
//
// # Command Builders
//
// Use the Build* functions to create control point and packet payloads:
//
//	cmd := protocol.BuildStartDfuCmd()
//	size := protocol.BuildImageSizeRecord(len(app))
//	prn, err := protocol.BuildSetPRNCmd(10)
//
// # Notifications
//
// ParseNotification classifies a raw control point notification:
//
//	ev := protocol.ParseNotification(raw)
//	switch ev.Kind {
//	case protocol.EventChunkAck:
//	    fmt.Println("device has", ev.Offset, "bytes")
//	case protocol.EventUnrecognized:
//	    fmt.Println(protocol.HexDump(ev.Raw))
//	}
//
// # Error Handling
//
// Protocol level failures are reported as *UnrecognizedError,
// *OffsetMismatchError or *DeviceError. All of them match ErrProtocol:
//
//	if errors.Is(err, protocol.ErrProtocol) {
//	    // device misbehaved, not the transport
//	}
package protocol
