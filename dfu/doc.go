// Package dfu runs legacy Nordic DFU firmware updates over GATT.
//
// # Overview
//
// A Session drives one update against one connected peripheral:
//   - Starting DFU and announcing the image size
//   - Sending the init packet
//   - Streaming the application image in 20-byte chunks, paced by packet
//     receipt notifications
//   - Validating, then activating the new image
//
// # Basic Usage
//
//	img, err := firmware.Parse("pinetime-app-dfu.zip")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// handles is any gatt.CharacteristicAccess, e.g. a ble.HandleSet
//	err = dfu.Start(ctx, img, handles)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
// Track the transfer with a callback. Reports are emitted only when the whole
// percentage increases:
//
//	sess := dfu.NewSession(handles, img,
//	    dfu.WithProgressCallback(func(p dfu.Progress) {
//	        fmt.Printf("Sent %6d/%06d - %d%%\n", p.BytesSent, p.TotalBytes, p.Percent)
//	    }),
//	)
//
// # Configuration Options
//
//	sess := dfu.NewSession(handles, img,
//	    dfu.WithLogger(dfu.NewLogrusLogger(entry)),
//	    dfu.WithEventTimeout(30*time.Second),
//	    dfu.WithPRNInterval(10),
//	    dfu.WithChunkSize(20),
//	)
//
// # Concurrency
//
// Notifications are queued by the transport callback and consumed in arrival
// order by the goroutine calling Run, which is the only one that mutates
// session state. Progress, State and Err are safe to call from other
// goroutines.
//
// # Error Handling
//
// Every failure is terminal; the session never retries. Errors are:
//   - firmware.ValidationError: bad image, before any I/O
//   - TransportError: a subscribe or write failed
//   - protocol.UnexpectedEventError: a notification not valid in the current state
//   - protocol.OffsetMismatchError: the device acknowledged a different byte count
//   - protocol.DeviceError: the device answered with a failure status
//   - TimeoutError: the context was cancelled or an event wait expired
//
// The protocol errors all match protocol.ErrProtocol.
package dfu
