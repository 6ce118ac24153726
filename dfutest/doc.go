// Package dfutest provides a simulated legacy DFU peripheral for tests and
// examples.
//
// Peripheral implements gatt.CharacteristicAccess. It answers control point
// writes the way a legacy Nordic bootloader does, delivering notifications
// asynchronously from its own goroutine, and records every write:
//
//	dev := dfutest.NewPeripheral()
//	err := dfu.Start(ctx, img, dev)
//	fmt.Println(dev.Activated(), dev.ReceivedImage())
//
// Faults can be injected to exercise error paths:
//
//	dev := dfutest.NewPeripheral(
//	    dfutest.WithOffsetSkew(-20),
//	    dfutest.WithResponse(protocol.OpInitDfuParams, []byte{0x20, 0x01}),
//	)
//
// Plain characteristic values can be served for read-only services:
//
//	dev.SetValue(gatt.UUID16(0x2a19), []byte{87})
package dfutest
