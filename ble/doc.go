// Package ble connects to peripherals with tinygo.org/x/bluetooth and exposes
// their characteristics as a gatt.CharacteristicAccess.
//
// # Usage
//
//	adapter := ble.NewAdapter(log)
//	if err := adapter.Enable(); err != nil {
//	    log.Fatal(err)
//	}
//
//	found, err := adapter.Find(ctx, ble.MatchNamePrefix(ble.InfiniTimeNames...))
//	conn, err := adapter.Connect(ctx, found)
//	defer conn.Disconnect()
//
//	handles, err := conn.Resolve(ble.Required(protocol.ServiceUUID,
//	    protocol.ControlPointUUID, protocol.PacketUUID))
//	err = dfu.Start(ctx, img, handles.WithoutResponse(protocol.PacketUUID))
//
// Characteristics are discovered once; a HandleSet is an immutable snapshot
// of the discovered handles.
package ble
