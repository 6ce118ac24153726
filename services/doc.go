// Package services implements the standard GATT services an InfiniTime watch
// exposes next to DFU: device information, battery level, current time and
// new alert.
//
// Every service is a thin wrapper over a gatt.CharacteristicAccess:
//
//	info, err := services.NewDeviceInformation(handles).Read(ctx)
//	level, err := services.NewBattery(handles).Level(ctx)
//	err = services.NewCurrentTime(handles).Set(ctx, time.Now())
//	err = services.NewAlert(handles).Send(ctx, services.AlertSimple, "Title", "Body")
package services
