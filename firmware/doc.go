// Package firmware loads legacy DFU firmware packages.
//
// # Package Format
//
// A firmware package is a zip archive holding an init packet (*.dat) and a raw
// application image (*.bin). When the archive carries an nrfutil manifest.json
// the member names are taken from it; otherwise the first member with each
// suffix is used.
//
// # Basic Usage
//
//	img, err := firmware.Parse("pinetime-mcuboot-app-dfu-1.14.0.zip")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("application: %d bytes\n", img.Len())
//
// # Init Packet
//
// The legacy init packet describes the image the bootloader will accept:
//
//	info, err := img.InitPacketInfo()
//	fmt.Printf("app version %d, crc 0x%04X\n", info.AppVersion, info.ImageCRC)
//
// Parse can verify the application CRC against the init packet:
//
//	img, err := firmware.Parse(path, firmware.WithCRCCheck())
package firmware
