package firmware

import "github.com/moffa90/go-legacydfu/protocol"

// Image is a validated firmware image: an init packet and an application image.
// An Image is immutable after construction and safe for concurrent reads.
type Image struct {
	initPacket  []byte
	application []byte
}

// NewImage builds an Image from the init packet and application bytes.
// Both buffers are copied. Returns *ValidationError if either is empty.
//
// Example:
//
//	img, err := firmware.NewImage(datBytes, binBytes)
func NewImage(initPacket, application []byte) (*Image, error) {
	if len(initPacket) == 0 {
		return nil, &ValidationError{Field: "init packet", Reason: "empty"}
	}
	if len(application) == 0 {
		return nil, &ValidationError{Field: "application image", Reason: "empty"}
	}

	return &Image{
		initPacket:  append([]byte(nil), initPacket...),
		application: append([]byte(nil), application...),
	}, nil
}

// Len returns the application image length in bytes.
func (img *Image) Len() int {
	return len(img.application)
}

// InitPacket returns the init packet bytes. The slice must not be modified.
func (img *Image) InitPacket() []byte {
	return img.initPacket
}

// Application returns the application image bytes. The slice must not be modified.
func (img *Image) Application() []byte {
	return img.application
}

// InitPacketInfo decodes the legacy init packet.
func (img *Image) InitPacketInfo() (*InitPacket, error) {
	return ParseInitPacket(img.initPacket)
}

// VerifyCRC compares the application CRC16 with the one in the init packet.
// Returns *CRCMismatchError on mismatch.
func (img *Image) VerifyCRC() error {
	info, err := img.InitPacketInfo()
	if err != nil {
		return err
	}

	actual := protocol.CalculateImageCRC(img.application)
	if actual != info.ImageCRC {
		return &CRCMismatchError{Expected: info.ImageCRC, Actual: actual}
	}
	return nil
}
