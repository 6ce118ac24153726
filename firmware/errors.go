package firmware

import "fmt"

// ValidationError reports a malformed or incomplete firmware package.
type ValidationError struct {
	// Field names the part of the package that failed validation
	Field string

	// Reason describes the problem
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid firmware %s: %s", e.Field, e.Reason)
}

// CRCMismatchError reports an application image whose CRC16 differs from the
// one recorded in the init packet.
type CRCMismatchError struct {
	Expected uint16
	Actual   uint16
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("application CRC mismatch: init packet expects 0x%04X, image has 0x%04X",
		e.Expected, e.Actual)
}
