package pms5003

import (
	"errors"
	"fmt"
)

// ErrWouldBlock is reported by a ByteSource when no byte has arrived yet.
// Frame reading retries on it until a byte or a hard error comes.
var ErrWouldBlock = errors.New("read would block")

// InvalidLengthError indicates that the frame length field did not match the fixed frame length.
type InvalidLengthError struct {
	Received uint16
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid frame length %v, expecting %v", e.Received, PMS5003FRAMELENGTH)
}

// InvalidDataError indicates a checksum mismatch over a fully read frame.
// Received is the sum computed from the frame bytes, Expected the trailer on the wire.
type InvalidDataError struct {
	Received uint16
	Expected uint16
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("checksum mismatch: computed 0x%04X, frame carries 0x%04X", e.Received, e.Expected)
}

// SerialError wraps a hard byte source failure during frame reading.
type SerialError struct {
	Err error
}

func (e *SerialError) Error() string {
	return fmt.Sprintf("serial read error: %v", e.Err)
}

func (e *SerialError) Unwrap() error {
	return e.Err
}
