/*
pms5003serial

Lowest level frame capture from the serial byte stream. One measurement per
call, nothing kept between calls.

Rules when capturing frames

- Frame starts ALWAYS with 0x42 0x4D
- length field is big-endian and must be 28 (26 payload bytes + 2 checksum bytes)
- checksum is the byte sum of everything before it, modulo 2^16
- payload fields are big-endian u16 at fixed offsets
*/
package pms5003

import "errors"

// readByte polls the source until a byte or a hard failure.
// ErrWouldBlock only means the byte has not arrived yet.
func readByte(src ByteSource) (byte, error) {
	for {
		b, err := src.ReadByte()
		if err == nil {
			return b, nil
		}
		if errors.Is(err, ErrWouldBlock) {
			continue
		}
		return 0, &SerialError{Err: err}
	}
}

// readFull fills buf slot by slot, in arrival order.
func readFull(src ByteSource, buf []byte) error {
	for i := range buf {
		b, err := readByte(src)
		if err != nil {
			return err
		}
		buf[i] = b
	}
	return nil
}

// ReadMeasurement blocks until one complete valid frame is decoded from src.
// Fails with InvalidLengthError, InvalidDataError or SerialError. Holds no
// state between calls: every call starts by hunting the start marker, so
// retrying after any error is always safe.
func ReadMeasurement(src ByteSource) (Measurement, error) {
	//Hunt the marker. Plain reset on mismatch, relies on the two marker bytes being distinct
	expect := 0
	for expect < len(PMS5003DATASTART) {
		b, err := readByte(src)
		if err != nil {
			return Measurement{}, err
		}
		if b == PMS5003DATASTART[expect] {
			expect++
		} else {
			expect = 0
		}
	}

	var rawLength [2]byte
	if err := readFull(src, rawLength[:]); err != nil {
		return Measurement{}, err
	}
	length := extractU16(rawLength[:], 0)
	if length != PMS5003FRAMELENGTH {
		//No resync here. Caller decides, next call hunts the marker again
		return Measurement{}, &InvalidLengthError{Received: length}
	}

	var data [PMS5003DATALENGTH]byte
	if err := readFull(src, data[:]); err != nil {
		return Measurement{}, err
	}

	var rawExpected [2]byte
	if err := readFull(src, rawExpected[:]); err != nil {
		return Measurement{}, err
	}
	expected := extractU16(rawExpected[:], 0)
	received := CalcChecksum(PMS5003DATASTART[:], rawLength[:], data[:])
	if received != expected {
		//Payload was read completely but is not trusted, never returned
		return Measurement{}, &InvalidDataError{Received: received, Expected: expected}
	}

	return ParseMeasurement(data), nil
}
