/*
For unpacking and packing PMS5003 data frames
*/

package pms5003

// One frame on the wire: start marker, big-endian length field, payload, big-endian checksum
const (
	PMS5003DATALENGTH  = 26                    // payload bytes in one frame
	PMS5003FRAMELENGTH = PMS5003DATALENGTH + 2 // value of the length field: payload + checksum
	PMS5003FRAMESIZE   = PMS5003DATALENGTH + 6 // whole frame, marker and length included
)

// Every frame starts with these two bytes ("BM")
var PMS5003DATASTART = [2]byte{0x42, 0x4D}

func extractU16(data []byte, offset int) uint16 {
	return uint16(data[offset])<<8 | uint16(data[offset+1])
}

func putU16(data []byte, offset int, v uint16) {
	data[offset] = byte(v >> 8)
	data[offset+1] = byte(v & 0xFF)
}

// CalcChecksum is the frame integrity sum: plain byte addition modulo 2^16
// over marker, length field and payload, in wire order.
func CalcChecksum(parts ...[]byte) uint16 {
	var sum uint16
	for _, part := range parts {
		for _, b := range part {
			sum += uint16(b)
		}
	}
	return sum
}

// ParseMeasurement decodes a checksum-verified payload. Each field is a
// big-endian u16 at a fixed offset. Payload bytes 24-25 are reserved, they
// count into the checksum but carry no decoded meaning.
func ParseMeasurement(data [PMS5003DATALENGTH]byte) Measurement {
	return Measurement{
		Standard: Concentrations{
			PM1p0:  extractU16(data[:], 0),
			PM2p5:  extractU16(data[:], 2),
			PM10p0: extractU16(data[:], 4),
		},
		Atmospheric: Concentrations{
			PM1p0:  extractU16(data[:], 6),
			PM2p5:  extractU16(data[:], 8),
			PM10p0: extractU16(data[:], 10),
		},
		Counts: Absolutes{
			PM0p3:  extractU16(data[:], 12),
			PM0p5:  extractU16(data[:], 14),
			PM1p0:  extractU16(data[:], 16),
			PM2p5:  extractU16(data[:], 18),
			PM5p0:  extractU16(data[:], 20),
			PM10p0: extractU16(data[:], 22),
		},
	}
}

// ToBytes builds a complete wire frame from the measurement, checksum included.
// Reserved payload bytes stay zero. This is the transmit side of the sensor,
// used by the simulator and for round-trip testing.
func (p *Measurement) ToBytes() []byte {
	frame := make([]byte, PMS5003FRAMESIZE)
	frame[0] = PMS5003DATASTART[0]
	frame[1] = PMS5003DATASTART[1]
	putU16(frame, 2, PMS5003FRAMELENGTH)
	putU16(frame, 4, p.Standard.PM1p0)
	putU16(frame, 6, p.Standard.PM2p5)
	putU16(frame, 8, p.Standard.PM10p0)
	putU16(frame, 10, p.Atmospheric.PM1p0)
	putU16(frame, 12, p.Atmospheric.PM2p5)
	putU16(frame, 14, p.Atmospheric.PM10p0)
	putU16(frame, 16, p.Counts.PM0p3)
	putU16(frame, 18, p.Counts.PM0p5)
	putU16(frame, 20, p.Counts.PM1p0)
	putU16(frame, 22, p.Counts.PM2p5)
	putU16(frame, 24, p.Counts.PM5p0)
	putU16(frame, 26, p.Counts.PM10p0)
	putU16(frame, PMS5003FRAMESIZE-2, CalcChecksum(frame[:PMS5003FRAMESIZE-2]))
	return frame
}
