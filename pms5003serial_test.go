package pms5003

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// Byte source that refuses every other read, the way an empty UART FIFO looks
type blockySource struct {
	r        *bytes.Reader
	attempts int
}

func (s *blockySource) ReadByte() (byte, error) {
	s.attempts++
	if s.attempts%2 == 1 {
		return 0, ErrWouldBlock
	}
	return s.r.ReadByte()
}

// Byte source that dies with a hard error after the given bytes
type dyingSource struct {
	data []byte
	err  error
	pos  int
}

func (s *dyingSource) ReadByte() (byte, error) {
	if len(s.data) <= s.pos {
		return 0, s.err
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func sampleMeasurement() Measurement {
	return Measurement{
		Standard:    Concentrations{PM1p0: 12, PM2p5: 25, PM10p0: 40},
		Atmospheric: Concentrations{PM1p0: 10, PM2p5: 22, PM10p0: 35},
		Counts:      Absolutes{PM0p3: 1500, PM0p5: 820, PM1p0: 140, PM2p5: 60, PM5p0: 10, PM10p0: 5},
	}
}

func TestMeasureSkipsNoise(t *testing.T) {
	want := sampleMeasurement()
	testCases := []struct {
		name  string
		noise []byte
	}{
		{name: "no noise"},
		{name: "plain junk", noise: []byte{0x00, 0x13, 0x37, 0xFE}},
		{name: "first marker byte inside junk", noise: []byte{0x42, 0x00, 0x42, 0x99}},
		{name: "second marker byte alone", noise: []byte{0x4D, 0x4D, 0x4D}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stream := append(append([]byte{}, tc.noise...), want.ToBytes()...)
			got, err := ReadMeasurement(bytes.NewReader(stream))
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

// A stray 0x42 right before a frame makes the plain-reset scanner eat that
// frame's marker. The scan is unbounded, so the call still returns the
// following frame instead of an error.
func TestMeasureMarkerPrefixNoise(t *testing.T) {
	var first Measurement
	second := sampleMeasurement()
	stream := append([]byte{0x42}, first.ToBytes()...)
	stream = append(stream, second.ToBytes()...)

	got, err := ReadMeasurement(bytes.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestMeasureInvalidLength(t *testing.T) {
	stream := []byte{0x42, 0x4D, 0x00, 0x1A, 0xDE, 0xAD, 0xBE, 0xEF}
	r := bytes.NewReader(stream)

	_, err := ReadMeasurement(r)
	var lenErr *InvalidLengthError
	require.ErrorAs(t, err, &lenErr)
	require.Equal(t, uint16(26), lenErr.Received)
	//Nothing past the length field may be consumed
	require.Equal(t, len(stream)-4, r.Len())
}

func TestMeasureInvalidChecksum(t *testing.T) {
	var m Measurement
	frame := m.ToBytes() //zero payload sums to 0xAB
	frame[PMS5003FRAMESIZE-2] = 0
	frame[PMS5003FRAMESIZE-1] = 0

	_, err := ReadMeasurement(bytes.NewReader(frame))
	var dataErr *InvalidDataError
	require.ErrorAs(t, err, &dataErr)
	require.Equal(t, uint16(0xAB), dataErr.Received)
	require.Equal(t, uint16(0x00), dataErr.Expected)
}

func TestMeasureSerialError(t *testing.T) {
	bang := errors.New("tty gone")
	m := sampleMeasurement()
	full := m.ToBytes()

	//Hard failure in the middle of the payload
	_, err := ReadMeasurement(&dyingSource{data: full[:10], err: bang})
	var serErr *SerialError
	require.ErrorAs(t, err, &serErr)
	require.ErrorIs(t, err, bang)

	//A finite stream running out is a hard error too
	_, err = ReadMeasurement(bytes.NewReader(full[:PMS5003FRAMESIZE-1]))
	require.ErrorAs(t, err, &serErr)
	require.ErrorIs(t, err, io.EOF)
}

func TestMeasureRetriesWouldBlock(t *testing.T) {
	want := sampleMeasurement()
	src := &blockySource{r: bytes.NewReader(want.ToBytes())}

	got, err := ReadMeasurement(src)
	require.NoError(t, err)
	require.Equal(t, want, got)
	//Every byte costs one blocked attempt plus one real read
	require.Equal(t, 2*PMS5003FRAMESIZE, src.attempts)
}

// A failed call must not poison the next one, there is no state to clear
func TestMeasureRecoversAfterError(t *testing.T) {
	good := sampleMeasurement()
	var zero Measurement
	bad := zero.ToBytes()
	bad[PMS5003FRAMESIZE-1]++ //breaks the checksum

	r := bytes.NewReader(append(bad, good.ToBytes()...))

	_, err := ReadMeasurement(r)
	var dataErr *InvalidDataError
	require.ErrorAs(t, err, &dataErr)

	got, err := ReadMeasurement(r)
	require.NoError(t, err)
	require.Equal(t, good, got)
}
