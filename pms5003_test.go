package pms5003

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// Records line transitions and delays in order, shared by all fakes of one test
type eventLog struct {
	events []string
}

type fakePin struct {
	log  *eventLog
	name string
	fail error //when set, every operation fails with this
}

func (p *fakePin) SetHigh() error {
	if p.fail != nil {
		return p.fail
	}
	p.log.events = append(p.log.events, p.name+":high")
	return nil
}

func (p *fakePin) SetLow() error {
	if p.fail != nil {
		return p.fail
	}
	p.log.events = append(p.log.events, p.name+":low")
	return nil
}

type fakeDelay struct {
	log *eventLog
}

func (d *fakeDelay) DelayMs(ms uint8) {
	d.log.events = append(d.log.events, fmt.Sprintf("delay:%v", ms))
}

func TestInitSequence(t *testing.T) {
	log := &eventLog{}
	sensor := InitPMS5003(bytes.NewReader(nil), &fakePin{log: log, name: "dc"}, &fakePin{log: log, name: "rst"}, &fakeDelay{log: log})

	require.NoError(t, sensor.Init())
	require.Equal(t, []string{
		"dc:high",
		"rst:high",
		"rst:low",
		"delay:100",
		"rst:high",
		"delay:100",
	}, log.events)
}

func TestResetSequence(t *testing.T) {
	log := &eventLog{}
	sensor := InitPMS5003(bytes.NewReader(nil), &fakePin{log: log, name: "dc"}, &fakePin{log: log, name: "rst"}, &fakeDelay{log: log})

	require.NoError(t, sensor.Reset())
	require.Equal(t, []string{"rst:low", "delay:100", "rst:high", "delay:100"}, log.events)
}

// Pin failures come back exactly as the pin reported them, no wrapping
func TestInitPinErrorPassesThrough(t *testing.T) {
	broken := errors.New("gpio export failed")
	log := &eventLog{}
	sensor := InitPMS5003(bytes.NewReader(nil), &fakePin{log: log, name: "dc", fail: broken}, &fakePin{log: log, name: "rst"}, &fakeDelay{log: log})

	require.Equal(t, broken, sensor.Init())
	require.Empty(t, log.events)
}

func TestResetPinErrorPassesThrough(t *testing.T) {
	broken := errors.New("rst line stuck")
	log := &eventLog{}
	sensor := InitPMS5003(bytes.NewReader(nil), &fakePin{log: log, name: "dc"}, &fakePin{log: log, name: "rst", fail: broken}, &fakeDelay{log: log})

	require.Equal(t, broken, sensor.Reset())
	require.Empty(t, log.events)
}

func TestMeasureDelegates(t *testing.T) {
	want := sampleMeasurement()
	log := &eventLog{}
	sensor := InitPMS5003(bytes.NewReader(want.ToBytes()), &fakePin{log: log, name: "dc"}, &fakePin{log: log, name: "rst"}, &fakeDelay{log: log})

	got, err := sensor.Measure()
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Empty(t, log.events) //measuring must not touch the control lines
}

func TestMeasureErrorPassesThrough(t *testing.T) {
	var zero Measurement
	bad := zero.ToBytes()
	bad[PMS5003FRAMESIZE-1]++ //breaks the checksum

	sensor := InitPMS5003(bytes.NewReader(bad), NopPin{}, NopPin{}, SleepDelay{})
	_, err := sensor.Measure()
	var dataErr *InvalidDataError
	require.ErrorAs(t, err, &dataErr)
}
