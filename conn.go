/*
PMS5003 capability interfaces

The sensor side of the driver is abstract. Different implementations are made
for linux serial ports and tinygo-microcontroller environments
*/
package pms5003

import "time"

// ByteSource hands out sensor bytes one at a time, in arrival order.
// Returns ErrWouldBlock when no byte is available yet; any other error is hard.
// Method set matches io.ByteReader, so bufio.Reader and bytes.Reader qualify.
type ByteSource interface {
	ReadByte() (byte, error)
}

// Pin is a digital output line (data/command select, reset).
type Pin interface {
	SetHigh() error
	SetLow() error
}

// Delay blocks for the given number of milliseconds.
type Delay interface {
	DelayMs(ms uint8)
}

// NopPin is for setups where the line is left unwired or strapped in hardware.
// Typical USB-UART breakouts do not expose SET/RESET at all.
type NopPin struct{}

func (NopPin) SetHigh() error { return nil }
func (NopPin) SetLow() error  { return nil }

// SleepDelay implements Delay with time.Sleep.
type SleepDelay struct{}

func (SleepDelay) DelayMs(ms uint8) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

var _ Pin = NopPin{}
var _ Delay = SleepDelay{}
