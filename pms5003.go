package pms5003

const (
	RESETSETTLEMS = 100 //Settle time for both reset phases
)

// PMS5003 drives one sensor: the serial byte stream, two control lines and a
// delay source. Owns all four for its lifetime, nothing else may touch them.
type PMS5003 struct {
	tty   ByteSource //Serial port, sensor transmits frames by itself
	dc    Pin        //Data/command select line
	rst   Pin        //Reset line, active low
	delay Delay
}

func InitPMS5003(tty ByteSource, dc Pin, rst Pin, delay Delay) PMS5003 {
	return PMS5003{tty: tty, dc: dc, rst: rst, delay: delay}
}

// Init raises both control lines to their operating level and runs one reset
// cycle. Pin errors come back as-is.
func (p *PMS5003) Init() error {
	errDc := p.dc.SetHigh()
	if errDc != nil {
		return errDc
	}
	errRst := p.rst.SetHigh()
	if errRst != nil {
		return errRst
	}
	return p.Reset()
}

// Reset holds the reset line low for the settle time, releases it and settles
// again before returning. Plain ordered sequence, no state machine.
func (p *PMS5003) Reset() error {
	errLow := p.rst.SetLow()
	if errLow != nil {
		return errLow
	}
	p.delay.DelayMs(RESETSETTLEMS)
	errHigh := p.rst.SetHigh()
	if errHigh != nil {
		return errHigh
	}
	p.delay.DelayMs(RESETSETTLEMS)
	return nil
}

// Measure blocks until the next valid frame arrives on the serial line.
// Errors are never retried here, caller owns that policy.
func (p *PMS5003) Measure() (Measurement, error) {
	return ReadMeasurement(p.tty)
}
