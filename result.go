package pms5003

import "fmt"

// Concentrations is a mass concentration triple in µg/m³.
type Concentrations struct {
	PM1p0  uint16
	PM2p5  uint16
	PM10p0 uint16
}

// Absolutes is a particle count sextuple, particles per 0.1 l of air,
// counted above each size threshold. Smallest first.
type Absolutes struct {
	PM0p3  uint16
	PM0p5  uint16
	PM1p0  uint16
	PM2p5  uint16
	PM5p0  uint16
	PM10p0 uint16
}

// Measurement is one fully decoded frame. Plain value, owns nothing.
type Measurement struct {
	Standard    Concentrations // factory calibration (CF=1)
	Atmospheric Concentrations // under atmospheric environment
	Counts      Absolutes
}

// NOTICE: raw register values, used for debug printouts
func (p *Measurement) ToString() string {
	return fmt.Sprintf("PM1.0=%vµg/m³ PM2.5=%vµg/m³ PM10=%vµg/m³ (atm %v/%v/%v) counts/0.1l >0.3µm=%v >0.5µm=%v >1.0µm=%v >2.5µm=%v >5.0µm=%v >10µm=%v",
		p.Standard.PM1p0, p.Standard.PM2p5, p.Standard.PM10p0,
		p.Atmospheric.PM1p0, p.Atmospheric.PM2p5, p.Atmospheric.PM10p0,
		p.Counts.PM0p3, p.Counts.PM0p5, p.Counts.PM1p0, p.Counts.PM2p5, p.Counts.PM5p0, p.Counts.PM10p0)
}
