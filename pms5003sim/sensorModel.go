/*
Sensor model

Sensor model state is loaded from disk and manipulated by user while running.
This models a single sensor in active mode: it only transmits, there is no
command channel on a PMS5003 beyond the reset line.

It acts as faulty sensor (or comm link) when the connectivity model says so.
*/

package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"pms5003"
)

const (
	DEFAULTPERIODMS   = 800  //Active mode frame interval
	INTERVALIDLECHARS = 1500 //How often idle line noise bursts out
)

type SimSensor struct {
	Output chan []byte //Writes out bursts of bytes
	Model  SensorModel //This is loaded, changed... stored etc..
	Status SensorModelStatus
}

func InitSimSensor() SimSensor {
	return SimSensor{
		Output: make(chan []byte, 10),
		Model:  DefaultSensorModel(),
	}
}

func DefaultSensorModel() SensorModel {
	return SensorModel{
		PowerOn:  true,
		PeriodMs: DEFAULTPERIODMS,
		//Slow waves so the UI shows something alive
		FineParticles:   SignalModel{Offset: 6, Noise: 1, Amplitude: 4, Period: 120000},
		MediumParticles: SignalModel{Offset: 4, Noise: 1, Amplitude: 3, Period: 300000, Phase: 60000},
		CoarseParticles: SignalModel{Offset: 2, Noise: 0.5, Amplitude: 2, Period: 600000},
		Connectivity:    ConnectivityModel{TxConnected: true},
	}
}

// Separate settings and status
type SensorModelStatus struct {
	Working            bool   `json:"working"`
	MeasurementCounter int    `json:"measurementCounter"` //- measurement counter (for sim)
	TxFrameCounter     int    `json:"txFrameCounter"`
	PM1p0Now           uint16 `json:"pm1p0Now"` //Standard calibration values going out right now
	PM2p5Now           uint16 `json:"pm2p5Now"`
	PM10p0Now          uint16 `json:"pm10p0Now"`
}

type SensorModel struct {
	PowerOn         bool              `json:"powerOn"`  //- is powered up (toggling this allows to do "power reset")
	PeriodMs        int               `json:"periodMs"` //How often a frame goes out
	FineParticles   SignalModel       `json:"fineParticles"`   //drives pm1.0
	MediumParticles SignalModel       `json:"mediumParticles"` //adds on top for pm2.5
	CoarseParticles SignalModel       `json:"coarseParticles"` //adds on top for pm10
	Connectivity    ConnectivityModel `json:"connectivity"`    //Allow simulate communication conditions
}

type ConnectivityModel struct {
	TxConnected      bool `json:"txConnected"`      //- tx line connected (sensor -> computer)
	InvalidChecksum  bool `json:"invalidChecksum"`  //Wrong checksum, easy test
	WrongLength      bool `json:"wrongLength"`      //Damaged length field
	IncompleteFrames bool `json:"incompleteFrames"` //Not all bytes are coming
	IdleCharacters   bool `json:"idleCharacters"`   //Random line noise in between frames
}

type SignalModel struct { //Works as floats, frames report µg/m³ as integers
	Noise     float64 `json:"noise"` //in range [value-noise, value+noise]
	Offset    float64 `json:"offset"`
	Period    int64   `json:"period"`    //In milliseconds, sine period
	Phase     int64   `json:"phase"`     //In milliseconds.
	Amplitude float64 `json:"amplitude"` // offset-amplitude to offset+amplitude
}

func (p *SignalModel) Calc(t time.Time) float64 {
	wave := 0.0
	if p.Period != 0 {
		ms := t.UnixMilli()
		angle := 2.0 * math.Pi * math.Mod(float64(ms+p.Phase), float64(p.Period)) / float64(p.Period)
		wave = math.Sin(angle) * p.Amplitude
	}
	return math.Max(0, (rand.Float64()*2.0-1.0)*p.Noise+wave+p.Offset)
}

func clampU16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if 65535 < v {
		return 65535
	}
	return uint16(v)
}

// Builds one measurement from the three mass signals. Signals are increments
// per size class, so pm1.0 <= pm2.5 <= pm10 holds like on a real unit.
func modelMeasurement(fine float64, medium float64, coarse float64) pms5003.Measurement {
	std := pms5003.Concentrations{
		PM1p0:  clampU16(fine),
		PM2p5:  clampU16(fine + medium),
		PM10p0: clampU16(fine + medium + coarse),
	}

	//Real units report the same triple in clean air and drift apart when loaded
	adjust := func(v uint16) uint16 {
		if v <= 30 {
			return v
		}
		return 30 + (v-30)*2/3
	}
	atm := pms5003.Concentrations{
		PM1p0:  adjust(std.PM1p0),
		PM2p5:  adjust(std.PM2p5),
		PM10p0: adjust(std.PM10p0),
	}

	//Crude optical scaling, counts fall off steeply with size
	base := fine*180 + medium*40 + coarse*8
	counts := pms5003.Absolutes{
		PM0p3:  clampU16(base),
		PM0p5:  clampU16(base * 0.29),
		PM1p0:  clampU16(base * 0.05),
		PM2p5:  clampU16(base * 0.01),
		PM5p0:  clampU16(base * 0.003),
		PM10p0: clampU16(base * 0.001),
	}

	return pms5003.Measurement{Standard: std, Atmospheric: atm, Counts: counts}
}

// Trash signal only if needed
func (p *ConnectivityModel) TrashSignal(frame []byte) []byte {
	if p.InvalidChecksum {
		frame[len(frame)-1] += 1
	}
	if p.WrongLength {
		frame[3] += 2 //Reader must flag this before touching the payload
	}
	if p.IncompleteFrames { //Cut away from end, receiver might keep waiting?
		frame = frame[0 : len(frame)-4]
	}
	return frame
}

// Spits random junk between frames when the model says the line is noisy
func (p *SimSensor) noiseRoutine() {
	lastTrashTime := time.Now()
	for {
		if p.Model.Connectivity.IdleCharacters {
			if (time.Millisecond * INTERVALIDLECHARS) < time.Since(lastTrashTime) {
				junk := make([]byte, 9)
				for i := range junk {
					junk[i] = byte(rand.Uint32() & 0xFF)
				}
				p.Output <- junk
				lastTrashTime = time.Now()
			}
		}
		time.Sleep(50 * time.Millisecond) //Give process time
	}
}

func (p *SimSensor) Run(statusUpdatingCh chan SensorModelStatus, modelUpdates chan SensorModel) {
	go p.noiseRoutine()

	prevFrameTime := time.Unix(0, 0)
	for {
		select {
		case mod := <-modelUpdates:
			p.Model = mod
		default:
		}

		period := time.Duration(p.Model.PeriodMs) * time.Millisecond
		if period <= 0 {
			period = DEFAULTPERIODMS * time.Millisecond
		}
		p.Status.Working = p.Model.PowerOn

		if p.Model.PowerOn && period < time.Since(prevFrameTime) {
			tNow := time.Now()
			meas := modelMeasurement(
				p.Model.FineParticles.Calc(tNow),
				p.Model.MediumParticles.Calc(tNow),
				p.Model.CoarseParticles.Calc(tNow))
			p.Status.PM1p0Now = meas.Standard.PM1p0
			p.Status.PM2p5Now = meas.Standard.PM2p5
			p.Status.PM10p0Now = meas.Standard.PM10p0
			p.Status.MeasurementCounter++
			prevFrameTime = tNow

			if p.Model.Connectivity.TxConnected {
				p.Output <- p.Model.Connectivity.TrashSignal(meas.ToBytes())
				p.Status.TxFrameCounter++
			}
		}

		if len(statusUpdatingCh) < cap(statusUpdatingCh) {
			statusUpdatingCh <- p.Status
		}
		time.Sleep(50 * time.Millisecond) //Give process time
	}
}

func LoadSensorModel(fileName string) (SensorModel, error) {
	byt, errRead := os.ReadFile(fileName)
	if errRead != nil {
		return SensorModel{}, fmt.Errorf("model file read error %v", errRead.Error())
	}
	mod := SensorModel{}
	errParse := json.Unmarshal(byt, &mod)
	if errParse != nil {
		return SensorModel{}, fmt.Errorf("model file parse error %v", errParse.Error())
	}
	return mod, nil
}

// Save over tmp file and rename, a crash must not leave a half written model
func SaveSensorModel(fileName string, mod SensorModel) error {
	byt, errMarshal := json.MarshalIndent(mod, "", "  ")
	if errMarshal != nil {
		return errMarshal
	}
	tmpName := fileName + ".tmp"
	f, err := os.Create(tmpName)
	if err != nil {
		return err
	}
	defer f.Close()

	_, errW := f.Write(byt)
	if errW != nil {
		return errW
	}
	syncErr := f.Sync()
	if syncErr != nil {
		return syncErr
	}
	f.Close() //Do not care about error. It is flushed

	return os.Rename(tmpName, fileName)
}
