/*
Simple example how to read single PMS5003 sensor

Sensor pushes frames by itself in active mode, so this just decodes and prints.
Measurement counter persists over runs. Laser diode lifetime is worth tracking.

With plain USB-serial adapter the SET and RESET lines are not connected, so
control pins are no-ops here.
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/hjkoskel/listserialports"

	"pms5003"
)

const (
	MEASUREDCOUNTERFILE     = "measuredcounter"
	MEASUREDCOUNTERFILE_TMP = "measuredcounter.tmp"
)

func loadMeasurementCounterFromFile() (int, error) {
	byt, errRead := os.ReadFile(MEASUREDCOUNTERFILE)
	if errRead != nil {
		return 0, fmt.Errorf("counter reading error %v", errRead.Error())
	}
	i, parseErr := strconv.ParseInt(string(byt), 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("error parsing counter from file %v", parseErr.Error())
	}
	return int(i), nil
}

// Write to tmp file and rename, counter must survive power cuts
func saveMeasurementCounterToFile(counter int) error {
	f, err := os.Create(MEASUREDCOUNTERFILE_TMP)
	if err != nil {
		return err
	}
	defer f.Close()

	_, errW := io.WriteString(f, fmt.Sprintf("%v", counter))
	if errW != nil {
		return errW
	}
	syncErr := f.Sync()
	if syncErr != nil {
		return syncErr
	}
	f.Close() //Do not care about error. It is flushed

	return os.Rename(MEASUREDCOUNTERFILE_TMP, MEASUREDCOUNTERFILE)
}

func main() {
	pSerialDevice := flag.String("s", "", "serial device file")
	pInteractive := flag.Bool("i", false, "interactive mode")
	pCount := flag.Int("n", 0, "stop after this many measurements, 0 keeps going")
	flag.Parse()

	serialDeviceFileName := string(*pSerialDevice)
	if serialDeviceFileName == "" {
		fmt.Printf("Please define serial device. (-h for help)\nList of serial ports\n")
		proped, _ := listserialports.Probe(false)
		for _, ser := range proped {
			fmt.Print(ser.ToPrintoutFormat())
		}
		os.Exit(0)
	}

	theMeasCounter, errLoadCounter := loadMeasurementCounterFromFile()
	if errLoadCounter != nil {
		fmt.Printf("Error loading measurement counter %v, start from 0\n", errLoadCounter)
	} else {
		fmt.Printf("Starting from count %v\n", theMeasCounter)
	}

	if *pInteractive {
		err := interactiveMode(serialDeviceFileName, theMeasCounter)
		if err != nil {
			fmt.Printf("ERR=%v\n", err.Error())
		}
		return
	}

	serialLink, serialInitErr := pms5003.CreateLinuxSerial(serialDeviceFileName)
	if serialInitErr != nil {
		fmt.Printf("Initializing serial port %v failed %v\n", serialDeviceFileName, serialInitErr.Error())
		return
	}
	defer serialLink.Close()

	sensor := pms5003.InitPMS5003(serialLink, pms5003.NopPin{}, pms5003.NopPin{}, pms5003.SleepDelay{})
	errInit := sensor.Init()
	if errInit != nil {
		fmt.Printf("Sensor init failed %v\n", errInit.Error())
		return
	}

	gotThisRun := 0
	for {
		meas, errMeas := sensor.Measure()
		if errMeas != nil {
			color.Set(color.FgRed)
			fmt.Printf("\nSENSOR ERROR %v\n", errMeas.Error())
			color.Unset()
			continue //Next call hunts a fresh frame
		}
		theMeasCounter++
		gotThisRun++

		color.Set(color.FgHiYellow)
		fmt.Printf("%v %v\n", time.Now().Format(time.RFC3339), meas.ToString())
		color.Unset()

		countSaveErr := saveMeasurementCounterToFile(theMeasCounter)
		if countSaveErr != nil {
			color.Set(color.FgHiRed)
			fmt.Printf("counter save error %v\n", countSaveErr.Error())
			color.Unset()
		}

		if 0 < *pCount && *pCount <= gotThisRun {
			return
		}
	}
}
