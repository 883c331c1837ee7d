package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/term"

	"pms5003"
)

func getch() []byte {
	t, _ := term.Open("/dev/tty")
	term.RawMode(t)
	bytes := make([]byte, 3)
	numRead, err := t.Read(bytes)
	t.Restore()
	t.Close()
	if err != nil {
		return nil
	}
	return bytes[0:numRead]
}

func printInteractiveHelp() {
	fmt.Printf("---- Interactive commands ----\n")
	fmt.Printf("r = pulse reset line\n")
	fmt.Printf("i = run full init sequence\n")
	fmt.Printf("z = show persisted measurement counter\n")
	fmt.Printf("h = print this help\n")
}

// This have colors :)
func interactiveMode(deviceFile string, initialCounter int) error {
	printInteractiveHelp()

	ser, err := pms5003.CreateLinuxSerial(deviceFile)
	if err != nil {
		return err
	}
	defer ser.Close()

	sensor := pms5003.InitPMS5003(ser, pms5003.NopPin{}, pms5003.NopPin{}, pms5003.SleepDelay{})
	errInit := sensor.Init()
	if errInit != nil {
		return errInit
	}

	//Reset and init only touch the control pins, safe while this reads the line
	go func() {
		counter := initialCounter
		for {
			meas, errMeas := sensor.Measure()
			if errMeas != nil {
				color.Set(color.FgRed)
				fmt.Printf("\nSENSOR ERROR %v\n", errMeas.Error())
				color.Unset()
				continue
			}
			counter++

			color.Set(color.FgHiYellow)
			fmt.Printf("%v %v\n", time.Now().Format(time.RFC3339), meas.ToString())
			color.Unset()

			countSaveErr := saveMeasurementCounterToFile(counter)
			if countSaveErr != nil {
				color.Set(color.FgHiRed)
				fmt.Printf("counter save error %v\n", countSaveErr.Error())
				color.Unset()
			}
		}
	}()

	for {
		arr := getch()
		if len(arr) == 0 {
			continue
		}
		switch string(arr[0]) {
		case "\x03":
			os.Exit(0)
			return nil //Hack exit
		case "r":
			fmt.Printf("pulsing reset line\n")
			errReset := sensor.Reset()
			if errReset != nil {
				color.Set(color.FgRed)
				fmt.Printf("Error resetting: %v\n", errReset.Error())
				color.Unset()
			}
		case "i":
			fmt.Printf("running init sequence\n")
			errReinit := sensor.Init()
			if errReinit != nil {
				color.Set(color.FgRed)
				fmt.Printf("Error initializing: %v\n", errReinit.Error())
				color.Unset()
			}
		case "z":
			counterNow, counterErr := loadMeasurementCounterFromFile()
			if counterErr != nil {
				color.Set(color.FgRed)
				fmt.Printf("Counter error %v\n", counterErr.Error())
				color.Unset()
			} else {
				fmt.Printf("measurement counter %v\n", counterNow)
			}
		case "h":
			printInteractiveHelp()
		}
	}
}
