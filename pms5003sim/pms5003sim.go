/*
PMS5003 simulator

Feeds one simulated sensor to serial port. Create a virtual pair for testing
software against this without hardware

socat -d -d pty,raw,echo=0 pty,raw,echo=0

Sensor model is set over a local http interface while the sim runs.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hjkoskel/listserialports"
	"go.uber.org/zap"

	"pms5003"
)

func main() {
	pSerialDevice := flag.String("s", "", "serial device file")
	pUiPort := flag.Int("uiport", 8088, "port for local model ui")
	pModelFile := flag.String("model", "", "sensor model json file, loaded at start and written back on ui edits")
	pDebugLog := flag.Bool("d", false, "debug level logging")
	flag.Parse()

	logCfg := zap.NewDevelopmentConfig()
	if !*pDebugLog {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, errLogger := logCfg.Build()
	if errLogger != nil {
		fmt.Printf("logger init fail %v\n", errLogger.Error())
		os.Exit(-1)
	}
	defer logger.Sync()

	if *pSerialDevice == "" {
		fmt.Printf("Please define serial device. (-h for help)\nList of serial ports\n")
		proped, errProbing := listserialports.Probe(false)
		if errProbing != nil {
			fmt.Printf("Error probing serial ports %v", errProbing.Error())
			os.Exit(-1)
		}
		for _, ser := range proped {
			fmt.Print(ser.ToPrintoutFormat())
		}
		os.Exit(0)
	}

	simsensor := InitSimSensor()
	if *pModelFile != "" {
		mod, errLoad := LoadSensorModel(*pModelFile)
		if errLoad == nil {
			simsensor.Model = mod
			logger.Info("sensor model loaded", zap.String("file", *pModelFile))
		} else {
			logger.Warn("using default sensor model", zap.String("reason", errLoad.Error()))
		}
	}

	serialLink, errSerial := pms5003.CreateLinuxSerial(*pSerialDevice)
	if errSerial != nil {
		logger.Fatal("opening serial device failed",
			zap.String("device", *pSerialDevice), zap.String("reason", errSerial.Error()))
	}

	//Pump modelled bytes to wire
	go func() {
		for byteArr := range simsensor.Output {
			logger.Debug("to serial", zap.String("data", fmt.Sprintf("%X", byteArr)))
			errWrite := serialLink.SendBytes(byteArr)
			if errWrite != nil {
				logger.Error("serial write fail", zap.String("reason", errWrite.Error()))
			}
		}
	}()

	modelUpdates := make(chan SensorModel, 3)
	statusChanges := make(chan SensorModelStatus, 3)
	go simsensor.Run(statusChanges, modelUpdates)

	errUi := runModelUiServer(simsensor.Model, modelUpdates, statusChanges, *pUiPort, *pModelFile, logger)
	logger.Fatal("ui server failed", zap.String("reason", errUi.Error()))
}
