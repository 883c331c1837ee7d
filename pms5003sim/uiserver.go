package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Single sensor server. Serves the model as json on /model and accepts the
// same json back edited. Latest sensor status is on /status.
func runModelUiServer(
	initialModel SensorModel, modelUpdates chan SensorModel, simStatusUpdating chan SensorModelStatus,
	uiport int, modelFile string, logger *zap.Logger) error {

	var mu sync.Mutex //Guards modelNow and sensorStatusNow, handlers run concurrently
	modelNow := initialModel
	sensorStatusNow := SensorModelStatus{}

	go func() {
		for status := range simStatusUpdating {
			mu.Lock()
			sensorStatusNow = status
			mu.Unlock()
		}
	}()

	r := mux.NewRouter()

	r.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		b, _ := json.Marshal(sensorStatusNow)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	})

	r.HandleFunc("/model", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			postbody, errRead := io.ReadAll(r.Body)
			if errRead != nil {
				http.Error(w, fmt.Sprintf("reading POST request failed %v", errRead.Error()), http.StatusBadRequest)
				return
			}
			mod := SensorModel{}
			errMarsh := json.Unmarshal(postbody, &mod)
			if errMarsh != nil {
				http.Error(w, fmt.Sprintf("invalid payload %v", errMarsh.Error()), http.StatusBadRequest)
				return
			}
			logger.Info("model update from ui", zap.Any("model", mod))
			if len(modelUpdates) < cap(modelUpdates) {
				modelUpdates <- mod
				mu.Lock()
				modelNow = mod
				mu.Unlock()
				if modelFile != "" {
					errSave := SaveSensorModel(modelFile, mod)
					if errSave != nil {
						logger.Error("model save fail", zap.String("file", modelFile), zap.String("reason", errSave.Error()))
					}
				}
			} else {
				logger.Warn("model update channel jammed, edit dropped")
			}
		}

		//Report response
		mu.Lock()
		b, _ := json.Marshal(modelNow)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	})

	logger.Info("serving local ui", zap.Int("port", uiport))
	return http.ListenAndServe(fmt.Sprintf(":%v", uiport), r)
}
