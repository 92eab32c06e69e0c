package main

import (
	"flag"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"maru/internal/goban"
	"maru/internal/infer"
	"maru/internal/server/game"
	"maru/internal/server/httpapi"
)

func main() {
	modelPath := flag.String("model", "maru.onnx", "path to ONNX model file")
	libPath := flag.String("lib", "onnxruntime.so", "path to the onnxruntime shared library")
	addr := flag.String("addr", ":2468", "listen address")
	devices := flag.String("devices", "-1", "comma-separated device numbers, -1 for CPU")
	batchSize := flag.Int("batch", 64, "max inference batch size")
	threadsPerDevice := flag.Int("device-threads", 1, "executor threads per device")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var deviceList []int
	for _, s := range strings.Split(*devices, ",") {
		if d, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			deviceList = append(deviceList, d)
		}
	}
	if len(deviceList) == 0 {
		deviceList = []int{-1}
	}

	processor, err := infer.NewProcessor(
		func(device int) (infer.Model, error) {
			return infer.NewORTModel(infer.ORTConfig{
				ModelPath:   *modelPath,
				LibraryPath: *libPath,
				Device:      device,
				MaxBatch:    *batchSize,
				InputLen:    goban.ModelInputSize,
				OutputLen:   goban.ModelOutputSize,
			})
		},
		deviceList, *batchSize, *threadsPerDevice,
		goban.ModelInputSize, goban.ModelOutputSize)
	if err != nil {
		log.Fatal().Err(err).Msg("inference setup failed")
	}
	defer processor.Close()

	manager := game.NewManager(processor)
	defer manager.Close()

	handler := httpapi.NewHandler(manager, log)

	log.Info().Str("addr", *addr).Msg("listening")
	if err := http.ListenAndServe(*addr, httpapi.NewRouter(handler)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
