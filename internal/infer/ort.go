package infer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

// ORTConfig describes an ONNX Runtime backed model.
type ORTConfig struct {
	ModelPath   string
	LibraryPath string
	Device      int // GPU number, -1 for CPU
	MaxBatch    int
	InputLen    int
	OutputLen   int
	InputName   string // defaults to "inputs"
	OutputName  string // defaults to "outputs"
}

// ORTModel implements Model on top of ONNX Runtime, holding persistent
// max-batch tensors the way a session reuses device memory best. One
// ORTModel belongs to exactly one Executor.
type ORTModel struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	inputBuf  []float32
	outputBuf []float32
	maxBatch  int
	inputLen  int
	outputLen int
}

// NewORTModel loads the model and picks the first usable execution
// provider (CUDA, then DirectML, then CPU). Construction failures wrap
// ErrResourceUnavailable.
func NewORTModel(cfg ORTConfig) (*ORTModel, error) {
	modelPath, err := ResolveModelPath(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}

	if !ort.IsInitialized() {
		libPath, err := resolveSharedLibraryPath(cfg.LibraryPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
		}
		libDir := filepath.Dir(libPath)
		os.Setenv("PATH", libDir+string(os.PathListSeparator)+os.Getenv("PATH"))

		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
		}
	}

	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 64
	}
	if cfg.InputName == "" {
		cfg.InputName = "inputs"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "outputs"
	}

	inputBuf := make([]float32, cfg.MaxBatch*cfg.InputLen)
	outputBuf := make([]float32, cfg.MaxBatch*cfg.OutputLen)

	inputTensor, err := ort.NewTensor(ort.NewShape(int64(cfg.MaxBatch), int64(cfg.InputLen)), inputBuf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	outputTensor, err := ort.NewTensor(ort.NewShape(int64(cfg.MaxBatch), int64(cfg.OutputLen)), outputBuf)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}

	providers := []struct {
		name  string
		setup func(*ort.SessionOptions) error
	}{
		{"CUDA", func(so *ort.SessionOptions) error {
			if cfg.Device < 0 {
				return fmt.Errorf("cpu device requested")
			}
			cudaOpts, err := ort.NewCUDAProviderOptions()
			if err != nil {
				return err
			}
			defer cudaOpts.Destroy()
			if err := cudaOpts.Update(map[string]string{
				"device_id": fmt.Sprintf("%d", cfg.Device),
			}); err != nil {
				return err
			}
			return so.AppendExecutionProviderCUDA(cudaOpts)
		}},
		{"DirectML", func(so *ort.SessionOptions) error {
			if cfg.Device < 0 {
				return fmt.Errorf("cpu device requested")
			}
			return so.AppendExecutionProviderDirectML(cfg.Device)
		}},
		{"CPU", func(so *ort.SessionOptions) error { return nil }},
	}

	var session *ort.AdvancedSession

	for _, p := range providers {
		so, err := ort.NewSessionOptions()
		if err != nil {
			continue
		}

		if err := p.setup(so); err != nil {
			so.Destroy()
			continue
		}

		s, err := ort.NewAdvancedSession(
			modelPath,
			[]string{cfg.InputName}, []string{cfg.OutputName},
			[]ort.Value{inputTensor}, []ort.Value{outputTensor},
			so)
		if err != nil {
			log.Warn().Str("provider", p.name).Err(err).Msg("session creation failed")
			so.Destroy()
			continue
		}

		// Warmup run; a provider that cannot execute the graph is skipped.
		if err := s.Run(); err != nil {
			log.Warn().Str("provider", p.name).Err(err).Msg("warmup failed")
			s.Destroy()
			so.Destroy()
			continue
		}

		log.Info().Str("provider", p.name).Str("model", modelPath).Msg("inference session ready")
		session = s
		so.Destroy()
		break
	}

	if session == nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("%w: no usable execution provider", ErrResourceUnavailable)
	}

	return &ORTModel{
		session:   session,
		input:     inputTensor,
		output:    outputTensor,
		inputBuf:  inputBuf,
		outputBuf: outputBuf,
		maxBatch:  cfg.MaxBatch,
		inputLen:  cfg.InputLen,
		outputLen: cfg.OutputLen,
	}, nil
}

// Forward runs the session over n items, chunking by the persistent
// tensor's batch capacity.
func (m *ORTModel) Forward(inputs, outputs []float32, n int) error {
	for offset := 0; offset < n; offset += m.maxBatch {
		count := min(m.maxBatch, n-offset)

		copied := copy(m.inputBuf, inputs[offset*m.inputLen:(offset+count)*m.inputLen])
		for i := copied; i < len(m.inputBuf); i++ {
			m.inputBuf[i] = 0
		}

		if err := m.session.Run(); err != nil {
			return err
		}

		copy(outputs[offset*m.outputLen:(offset+count)*m.outputLen], m.outputBuf)
	}

	return nil
}

// Close releases the session and its tensors.
func (m *ORTModel) Close() {
	if m.session != nil {
		m.session.Destroy()
	}
	if m.input != nil {
		m.input.Destroy()
	}
	if m.output != nil {
		m.output.Destroy()
	}
}
