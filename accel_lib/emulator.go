package accel

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v2"
)

// EmulatorPlatform is the platform name an emulator image must declare.
const EmulatorPlatform = "heston-emulator"

const modelHestonEuro = "heston-euro"

// MaxComputeUnits bounds the goroutines one emulated kernel may start.
const MaxComputeUnits = 256

// emulatorImage is the binary image format understood by the emulator.
type emulatorImage struct {
	Platform string           `yaml:"platform"`
	Kernels  []emulatedKernel `yaml:"kernels"`
}

type emulatedKernel struct {
	Name         string `yaml:"name"`
	Model        string `yaml:"model"`
	Paths        int    `yaml:"paths"`
	Steps        int    `yaml:"steps"`
	Seed         uint64 `yaml:"seed"`
	ComputeUnits int    `yaml:"compute_units"`
}

// Emulator is a software accelerator. Its images are YAML manifests naming
// the kernels it exposes; the Heston kernel runs on host goroutines.
type Emulator struct {
	kernels map[string]emulatedKernel
	outputs Outputs
	written bool
	closed  bool
}

// NewEmulator returns an emulator with no program loaded.
func NewEmulator() *Emulator {
	return &Emulator{}
}

// DeviceName implements Accelerator.
func (e *Emulator) DeviceName() string {
	return EmulatorPlatform + " (software)"
}

// LoadProgram parses and checks the manifest. Every problem found is
// reported in the build log.
func (e *Emulator) LoadProgram(image []byte) error {
	if e.closed {
		return NewRuntimeError("load program", CodeInvalidOperation, "emulator is closed")
	}

	var img emulatorImage
	if err := yaml.UnmarshalStrict(image, &img); err != nil {
		return NewBuildError("load program", fmt.Sprintf("error: image is not an emulator manifest: %v\n", err))
	}

	kernels, problems := checkImage(img)
	if len(problems) > 0 {
		var log strings.Builder
		for _, p := range problems {
			fmt.Fprintf(&log, "error: %s\n", p)
		}
		fmt.Fprintf(&log, "%d error(s) generated.\n", len(problems))
		return NewBuildError("load program", log.String())
	}

	e.kernels = kernels
	return nil
}

func checkImage(img emulatorImage) (map[string]emulatedKernel, []string) {
	var problems []string
	if img.Platform != EmulatorPlatform {
		problems = append(problems, fmt.Sprintf("platform %q does not match %q", img.Platform, EmulatorPlatform))
	}
	if len(img.Kernels) == 0 {
		problems = append(problems, "image defines no kernels")
	}

	kernels := make(map[string]emulatedKernel, len(img.Kernels))
	for i, k := range img.Kernels {
		where := fmt.Sprintf("kernel[%d]", i)
		if k.Name == "" {
			problems = append(problems, where+": missing name")
		} else {
			where = fmt.Sprintf("kernel %q", k.Name)
			if _, dup := kernels[k.Name]; dup {
				problems = append(problems, where+": defined more than once")
			}
		}
		if k.Model != modelHestonEuro {
			problems = append(problems, fmt.Sprintf("%s: unknown model %q", where, k.Model))
		}
		if k.Paths <= 0 {
			problems = append(problems, fmt.Sprintf("%s: paths must be positive, got %d", where, k.Paths))
		}
		if k.Steps <= 0 {
			problems = append(problems, fmt.Sprintf("%s: steps must be positive, got %d", where, k.Steps))
		}
		if k.ComputeUnits < 0 {
			problems = append(problems, fmt.Sprintf("%s: compute_units must not be negative, got %d", where, k.ComputeUnits))
		}
		if k.ComputeUnits > MaxComputeUnits {
			problems = append(problems, fmt.Sprintf("%s: compute_units must not exceed %d, got %d", where, MaxComputeUnits, k.ComputeUnits))
		}
		if k.ComputeUnits == 0 {
			k.ComputeUnits = 1
		}
		if k.ComputeUnits > k.Paths && k.Paths > 0 {
			k.ComputeUnits = k.Paths
		}
		kernels[k.Name] = k
	}

	return kernels, problems
}

// Dispatch implements Accelerator. The outputs are written once, when the
// kernel finishes.
func (e *Emulator) Dispatch(kernel string, args KernelArgs) error {
	switch {
	case e.closed:
		return NewRuntimeError("dispatch", CodeInvalidOperation, "emulator is closed")
	case e.kernels == nil:
		return NewRuntimeError("dispatch", CodeInvalidProgramExec, "no program loaded")
	case e.written:
		return NewRuntimeError("dispatch", CodeInvalidOperation, "output buffers already written")
	}

	k, ok := e.kernels[kernel]
	if !ok {
		return NewRuntimeError("create kernel", CodeInvalidKernelName, "kernel %q not found in program", kernel)
	}
	if math.Abs(float64(args.Rho)) > 1 {
		return NewRuntimeError("dispatch", CodeInvalidValue, "rho %v outside [-1, 1]", args.Rho)
	}
	if !(args.T > 0) {
		return NewRuntimeError("dispatch", CodeInvalidValue, "maturity %v must be positive", args.T)
	}

	e.outputs = priceHestonEuro(args, k)
	e.written = true
	return nil
}

// ReadOutputs implements Accelerator.
func (e *Emulator) ReadOutputs() (Outputs, error) {
	if !e.written {
		return Outputs{}, NewRuntimeError("read outputs", CodeInvalidOperation, "kernel has not completed")
	}
	return e.outputs, nil
}

// Close implements Accelerator.
func (e *Emulator) Close() error {
	e.closed = true
	e.kernels = nil
	return nil
}
