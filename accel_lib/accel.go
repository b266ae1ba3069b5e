// Package accel drives an accelerator that prices European options under the
// Heston model. It loads a prebuilt binary image, binds the model parameters
// and two output buffers to a kernel and runs that kernel exactly once.
package accel

import (
	"fmt"

	"github.com/jwaldner/heston/internal/logger"
	"github.com/jwaldner/heston/internal/models"
)

//go:generate mockgen -write_package_comment=false -package=accel_test -destination=mock_accelerator_test.go github.com/jwaldner/heston/accel_lib Accelerator

// Accelerator is one device-side execution target. Implementations own their
// platform context, devices and built program until Close is called.
type Accelerator interface {
	// LoadProgram builds the binary image for the selected devices.
	LoadProgram(image []byte) error

	// Dispatch runs the named kernel once and blocks until the output buffers
	// have been migrated back to host-visible memory.
	Dispatch(kernel string, args KernelArgs) error

	// ReadOutputs returns the output buffers written by the last Dispatch.
	ReadOutputs() (Outputs, error)

	// DeviceName describes the device the program runs on.
	DeviceName() string

	// Close releases the program, context and buffers.
	Close() error
}

// KernelArgs are the scalar kernel arguments that follow the two output
// buffers, in argument order.
type KernelArgs struct {
	Theta      float32
	Kappa      float32
	Xi         float32
	Rho        float32
	T          float32
	Rate       float32
	Volatility float32
	S0         float32
	K          float32
}

// ArgsFromParams narrows the model parameters to the kernel's float arguments.
func ArgsFromParams(p models.HestonParams) KernelArgs {
	return KernelArgs{
		Theta:      float32(p.Theta),
		Kappa:      float32(p.Kappa),
		Xi:         float32(p.Xi),
		Rho:        float32(p.Rho),
		T:          float32(p.T),
		Rate:       float32(p.Rate),
		Volatility: float32(p.Volatility),
		S0:         float32(p.S0),
		K:          float32(p.K),
	}
}

// Outputs holds the two output buffers of the kernel.
type Outputs struct {
	Call float32
	Put  float32
}

// Prices widens the outputs for reporting.
func (o Outputs) Prices() models.OptionPrices {
	return models.OptionPrices{Call: float64(o.Call), Put: float64(o.Put)}
}

// ExecutionMode selects the accelerator backend.
type ExecutionMode string

const (
	ExecutionModeAuto     ExecutionMode = "auto"
	ExecutionModeOpenCL   ExecutionMode = "opencl"
	ExecutionModeEmulator ExecutionMode = "emulator"
)

// DeviceType is the device class an OpenCL context is bound to.
type DeviceType string

const (
	DeviceTypeAccelerator DeviceType = "accelerator"
	DeviceTypeGPU         DeviceType = "gpu"
	DeviceTypeCPU         DeviceType = "cpu"
	DeviceTypeAll         DeviceType = "all"
)

// ParseExecutionMode validates a mode name.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch m := ExecutionMode(s); m {
	case ExecutionModeAuto, ExecutionModeOpenCL, ExecutionModeEmulator:
		return m, nil
	}
	return "", fmt.Errorf("unknown execution mode %q (want auto, opencl or emulator)", s)
}

// ParseDeviceType validates a device class name.
func ParseDeviceType(s string) (DeviceType, error) {
	switch d := DeviceType(s); d {
	case DeviceTypeAccelerator, DeviceTypeGPU, DeviceTypeCPU, DeviceTypeAll:
		return d, nil
	}
	return "", fmt.Errorf("unknown device type %q (want accelerator, gpu, cpu or all)", s)
}

// NewAccelerator creates the backend for mode. In auto mode an OpenCL device
// of the requested class is preferred and the emulator is used otherwise.
func NewAccelerator(mode ExecutionMode, deviceType DeviceType) (Accelerator, error) {
	switch mode {
	case ExecutionModeEmulator:
		return NewEmulator(), nil
	case ExecutionModeOpenCL:
		return NewOpenCL(deviceType)
	case ExecutionModeAuto:
		acc, err := NewOpenCL(deviceType)
		if err == nil {
			return acc, nil
		}
		logger.Debug.Printf("OpenCL unavailable, using emulator: %v", err)
		return NewEmulator(), nil
	default:
		return nil, NewRuntimeError("select backend", CodeInvalidValue, "unknown execution mode %q", mode)
	}
}
