package testdata

import (
	_ "embed"
	"os"
	"path/filepath"
)

// EmulatorImage builds on the emulator and exports the hestonEuro kernel.
//
//go:embed hestonEuro.emu.yaml
var EmulatorImage []byte

// BrokenEmulatorImage fails to build: unknown model and zero paths.
//
//go:embed broken.emu.yaml
var BrokenEmulatorImage []byte

// ConfigFile overrides spot, strike and engine selection.
//
//go:embed heston.yaml
var ConfigFile []byte

// DefaultPriceBands bound the prices the default parameter set must produce.
// They are wide enough to hold any converged Monte Carlo estimate.
var DefaultPriceBands = struct {
	CallMin, CallMax float64
	PutMin, PutMax   float64
}{
	CallMin: 5.5,
	CallMax: 8.0,
	PutMin:  2.5,
	PutMax:  5.0,
}

// WriteFile stores data as name under dir and returns the full path.
func WriteFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
