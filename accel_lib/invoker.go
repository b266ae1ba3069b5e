package accel

import (
	"time"

	"github.com/jwaldner/heston/internal/logger"
)

// Result is what a single kernel invocation produced.
type Result struct {
	Outputs Outputs
	// Elapsed is host wall time around dispatch, migration and wait. It
	// includes queue overhead and is not a device-side measurement.
	Elapsed time.Duration
}

// Invoke binds args to kernel, runs it once and reads the migrated outputs.
// A session can be invoked only once.
func (s *Session) Invoke(kernel string, args KernelArgs) (Result, error) {
	if s.invoked {
		return Result{}, NewRuntimeError("invoke", CodeInvalidOperation,
			"kernel %q: session already dispatched", kernel)
	}
	s.invoked = true

	logger.Debug.Printf("Dispatching %s from %s", kernel, s.binaryPath)
	logger.Verbose.Printf("Kernel args: %+v", args)

	start := time.Now()
	if err := s.acc.Dispatch(kernel, args); err != nil {
		return Result{}, err
	}
	elapsed := time.Since(start)

	out, err := s.acc.ReadOutputs()
	if err != nil {
		return Result{}, err
	}
	logger.Info.Printf("Kernel %s (%s) finished in %s", kernel, s.binaryPath, elapsed)

	return Result{Outputs: out, Elapsed: elapsed}, nil
}
