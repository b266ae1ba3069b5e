//go:build !opencl

package accel

// OpenCLAvailable reports whether this binary was built with OpenCL support.
const OpenCLAvailable = false

// NewOpenCL always fails: OpenCL support needs cgo and the opencl build tag.
func NewOpenCL(deviceType DeviceType) (Accelerator, error) {
	return nil, NewRuntimeError("get platforms", CodePlatformNotFoundKHR,
		"OpenCL support not built in (rebuild with -tags opencl)")
}
