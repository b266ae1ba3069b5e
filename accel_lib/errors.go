package accel

import (
	"errors"
	"fmt"
)

// ErrorKind classifies accelerator failures.
type ErrorKind int

const (
	// KindRuntime covers every platform or dispatch failure that is not a
	// program build failure.
	KindRuntime ErrorKind = iota
	// KindBuild means the binary image could not be built for the devices.
	KindBuild
)

func (k ErrorKind) String() string {
	switch k {
	case KindBuild:
		return "build"
	default:
		return "runtime"
	}
}

// Error codes follow the OpenCL numbering so both backends report the same
// values for the same failure.
const (
	CodeSuccess             = 0
	CodeDeviceNotFound      = -1
	CodeDeviceNotAvailable  = -2
	CodeOutOfResources      = -5
	CodeBuildProgramFailure = -11
	CodeInvalidValue        = -30
	CodeInvalidDeviceType   = -31
	CodeInvalidBinary       = -42
	CodeInvalidProgram      = -44
	CodeInvalidProgramExec  = -45
	CodeInvalidKernelName   = -46
	CodeInvalidOperation    = -59
	CodePlatformNotFoundKHR = -1001

	// CodeHostFailure marks host-side failures that have no OpenCL code,
	// such as an unwritable log file or a closed stdout.
	CodeHostFailure = -9999
)

// Error is returned by accelerators and sessions. Build failures carry the
// toolchain log, runtime failures carry a numeric code.
type Error struct {
	Kind ErrorKind
	Code int
	Op   string
	Msg  string
	Log  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// NewBuildError returns a build failure with the given log.
func NewBuildError(op, log string) *Error {
	return &Error{
		Kind: KindBuild,
		Code: CodeBuildProgramFailure,
		Op:   op,
		Msg:  "program build failed",
		Log:  log,
	}
}

// NewRuntimeError returns a runtime failure with the given code.
func NewRuntimeError(op string, code int, format string, args ...interface{}) *Error {
	return &Error{
		Kind: KindRuntime,
		Code: code,
		Op:   op,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// IsBuildError reports whether err wraps a build failure.
func IsBuildError(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindBuild
}
