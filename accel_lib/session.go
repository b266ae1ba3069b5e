package accel

import (
	"os"

	"github.com/jwaldner/heston/internal/logger"
)

// Session is the accelerator handle of one run: a backend with a built
// program. It allows a single kernel invocation.
type Session struct {
	acc        Accelerator
	binaryPath string
	invoked    bool
}

// OpenSession reads the binary image at binaryPath and builds it on acc.
// The session takes ownership of acc; acc is closed if the build fails.
func OpenSession(acc Accelerator, binaryPath string) (*Session, error) {
	image, err := os.ReadFile(binaryPath)
	if err != nil {
		acc.Close()
		return nil, NewRuntimeError("read binary", CodeInvalidBinary, "%v", err)
	}
	logger.Info.Printf("Loading %s (%d bytes) on %s", binaryPath, len(image), acc.DeviceName())

	if err := acc.LoadProgram(image); err != nil {
		acc.Close()
		return nil, err
	}
	logger.Debug.Printf("Program built from %s", binaryPath)

	return &Session{acc: acc, binaryPath: binaryPath}, nil
}

// DeviceName returns the name of the device the program was built for.
func (s *Session) DeviceName() string {
	return s.acc.DeviceName()
}

// Close releases the accelerator.
func (s *Session) Close() error {
	return s.acc.Close()
}
