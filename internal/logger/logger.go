package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	Info    = log.New(io.Discard, "", 0)
	Warn    = log.New(io.Discard, "", 0)
	Debug   = log.New(io.Discard, "", 0)
	Verbose = log.New(io.Discard, "", 0)
	Error   = log.New(io.Discard, "", 0)

	// Current log level for filtering
	currentLogLevel string

	logFile *os.File
)

// Levels lists the accepted level names, quietest first.
var Levels = []string{"error", "warn", "info", "debug", "verbose"}

// InitWithConfig sends enabled levels to logFilePath. Without a log file the
// enabled levels go to stderr.
func InitWithConfig(logLevel, logFilePath string) error {
	if !ValidLevel(logLevel) {
		return fmt.Errorf("unknown log level %q", logLevel)
	}
	Close()

	if logFilePath == "" {
		InitWithWriter(logLevel, os.Stderr, nil)
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	logFile = f
	InitWithWriter(logLevel, os.Stderr, f)
	return nil
}

// InitWithWriter wires the loggers to console and, when non-nil, file.
// Error is recorded in the file only: the console already gets the
// one-line "Error:" report from the caller.
func InitWithWriter(logLevel string, console io.Writer, file io.Writer) {
	currentLogLevel = logLevel

	activeWriter := console
	errorWriter := io.Discard
	if file != nil {
		activeWriter = file
		errorWriter = file
	}

	// Create null writer for disabled log levels
	nullWriter := io.Discard

	Info = log.New(getWriter("info", activeWriter, nullWriter), "ℹ️  INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(getWriter("warn", activeWriter, nullWriter), "⚠️  WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(getWriter("debug", activeWriter, nullWriter), "🐛 DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Verbose = log.New(getWriter("verbose", activeWriter, nullWriter), "🔍 VERBOSE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(errorWriter, "❌ ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// Close closes the log file, if one is open.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ValidLevel reports whether level is a known level name.
func ValidLevel(level string) bool {
	_, ok := levelRank(level)
	return ok
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	currentLevel, exists := levelRank(currentLogLevel)
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levelRank(level)
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}

func levelRank(level string) (int, bool) {
	for i, l := range Levels {
		if l == level {
			return i, true
		}
	}
	return 0, false
}
