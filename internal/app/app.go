// Package app runs one pricing job from the command line: parse arguments,
// build the accelerator program, dispatch the kernel once and report.
package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	accel "github.com/jwaldner/heston/accel_lib"
	"github.com/jwaldner/heston/internal/config"
	"github.com/jwaldner/heston/internal/logger"
	"github.com/jwaldner/heston/internal/report"
)

// Exit codes. Every failure, -h included, exits non-zero.
const (
	ExitSuccess = 0
	ExitRuntime = 1
	ExitUsage   = 2
	ExitBuild   = 3
)

// AcceleratorFactory creates the backend a run dispatches to.
type AcceleratorFactory func(mode accel.ExecutionMode, deviceType accel.DeviceType) (accel.Accelerator, error)

// App holds the process-level collaborators of a run.
type App struct {
	Name           string
	Stdout         io.Writer
	Stderr         io.Writer
	NewAccelerator AcceleratorFactory
}

// New returns an App wired to the process streams and the real backends.
func New(name string) *App {
	return &App{
		Name:           name,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		NewAccelerator: accel.NewAccelerator,
	}
}

// Run executes a full run and returns the process exit code. Prices are
// printed only if every step succeeded.
func (a *App) Run(args []string) int {
	cfg, err := config.Parse(args)
	if err != nil {
		// -h carries no binary image, so it is a usage failure like any other.
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(a.Stdout, "%s: %v\n", a.Name, err)
		}
		config.Usage(a.Stdout, a.Name)
		return ExitUsage
	}

	if err := a.initLogging(cfg.Logging); err != nil {
		return a.fail(accel.NewRuntimeError("open log file", accel.CodeHostFailure, "%v", err))
	}
	logger.Debug.Printf("Config: %+v", cfg)

	res, err := a.price(cfg)
	if err != nil {
		return a.fail(err)
	}

	if err := report.Print(a.Stdout, cfg, res); err != nil {
		return a.fail(err)
	}
	return ExitSuccess
}

func (a *App) initLogging(cfg config.LoggingConfig) error {
	if cfg.LogFile == "" {
		logger.InitWithWriter(cfg.LogLevel, a.Stderr, nil)
		return nil
	}
	return logger.InitWithConfig(cfg.LogLevel, cfg.LogFile)
}

func (a *App) price(cfg config.Config) (accel.Result, error) {
	acc, err := a.NewAccelerator(cfg.Mode, cfg.DeviceType)
	if err != nil {
		return accel.Result{}, err
	}
	logger.Info.Printf("Using %s (%s mode)", acc.DeviceName(), cfg.Mode)

	session, err := accel.OpenSession(acc, cfg.BinaryPath)
	if err != nil {
		return accel.Result{}, err
	}
	defer session.Close()

	return session.Invoke(cfg.KernelName, accel.ArgsFromParams(cfg.Model))
}

// fail is the single place where errors become console output and an exit
// code.
func (a *App) fail(err error) int {
	var ae *accel.Error
	if !errors.As(err, &ae) {
		ae = accel.NewRuntimeError("", accel.CodeHostFailure, "%v", err)
	}

	if ae.Kind == accel.KindBuild {
		buildLog := strings.TrimRight(ae.Log, "\n")
		if buildLog == "" {
			buildLog = ae.Error()
		}
		fmt.Fprintln(a.Stdout, buildLog)
		logger.Warn.Printf("%v", ae)
		return ExitBuild
	}

	logger.Error.Printf("%v (code %d)", ae, ae.Code)
	fmt.Fprintf(a.Stderr, "Error:\t%v\tCode:\t%d\n", ae, ae.Code)
	return ExitRuntime
}
