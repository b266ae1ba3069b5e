package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	accel "github.com/jwaldner/heston/accel_lib"
	"github.com/jwaldner/heston/internal/logger"
	"github.com/jwaldner/heston/internal/models"
)

// DefaultKernelName is the kernel entry point used when -n is not given.
const DefaultKernelName = "hestonEuro"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// EngineConfig represents accelerator selection
type EngineConfig struct {
	ExecutionMode string `yaml:"execution_mode"` // auto, opencl, emulator
	DeviceType    string `yaml:"device_type"`    // accelerator, gpu, cpu, all
	KernelName    string `yaml:"kernel_name"`
}

// YAMLConfig is the layout of the file given with -f.
type YAMLConfig struct {
	Model   models.HestonParams `yaml:"model"`
	Engine  EngineConfig        `yaml:"engine"`
	Logging LoggingConfig       `yaml:"logging"`
}

// Config is the immutable result of argument parsing.
type Config struct {
	BinaryPath string
	KernelName string
	Model      models.HestonParams
	Reference  models.Reference
	Mode       accel.ExecutionMode
	DeviceType accel.DeviceType
	Logging    LoggingConfig
}

// UsageError reports a command line that cannot be run.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

type flagValues struct {
	binary     string
	kernel     string
	callRef    float64
	putRef     float64
	configFile string
	mode       string
	deviceType string
	logLevel   string
	logFile    string
	model      models.HestonParams
}

func newFlagSet(name string, v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	def := models.DefaultHestonParams()

	fs.StringVar(&v.binary, "a", "", "accelerator binary image (required)")
	fs.StringVar(&v.kernel, "n", DefaultKernelName, "kernel name")
	fs.Float64Var(&v.callRef, "c", 0, "reference call price")
	fs.Float64Var(&v.putRef, "p", 0, "reference put price")
	fs.StringVar(&v.configFile, "f", "", "YAML config file")
	fs.StringVar(&v.mode, "m", string(accel.ExecutionModeAuto), "execution mode: auto, opencl or emulator")
	fs.StringVar(&v.deviceType, "d", string(accel.DeviceTypeAccelerator), "device type: accelerator, gpu, cpu or all")
	fs.StringVar(&v.logLevel, "log-level", "warn", "log level: error, warn, info, debug or verbose")
	fs.StringVar(&v.logFile, "log-file", "", "log file (default stderr)")

	fs.Float64Var(&v.model.Theta, "theta", def.Theta, "long-run variance")
	fs.Float64Var(&v.model.Kappa, "kappa", def.Kappa, "mean-reversion rate")
	fs.Float64Var(&v.model.Xi, "xi", def.Xi, "volatility of volatility")
	fs.Float64Var(&v.model.Rho, "rho", def.Rho, "price/variance correlation")
	fs.Float64Var(&v.model.S0, "s0", def.S0, "spot price")
	fs.Float64Var(&v.model.K, "k", def.K, "strike price")
	fs.Float64Var(&v.model.Rate, "rate", def.Rate, "risk-free rate")
	fs.Float64Var(&v.model.Volatility, "vol", def.Volatility, "initial volatility")
	fs.Float64Var(&v.model.T, "t", def.T, "time to maturity in years")

	return fs
}

// Usage writes the usage text for prog to w.
func Usage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage: %s -a binary_image [-n kernel_name] [-c call_price] [-p put_price] [options]\n", prog)
	fs := newFlagSet(prog, &flagValues{})
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// Parse builds a Config from command line arguments. Values are layered as
// defaults, then the -f file, then the environment, then explicit flags.
// flag.ErrHelp is returned as is for -h so the caller can print usage
// without an error line; every other failure is a *UsageError. Both are
// usage failures.
func Parse(args []string) (Config, error) {
	var v flagValues
	fs := newFlagSet("heston", &v)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, err
		}
		return Config{}, &UsageError{Err: err}
	}
	if fs.NArg() > 0 {
		return Config{}, usageErrorf("unexpected argument %q", fs.Arg(0))
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := Config{
		KernelName: DefaultKernelName,
		Model:      models.DefaultHestonParams(),
		Mode:       accel.ExecutionModeAuto,
		DeviceType: accel.DeviceTypeAccelerator,
		Logging:    LoggingConfig{LogLevel: "warn"},
	}
	mode := string(cfg.Mode)
	deviceType := string(cfg.DeviceType)

	if v.configFile != "" {
		yamlCfg, err := loadYAMLConfig(v.configFile, cfg.Model)
		if err != nil {
			return Config{}, &UsageError{Err: err}
		}
		cfg.Model = yamlCfg.Model
		if yamlCfg.Engine.ExecutionMode != "" {
			mode = yamlCfg.Engine.ExecutionMode
		}
		if yamlCfg.Engine.DeviceType != "" {
			deviceType = yamlCfg.Engine.DeviceType
		}
		if yamlCfg.Engine.KernelName != "" {
			cfg.KernelName = yamlCfg.Engine.KernelName
		}
		if yamlCfg.Logging.LogLevel != "" {
			cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
		}
		if yamlCfg.Logging.LogFile != "" {
			cfg.Logging.LogFile = yamlCfg.Logging.LogFile
		}
	}

	mode = getEnv("HESTON_MODE", mode)
	deviceType = getEnv("HESTON_DEVICE_TYPE", deviceType)
	cfg.KernelName = getEnv("HESTON_KERNEL", cfg.KernelName)
	cfg.Logging.LogLevel = getEnv("LOG_LEVEL", cfg.Logging.LogLevel)
	cfg.Logging.LogFile = getEnv("LOG_FILE", cfg.Logging.LogFile)

	cfg.BinaryPath = v.binary
	if set["n"] {
		cfg.KernelName = v.kernel
	}
	if set["c"] {
		cfg.Reference.Call, cfg.Reference.HasCall = v.callRef, true
	}
	if set["p"] {
		cfg.Reference.Put, cfg.Reference.HasPut = v.putRef, true
	}
	if set["m"] {
		mode = v.mode
	}
	if set["d"] {
		deviceType = v.deviceType
	}
	if set["log-level"] {
		cfg.Logging.LogLevel = v.logLevel
	}
	if set["log-file"] {
		cfg.Logging.LogFile = v.logFile
	}
	overrideModel(&cfg.Model, v.model, set)

	var err error
	if cfg.Mode, err = accel.ParseExecutionMode(mode); err != nil {
		return Config{}, &UsageError{Err: err}
	}
	if cfg.DeviceType, err = accel.ParseDeviceType(deviceType); err != nil {
		return Config{}, &UsageError{Err: err}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func overrideModel(dst *models.HestonParams, src models.HestonParams, set map[string]bool) {
	fields := map[string]struct {
		dst *float64
		src float64
	}{
		"theta": {&dst.Theta, src.Theta},
		"kappa": {&dst.Kappa, src.Kappa},
		"xi":    {&dst.Xi, src.Xi},
		"rho":   {&dst.Rho, src.Rho},
		"s0":    {&dst.S0, src.S0},
		"k":     {&dst.K, src.K},
		"rate":  {&dst.Rate, src.Rate},
		"vol":   {&dst.Volatility, src.Volatility},
		"t":     {&dst.T, src.T},
	}
	for name, f := range fields {
		if set[name] {
			*f.dst = f.src
		}
	}
}

func (c Config) validate() error {
	if c.BinaryPath == "" {
		return usageErrorf("binary image (-a) is required")
	}
	if c.KernelName == "" {
		return usageErrorf("kernel name (-n) must not be empty")
	}
	if !logger.ValidLevel(c.Logging.LogLevel) {
		return usageErrorf("unknown log level %q", c.Logging.LogLevel)
	}
	return nil
}

// loadYAMLConfig reads path on top of the given model defaults, so keys
// missing from the file keep their default values.
func loadYAMLConfig(path string, model models.HestonParams) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	yamlCfg := YAMLConfig{Model: model}
	if err := yaml.UnmarshalStrict(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &yamlCfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
