package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults for the receipt printer this tool was written for: an Epson
// TM-T20 class printer on 80 mm paper at 203 dpi.
const (
	DefaultPort      = 9100
	DefaultProfile   = "TM-T20II"
	DefaultWidth     = 576
	DefaultThreshold = 0.5
	DefaultBaudRate  = 9600

	EnvPrefix = "ESCPOS"
)

// Output kinds understood by printer.Open.
const (
	OutputNetwork = "network"
	OutputFile    = "file"
	OutputStdout  = "stdout"
	OutputSerial  = "serial"
	OutputUSB     = "usb"
	OutputSpooler = "spooler"
)

// Config is passed explicitly into the image and printer packages.
type Config struct {
	Printer PrinterConfig `mapstructure:"printer"`
	Image   ImageConfig   `mapstructure:"image"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PrinterConfig describes where the job goes and how the session behaves.
type PrinterConfig struct {
	// Destination is the printer IP for the network output, or the file
	// path, serial port, vid:pid or spooler name for the others.
	Destination  string        `mapstructure:"destination"`
	Port         int           `mapstructure:"port"`
	Profile      string        `mapstructure:"profile"`
	Output       string        `mapstructure:"output"`
	BaudRate     int           `mapstructure:"baud_rate"`
	Initialize   bool          `mapstructure:"initialize"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ImageConfig drives normalization and monochrome conversion.
type ImageConfig struct {
	Path       string  `mapstructure:"path"`
	Width      int     `mapstructure:"width"`
	Threshold  float64 `mapstructure:"threshold"`
	Dither     string  `mapstructure:"dither"`
	Filter     string  `mapstructure:"filter"`
	DebugImage string  `mapstructure:"debug_image"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"port":          "printer.port",
	"profile":       "printer.profile",
	"output":        "printer.output",
	"baud":          "printer.baud_rate",
	"init":          "printer.initialize",
	"dial-timeout":  "printer.dial_timeout",
	"write-timeout": "printer.write_timeout",
	"width":         "image.width",
	"threshold":     "image.threshold",
	"dither":        "image.dither",
	"filter":        "image.filter",
	"debug-image":   "image.debug_image",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"log-file":      "logging.file",
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("printer.destination", "")
	v.SetDefault("printer.port", DefaultPort)
	v.SetDefault("printer.profile", DefaultProfile)
	v.SetDefault("printer.output", OutputNetwork)
	v.SetDefault("printer.baud_rate", DefaultBaudRate)
	v.SetDefault("printer.initialize", false)
	v.SetDefault("printer.dial_timeout", time.Duration(0))
	v.SetDefault("printer.write_timeout", time.Duration(0))

	v.SetDefault("image.path", "")
	v.SetDefault("image.width", DefaultWidth)
	v.SetDefault("image.threshold", DefaultThreshold)
	v.SetDefault("image.dither", "threshold")
	v.SetDefault("image.filter", "lanczos3")
	v.SetDefault("image.debug_image", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 30)
	v.SetDefault("logging.compress", false)
}

// RegisterFlags declares the command line flags whose values override the
// config file and environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", DefaultPort, "Printer port")
	fs.String("profile", DefaultProfile, "Printer profile (unknown names fall back to the generic raster profile)")
	fs.String("output", OutputNetwork, "Output: network, file, stdout, serial, usb, spooler")
	fs.Int("baud", DefaultBaudRate, "Baud rate for the serial output")
	fs.Bool("init", false, "Send ESC @ before the image")
	fs.Duration("dial-timeout", 0, "Connect timeout, 0 waits for the OS")
	fs.Duration("write-timeout", 0, "Write deadline, 0 disables it")
	fs.Int("width", DefaultWidth, "Image width in dots (576 for 80 mm, 384 for 58 mm paper)")
	fs.Float64("threshold", DefaultThreshold, "Lightness cutover between printed and blank dots, in (0,1)")
	fs.String("dither", "threshold", "Dithering: threshold, floyd-steinberg, atkinson, jarvis-judice-ninke, stucki, burkes, sierra-lite, bayer")
	fs.String("filter", "lanczos3", "Resampling filter: lanczos3, bicubic, bilinear, nearest, catmull-rom")
	fs.String("debug-image", "", "Write the monochrome raster to this PNG file")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-format", "console", "Log format: console, json")
	fs.String("log-file", "", "Also log to this file, rotated")
	fs.String("config", "", "Config file (yaml, json or toml)")
	fs.BoolP("verbose", "v", false, "Shortcut for --log-level debug")
}

// Load merges defaults, an optional config file, ESCPOS_* environment
// variables and the flags set on fs, in increasing priority.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}

		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}

		if verbose, err := fs.GetBool("verbose"); err == nil && verbose {
			v.Set("logging.level", "debug")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values the core relies on.
func (c *Config) Validate() error {
	switch c.Printer.Output {
	case OutputNetwork, OutputFile, OutputSerial, OutputUSB, OutputSpooler:
		if c.Printer.Destination == "" {
			return fmt.Errorf("destination is required for %s output", c.Printer.Output)
		}
	case OutputStdout:
	default:
		return fmt.Errorf("unknown output: %q", c.Printer.Output)
	}

	if c.Printer.Output == OutputNetwork && (c.Printer.Port < 1 || c.Printer.Port > 65535) {
		return fmt.Errorf("invalid port: %d", c.Printer.Port)
	}
	if c.Printer.Output == OutputSerial && c.Printer.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate: %d", c.Printer.BaudRate)
	}
	if c.Printer.DialTimeout < 0 || c.Printer.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	if c.Image.Path == "" {
		return fmt.Errorf("image path is required")
	}
	if c.Image.Width <= 0 {
		return fmt.Errorf("invalid width: %d", c.Image.Width)
	}
	if c.Image.Threshold <= 0 || c.Image.Threshold >= 1 {
		return fmt.Errorf("invalid threshold: %v (want 0 < threshold < 1)", c.Image.Threshold)
	}
	return nil
}
