// Package config handles rvm.toml machine and session configuration.
//
//	[machine]
//	heap = 4096
//	max-steps = 1000000
//	entry = "start"
//
//	[repl]
//	prompt = "rvm> "
//	banner = true
//
//	[log]
//	verbose = false
package config

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/rvm/translate"
)

var f = translate.From

// ErrUnknownKey is returned for keys the configuration does not define.
type ErrUnknownKey []string

func (err ErrUnknownKey) Error() string {
	return f("unknown configuration keys: %v", strings.Join(err, ", "))
}

func (err ErrUnknownKey) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownKey)
	return
}

var ErrHeapSize = errors.New(f("machine heap size must not be negative"))

// ErrConfig locates a configuration error.
type ErrConfig struct {
	Path string
	Err  error
}

func (err *ErrConfig) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}

const (
	DEFAULT_HEAP   = 4096
	DEFAULT_PROMPT = "rvm> "
)

// Config is the complete rvm configuration.
type Config struct {
	Machine Machine `toml:"machine"`
	Repl    Repl    `toml:"repl"`
	Log     Log     `toml:"log"`
}

// Machine configures the emulated machine.
type Machine struct {
	Heap     int    `toml:"heap"`      // Heap size in bytes.
	MaxSteps int    `toml:"max-steps"` // 0 for no limit.
	Entry    string `toml:"entry"`     // Entry label for assembled sources.
}

// Repl configures interactive sessions.
type Repl struct {
	Prompt string `toml:"prompt"`
	Banner bool   `toml:"banner"`
}

// Log configures logging.
type Log struct {
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() (cfg *Config) {
	cfg = &Config{
		Machine: Machine{
			Heap: DEFAULT_HEAP,
		},
		Repl: Repl{
			Prompt: DEFAULT_PROMPT,
			Banner: true,
		},
	}
	return
}

// Decode reads TOML from r over the defaults.
func Decode(r io.Reader) (cfg *Config, err error) {
	cfg = Default()

	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		cfg = nil
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make(ErrUnknownKey, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		cfg = nil
		err = keys
		return
	}

	if cfg.Machine.Heap < 0 {
		cfg = nil
		err = ErrHeapSize
		return
	}

	return
}

// Load reads the configuration file at path.
func Load(path string) (cfg *Config, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err = Decode(inf)
	if err != nil {
		err = &ErrConfig{Path: path, Err: err}
		return
	}

	return
}
