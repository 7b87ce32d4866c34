// Package config loads enginewrap settings from YAML.
//
//	engine:
//	  driver: process          # sim | process | wasm
//	  command: simengine
//	  args: [--quiet]
//	  env: {ENGINE_HOME: /opt/engine}
//	  wait_timeout: 5s
//	session:
//	  autosync_dirs: true
//	  flatten_col_vectors: true
//	  signatures: |
//	    sort: func(x: f64) -> (f64, f64);
//	  signatures_file: engine.wit
//	log:
//	  level: debug
//	  development: true
//
// Relative paths are resolved against the directory of the file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/driver/process"
	"github.com/wippyai/enginewrap/driver/sim"
	"github.com/wippyai/enginewrap/driver/wasm"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/resolve"
	"github.com/wippyai/enginewrap/wrap"
)

// Driver kinds.
const (
	DriverSim     = "sim"
	DriverProcess = "process"
	DriverWasm    = "wasm"
)

// File is the root of a configuration file.
type File struct {
	Engine  Engine  `yaml:"engine"`
	Session Session `yaml:"session"`
	Log     Log     `yaml:"log"`

	// dir resolves relative paths; empty for parsed text.
	dir string
}

// Engine selects and configures the driver.
type Engine struct {
	Env              map[string]string `yaml:"env"`
	Driver           string            `yaml:"driver"`
	Command          string            `yaml:"command"`
	Dir              string            `yaml:"dir"`
	Module           string            `yaml:"module"`
	Args             []string          `yaml:"args"`
	WaitTimeout      time.Duration     `yaml:"wait_timeout"`
	MemoryLimitPages uint32            `yaml:"memory_limit_pages"`
}

// Session overrides wrap.DefaultConfig. Unset flags keep their defaults.
type Session struct {
	AutosyncDirs      *bool    `yaml:"autosync_dirs"`
	FlattenRowVectors *bool    `yaml:"flatten_row_vectors"`
	FlattenColVectors *bool    `yaml:"flatten_col_vectors"`
	ClearCallArgs     *bool    `yaml:"clear_call_args"`
	Signatures        string   `yaml:"signatures"`
	SignaturesFile    string   `yaml:"signatures_file"`
	Convertible       []string `yaml:"convertible"`
	ManualConvert     []string `yaml:"manual_convert"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given: the
// in-process sim engine and warn-level logging.
func Default() *File {
	return &File{
		Engine: Engine{Driver: DriverSim},
		Log:    Log{Level: "warn"},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read "+path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "resolve "+path)
	}
	f.dir = filepath.Dir(abs)
	return f, nil
}

// Parse decodes and validates YAML. Unknown keys are rejected. Missing
// sections keep the values of Default.
func Parse(data []byte) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse configuration")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the driver settings and the log level.
func (f *File) Validate() error {
	var issues []string
	switch f.Engine.Driver {
	case DriverSim:
	case DriverProcess:
		if f.Engine.Command == "" {
			issues = append(issues, "engine.command is required for the process driver")
		}
	case DriverWasm:
		if f.Engine.Module == "" {
			issues = append(issues, "engine.module is required for the wasm driver")
		}
	default:
		issues = append(issues, "engine.driver must be one of sim, process, wasm; got "+strings.TrimSpace(f.Engine.Driver))
	}
	if f.Log.Level != "" {
		if _, err := zap.ParseAtomicLevel(f.Log.Level); err != nil {
			issues = append(issues, "log.level: "+err.Error())
		}
	}
	switch f.Log.Encoding {
	case "", "json", "console":
	default:
		issues = append(issues, "log.encoding must be json or console")
	}
	if len(issues) > 0 {
		return errors.InvalidInput(errors.PhaseConfig, strings.Join(issues, "; "))
	}
	return nil
}

func (f *File) path(p string) string {
	if p == "" || filepath.IsAbs(p) || f.dir == "" {
		return p
	}
	return filepath.Join(f.dir, p)
}

// Driver builds the configured driver. Output the engine writes outside
// the protocol goes to stderr.
func (f *File) Driver(stderr io.Writer) (enginewrap.Driver, error) {
	e := f.Engine
	switch e.Driver {
	case DriverSim:
		return sim.Driver{}, nil
	case DriverProcess:
		env := make([]string, 0, len(e.Env))
		for k, v := range e.Env {
			env = append(env, k+"="+v)
		}
		slices.Sort(env)
		return process.Driver{
			Command:     e.Command,
			Args:        e.Args,
			Env:         env,
			Dir:         f.path(e.Dir),
			Stderr:      stderr,
			WaitTimeout: e.WaitTimeout,
		}, nil
	case DriverWasm:
		return wasm.Driver{
			Path:             f.path(e.Module),
			Args:             e.Args,
			Env:              e.Env,
			Stdout:           stderr,
			Stderr:           stderr,
			MemoryLimitPages: e.MemoryLimitPages,
		}, nil
	}
	return nil, errors.InvalidInput(errors.PhaseConfig, "unknown driver "+e.Driver)
}

// SessionConfig builds the session configuration, reading and parsing
// declared signatures.
func (f *File) SessionConfig(logger *zap.Logger) (*wrap.Config, error) {
	s := f.Session
	cfg := wrap.DefaultConfig()
	cfg.Logger = logger
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.AutosyncDirs, s.AutosyncDirs)
	set(&cfg.FlattenRowVectors, s.FlattenRowVectors)
	set(&cfg.FlattenColVectors, s.FlattenColVectors)
	set(&cfg.ClearCallArgs, s.ClearCallArgs)
	if len(s.Convertible) > 0 {
		cfg.Convertible = s.Convertible
	}
	if s.ManualConvert != nil {
		cfg.ManualConvert = s.ManualConvert
	}

	text := s.Signatures
	if s.SignaturesFile != "" {
		data, err := os.ReadFile(f.path(s.SignaturesFile))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read signatures")
		}
		text += "\n" + string(data)
	}
	if strings.TrimSpace(text) != "" {
		sigs, err := resolve.ParseSignatures(text)
		if err != nil {
			return nil, err
		}
		cfg.Signatures = sigs
	}
	return cfg, nil
}

// Logger builds the configured zap logger.
func (f *File) Logger() (*zap.Logger, error) {
	var zc zap.Config
	if f.Log.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if f.Log.Level != "" {
		level, err := zap.ParseAtomicLevel(f.Log.Level)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
		}
		zc.Level = level
	}
	if f.Log.Encoding != "" {
		zc.Encoding = f.Log.Encoding
	}
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
