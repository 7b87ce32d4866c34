// Command enginesh evaluates statements and calls functions of an engine
// through an enginewrap session.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/enginewrap/config"
	"github.com/wippyai/enginewrap/driver/process"
	"github.com/wippyai/enginewrap/driver/sim"
	"github.com/wippyai/enginewrap/driver/wasm"
	"github.com/wippyai/enginewrap/resolve"
	"github.com/wippyai/enginewrap/wire"
	"github.com/wippyai/enginewrap/wrap"
)

var version = "0.1.0"

var (
	configPath string
	driverName string
	engineCmd  string
	wasmPath   string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "enginesh",
	Short: "Talk to an engine through an enginewrap session",
	Long: `enginesh opens a session on an engine and evaluates statements or
calls engine functions with host values.

The engine is the in-process sim engine unless a configuration file or
the --driver, --engine-cmd and --wasm flags select another one.

Without a subcommand enginesh starts the interactive shell.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd.Context())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&driverName, "driver", "", "engine driver: sim, process or wasm")
	pf.StringVar(&engineCmd, "engine-cmd", "", "engine executable for the process driver")
	pf.StringVar(&wasmPath, "wasm", "", "engine module for the wasm driver")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	rootCmd.AddCommand(evalCmd, callCmd, docCmd, whoCmd, replCmd)
}

// loadConfig reads the configuration file, if any, and applies the
// command-line overrides.
func loadConfig() (*config.File, error) {
	f := config.Default()
	if configPath != "" {
		var err error
		if f, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}

	switch {
	case driverName != "":
		f.Engine.Driver = driverName
	case engineCmd != "":
		f.Engine.Driver = config.DriverProcess
	case wasmPath != "":
		f.Engine.Driver = config.DriverWasm
	}
	if engineCmd != "" {
		f.Engine.Command = engineCmd
	}
	if wasmPath != "" {
		f.Engine.Module = wasmPath
	}
	if verbose {
		f.Log.Level = "debug"
		f.Log.Development = true
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// openSession opens a session as configured and routes every package's
// logging to the configured logger. The session configuration is returned
// for its declared signatures.
func openSession(ctx context.Context) (*wrap.Session, *wrap.Config, error) {
	f, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := f.Logger()
	if err != nil {
		return nil, nil, err
	}
	for _, set := range []func(*zap.Logger){
		wrap.SetLogger, resolve.SetLogger, wire.SetLogger,
		sim.SetLogger, process.SetLogger, wasm.SetLogger,
	} {
		set(logger)
	}

	drv, err := f.Driver(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := f.SessionConfig(logger)
	if err != nil {
		return nil, nil, err
	}
	s, err := wrap.NewWithConfig(ctx, drv, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("session open", zap.String("driver", f.Engine.Driver))
	return s, cfg, nil
}
