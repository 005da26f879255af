package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/dispatch"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Viper keys. Environment variables use the DIRTREE_ prefix, e.g.
// DIRTREE_KEEP_EMPTY_SEGMENTS=true.
const (
	envPrefix = "DIRTREE"

	configKey       = "config"
	verboseKey      = "verbose"
	instructionsKey = "instructions"
	keepEmptyKey    = "keep_empty_segments"
	mountDebugKey   = "mount_debug"
	fsNameKey       = "fs_name"
	nameKey         = "name"
)

// app carries state shared between the root command and its subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &app{v: v}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dirtree",
		Short: "Replay directory commands against an in-memory tree",
		Long: `dirtree reads CREATE, DELETE, MOVE and LIST commands one per line, applies
them to an in-memory directory tree and prints every command followed by its
output. Logs go to stderr.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a YAML or JSON config override file")
	pf.IntP("verbose", "v", config.InfoVerbose, "Log verbosity between 1 (error) and 5 (trace)")
	pf.StringP("instructions", "i", "", `Path to the command file; unset or "-" reads stdin`)
	pf.Bool("keep-empty-segments", false, `Keep empty path segments such as the middle of "a//b" as directories named ""`)

	a.bind(configKey, pf.Lookup("config"))
	a.bind(verboseKey, pf.Lookup("verbose"))
	a.bind(instructionsKey, pf.Lookup("instructions"))
	a.bind(keepEmptyKey, pf.Lookup("keep-empty-segments"))

	root.AddCommand(a.runCmd(), a.mountCmd(), versionCmd())
	return root
}

func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", key, err))
	}
}

// loadConfig layers defaults, the config file and then flags/env into a.cfg
// and initializes logging.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	envErr := godotenv.Load()

	cfg := config.NewDefaultConfig()
	if path := a.v.GetString(configKey); path != "" {
		override, err := config.LoadConfigOverrideFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.Merge(override)
	}
	cfg.Merge(a.override())
	a.cfg = cfg

	util.InitializeLogger(cfg.LogLvl, cmd.ErrOrStderr())
	logger := util.GetLogger("main")
	if envErr != nil {
		if !errors.Is(envErr, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", envErr)
		}
		logger.Trace().Msg("No .env file found, using environment variables")
	}
	logger.Debug().
		Int("logLvl", cfg.LogLvl).
		Str("instructions", cfg.Instructions).
		Bool("keepEmptySegments", cfg.KeepEmptySegments).
		Msg("Configuration loaded")
	return nil
}

// override collects the values set by flag or environment.
func (a *app) override() *config.ConfigOverride {
	o := &config.ConfigOverride{}
	if a.v.IsSet(verboseKey) {
		o.LogLvl = util.Pointer(a.v.GetInt(verboseKey))
	}
	if a.v.IsSet(instructionsKey) {
		o.Instructions = util.Pointer(a.v.GetString(instructionsKey))
	}
	if a.v.IsSet(keepEmptyKey) {
		o.KeepEmptySegments = util.Pointer(a.v.GetBool(keepEmptyKey))
	}
	if a.v.IsSet(mountDebugKey) {
		o.Debug = util.Pointer(a.v.GetBool(mountDebugKey))
	}
	if a.v.IsSet(fsNameKey) {
		o.FsName = util.Pointer(a.v.GetString(fsNameKey))
	}
	if a.v.IsSet(nameKey) {
		o.Name = util.Pointer(a.v.GetString(nameKey))
	}
	return o
}

// replay runs every command from the configured instructions through a new
// Dispatcher writing to out.
func (a *app) replay(ctx context.Context, stdin io.Reader, out io.Writer) (*dispatch.Dispatcher, error) {
	logger := util.GetLogger("main")

	in := stdin
	source := "stdin"
	if !a.cfg.ReadsStdin() {
		f, err := os.Open(a.cfg.Instructions)
		if err != nil {
			return nil, fmt.Errorf("failed to open instructions: %w", err)
		}
		defer f.Close() // nolint:errcheck
		in = f
		source = a.cfg.Instructions
	}

	d := dispatch.New(a.cfg, out)
	logger.Info().Str("instructions", source).Str("run", d.RunID().String()).Msg("Replaying commands")
	if err := d.Run(ctx, in); err != nil {
		return nil, err
	}
	return d, nil
}
