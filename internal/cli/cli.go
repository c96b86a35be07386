// Package cli implements the circcoords command-line interface.
package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "CIRCCOORDS"

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version    string
	verbose    bool
	silent     bool
	configFile string

	conf    *viper.Viper
	logger  *zap.Logger
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version, logger: zap.NewNop()}
	c.setupCommands()
	return c
}

// setupCommands initializes all CLI commands and their configurations.
func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:           "circcoords",
		Short:         "Sparse circular coordinates from persistent cohomology",
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initApp(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	pf := c.rootCmd.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	pf.BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging")
	pf.StringVar(&c.configFile, "config", "",
		"Configuration file. Overridden by environment variables ("+envPrefix+"_*) and flags.")

	c.rootCmd.AddCommand(c.newComputeCommand())
	c.rootCmd.AddCommand(c.newInspectCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	err := c.rootCmd.Execute()
	_ = c.logger.Sync()
	return err
}

// initApp binds the running command's flags to viper, reads the config file
// and builds the logger.
func (c *CLI) initApp(cmd *cobra.Command) error {
	c.conf = viper.New()
	c.conf.SetEnvPrefix(envPrefix)
	c.conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.conf.AutomaticEnv()
	if err := c.conf.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "binding flags")
	}
	if c.configFile != "" {
		c.conf.SetConfigFile(c.configFile)
		if err := c.conf.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %s", c.configFile)
		}
	}

	logger, err := newLogger(c.conf.GetBool("verbose"), c.conf.GetBool("silent"))
	if err != nil {
		return errors.Wrap(err, "building logger")
	}
	c.logger = logger
	c.logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("config", c.conf.ConfigFileUsed()))
	return nil
}

// newLogger returns a console logger on stderr at info level, debug when
// verbose, or a no-op logger when silent.
func newLogger(verbose, silent bool) (*zap.Logger, error) {
	if silent {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
