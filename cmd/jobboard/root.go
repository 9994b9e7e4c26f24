package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobboard/internal/config"
	"jobboard/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalFlags struct {
	configPath string
	dataDir    string
	logLevel   string
	logFormat  string
}

// app is what every subcommand gets after the persistent pre-run: the
// effective configuration and where it came from.
type app struct {
	flags   globalFlags
	cfg     config.Config
	cfgPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "jobboard",
		Short: "Scrape job listings and serve them over a JSON API",
		Long: "jobboard pulls listings off a job board page, normalizes and\n" +
			"deduplicates them into SQLite or PostgreSQL, and serves them over HTTP.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default <data-dir>/config.yml)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (env "+config.EnvDataDir+", default ./data)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "text|json (overrides config)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newIngestCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newSecretsCmd(a))
	return root
}

// init resolves the config file (creating it with defaults when absent),
// applies env and flag overrides and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	dataDir := a.flags.dataDir
	if dataDir == "" {
		dataDir = os.Getenv(config.EnvDataDir)
	}
	if dataDir == "" {
		dataDir = config.Default().App.DataDir
	}

	a.cfgPath = a.flags.configPath
	if a.cfgPath == "" {
		a.cfgPath = filepath.Join(dataDir, "config.yml")
	}

	// A missing default config file means defaults, except for validate; an
	// explicit --config must exist unless it is about to be created.
	cfg, err := config.Load(a.cfgPath)
	missingOK := cmd.Name() == "init" ||
		(cmd.Name() != "validate" && a.flags.configPath == "")
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && missingOK:
		cfg = config.Default()
		cfg.App.DataDir = dataDir
	default:
		return fmt.Errorf("load config %s: %w", a.cfgPath, err)
	}

	config.OverlayEnv(&cfg, os.Getenv)
	if a.flags.dataDir != "" {
		cfg.App.DataDir = a.flags.dataDir
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}

// validated returns the normalized config or an error listing every problem.
func (a *app) validated() (config.Config, error) {
	cfg, v := config.NormalizeAndValidate(a.cfg)
	log := logging.New("config")
	for _, w := range v.Warnings {
		log.Warn(w)
	}
	if !v.OK() {
		return cfg, fmt.Errorf("invalid config %s:\n- %s", a.cfgPath, joinLines(v.Errors))
	}
	return cfg, nil
}
