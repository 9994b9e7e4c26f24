package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jobboard/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, check or print the configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.cfgPath)
			}
			cfg := config.Default()
			cfg.App.DataDir = a.cfg.App.DataDir
			if err := config.SaveAtomic(a.cfgPath, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", a.cfgPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file (the old one is kept as .bak)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and report problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v := config.NormalizeAndValidate(a.cfg)
			out := cmd.OutOrStdout()
			for _, w := range v.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			for _, e := range v.Errors {
				fmt.Fprintln(out, "error:", e)
			}
			if !v.OK() {
				return fmt.Errorf("%s: %d problem(s)", a.cfgPath, len(v.Errors))
			}
			fmt.Fprintln(out, a.cfgPath, "ok")
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after env and flag overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if cfg.Store.DSN != "" {
				cfg.Store.DSN = "[redacted]"
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(&cfg)
		},
	}

	cmd.AddCommand(initCmd, validateCmd, showCmd)
	return cmd
}
