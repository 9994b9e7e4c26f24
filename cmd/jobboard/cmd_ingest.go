package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobboard/internal/ingest"
)

func newIngestCmd(a *app) *cobra.Command {
	var pageURL string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion pass against the source page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pageURL != "" {
				a.cfg.Source.URL = pageURL
			}
			sum, err := runIngest(cmd.Context(), a)
			if asJSON && sum.RunID != "" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				_ = enc.Encode(sum)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "page to ingest (overrides source.url)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run summary as JSON")
	return cmd
}

func runIngest(parent context.Context, a *app) (ingest.Summary, error) {
	cfg, err := a.validated()
	if err != nil {
		return ingest.Summary{}, err
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return ingest.Summary{}, err
	}
	defer closeStore(st)

	trig, err := newTrigger(cfg, st, nil)
	if err != nil {
		return ingest.Summary{}, err
	}
	return trig.RunOnce(ctx)
}
