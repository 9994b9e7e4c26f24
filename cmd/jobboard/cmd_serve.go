package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobboard/internal/httpapi"
	"jobboard/internal/ingest"
	"jobboard/internal/logging"
	"jobboard/internal/metrics"
	"jobboard/internal/query"
	"jobboard/internal/scheduler"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the jobs API and run scheduled ingestion",
		Long: `Starts the HTTP API. When ingest.interval is set, the source page is
ingested right away and then on every interval. POST /ingest/run triggers a
run on demand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.App.Addr = addr
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides app.addr)")
	return cmd
}

func runServe(parent context.Context, a *app) error {
	cfg, err := a.validated()
	if err != nil {
		return err
	}
	log := logging.New("serve")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	m := metrics.New()
	trig, err := newTrigger(cfg, st, m)
	if err != nil {
		return err
	}
	// Background runs see ctx cancelled on shutdown; let them finish before
	// the store closes.
	defer trig.Wait()

	handler := httpapi.NewHandler(ctx, httpapi.Deps{
		Store:   st,
		Query:   query.Service{Store: st},
		Ingest:  trig,
		Config:  cfg,
		Metrics: m,
		Log:     logging.New("http"),
	})

	ln, err := net.Listen("tcp", cfg.App.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", "http://"+ln.Addr().String(), "store", cfg.Store.Driver)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Ingest.Interval > 0 {
		g.Go(func() error {
			scheduler.Every(gctx, cfg.Ingest.Interval, "ingest", func(ctx context.Context) error {
				_, err := trig.RunOnce(ctx)
				if errors.Is(err, ingest.ErrBusy) {
					log.Info("scheduled ingest skipped, a run is in progress")
					return nil
				}
				return err
			})
			return nil
		})
	}
	return g.Wait()
}
