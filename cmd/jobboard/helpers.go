package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"jobboard/internal/config"
	"jobboard/internal/domain"
	"jobboard/internal/ingest"
	"jobboard/internal/logging"
	"jobboard/internal/metrics"
	"jobboard/internal/scrape"
	"jobboard/internal/secrets"
	"jobboard/internal/store"
	"jobboard/internal/store/pgstore"
)

func storeOptions(cfg config.Config) store.Options {
	return store.Options{
		Keys:     domain.KeyPolicy{FoldCase: cfg.Normalize.KeyCaseInsensitive},
		FoldTags: cfg.Normalize.TagsCaseInsensitive,
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	opts := storeOptions(cfg)
	switch cfg.Store.Driver {
	case "postgres":
		pc := pgstore.Config{
			DSN:        cfg.Store.DSN,
			MaxConns:   cfg.Store.MaxConns,
			ViaBouncer: cfg.Store.ViaBouncer,
		}
		pw, err := dbPassword(cfg)
		if err != nil {
			return nil, err
		}
		pc.Password = pw
		return pgstore.Open(ctx, pc, opts)
	default:
		return store.Open(cfg.DBPath(), opts)
	}
}

// dbPassword looks up the postgres password in the keychain, then the
// environment. Without a keyring account a DSN that carries its own password
// wins, and finding none is not an error (trust auth, .pgpass).
func dbPassword(cfg config.Config) (string, error) {
	acct := cfg.Store.PasswordKeyringAccount
	if acct == "" {
		if pc, err := pgconn.ParseConfig(cfg.Store.DSN); err == nil && pc.Password != "" {
			return "", nil
		}
	}
	pw, err := secrets.DBPassword(acct)
	if errors.Is(err, secrets.ErrNoPassword) && acct == "" {
		return "", nil
	}
	return pw, err
}

func newBrowser(cfg config.Config) scrape.Browser {
	src := cfg.Source
	if src.Renderer == "http" {
		return scrape.StaticBrowser{
			Client:    &http.Client{Timeout: src.ActionTimeout},
			Limiter:   scrape.NewHostLimiter(src.RequestsPerSecond, 1),
			UserAgent: src.UserAgent,
		}
	}
	return scrape.ChromeBrowser{
		Headless:      src.Headless,
		UserAgent:     src.UserAgent,
		ExecPath:      src.ExecPath,
		ActionTimeout: src.ActionTimeout,
	}
}

func newExtractor(cfg config.Config) *scrape.Extractor {
	src := cfg.Source
	sel := src.Selectors
	return scrape.New(newBrowser(cfg), scrape.Config{
		Selectors: scrape.Selectors{
			Container: sel.Container,
			Title:     sel.Title,
			Company:   sel.Company,
			Location:  sel.Location,
			Posted:    sel.Posted,
			JobType:   sel.JobType,
			Tags:      sel.Tags,
			Link:      sel.Link,
		},
		LoadMore: scrape.LoadMore{
			Selector:  src.LoadMore.Selector,
			MaxClicks: src.LoadMore.MaxClicks,
			Pause:     src.LoadMore.Pause,
		},
		Settle: src.Settle,
	}, logging.New("scrape"))
}

func newTrigger(cfg config.Config, st store.Store, m *metrics.Metrics) (*ingest.Trigger, error) {
	lock, err := ingest.NewLock(cfg.App.DataDir)
	if err != nil {
		return nil, err
	}
	return &ingest.Trigger{
		Runner: &ingest.Runner{
			Store:  st,
			Source: newExtractor(cfg),
			Opts: ingest.Options{
				DefaultJobType: cfg.Normalize.DefaultJobType,
				DefaultTags:    cfg.Normalize.DefaultTags,
				FoldTags:       cfg.Normalize.TagsCaseInsensitive,
			},
			Log:     logging.New("ingest"),
			Metrics: m,
			Now:     time.Now,
		},
		Lock:    lock,
		Status:  &ingest.Status{},
		URL:     cfg.Source.URL,
		Timeout: cfg.Ingest.Timeout,
	}, nil
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		logging.New("store").Warn("close store", "err", err)
	}
}
