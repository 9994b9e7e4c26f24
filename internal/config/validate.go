package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobboard/internal/logging"
	"jobboard/internal/normalize"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a trimmed copy of cfg along with everything
// wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.App.Addr = strings.TrimSpace(out.App.Addr)
	out.App.DataDir = strings.TrimSpace(out.App.DataDir)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))
	out.Store.Driver = strings.ToLower(strings.TrimSpace(out.Store.Driver))
	out.Source.URL = strings.TrimSpace(out.Source.URL)
	out.Source.Renderer = strings.ToLower(strings.TrimSpace(out.Source.Renderer))
	out.Normalize.DefaultJobType = normalize.CleanText(out.Normalize.DefaultJobType)
	out.Normalize.DefaultTags = normalize.Tags(out.Normalize.DefaultTags, out.Normalize.TagsCaseInsensitive)

	// app
	if out.App.Addr == "" {
		res.addErr("app.addr is required")
	}
	if out.App.DataDir == "" {
		res.addErr("app.data_dir is required")
	}

	// log
	if _, err := logging.ParseLevel(out.Log.Level); err != nil {
		res.addErr("log.level: %v", err)
	}
	switch out.Log.Format {
	case "", "text", "json":
	default:
		res.addErr("log.format must be text or json, got %q", out.Log.Format)
	}

	// store
	switch out.Store.Driver {
	case "", "sqlite":
		if out.Store.DSN != "" {
			res.addWarn("store.dsn is set but store.driver is sqlite; the dsn is ignored.")
		}
	case "postgres":
		if strings.TrimSpace(out.Store.DSN) == "" {
			res.addErr("store.dsn is required when store.driver=postgres")
		}
		if out.Store.MaxConns < 0 {
			res.addErr("store.max_conns must be >= 0")
		}
	default:
		res.addErr("store.driver must be sqlite or postgres, got %q", out.Store.Driver)
	}

	// source
	if u, err := url.Parse(out.Source.URL); out.Source.URL == "" || err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		res.addErr("source.url must be an absolute http(s) URL, got %q", out.Source.URL)
	}
	switch out.Source.Renderer {
	case "chrome", "http":
	default:
		res.addErr("source.renderer must be chrome or http, got %q", out.Source.Renderer)
	}
	if out.Source.ActionTimeout <= 0 {
		res.addErr("source.action_timeout must be > 0")
	}
	if out.Source.Settle < 0 {
		res.addErr("source.settle must be >= 0")
	}
	if out.Source.RequestsPerSecond < 0 {
		res.addErr("source.requests_per_second must be >= 0")
	}
	if strings.TrimSpace(out.Source.Selectors.Container) == "" {
		res.addErr("source.selectors.container is required")
	}
	if out.Source.Selectors.Title == "" && out.Source.Selectors.Company == "" && out.Source.Selectors.Location == "" {
		res.addErr("source.selectors needs at least one of title, company, location")
	}

	lm := out.Source.LoadMore
	if lm.MaxClicks < 0 {
		res.addErr("source.load_more.max_clicks must be >= 0")
	} else if lm.MaxClicks > 100 {
		res.addWarn("source.load_more.max_clicks is %d; runs may take a long time.", lm.MaxClicks)
	}
	if lm.Pause < 0 {
		res.addErr("source.load_more.pause must be >= 0")
	}
	if lm.Selector != "" && out.Source.Renderer == "http" {
		res.addWarn("source.load_more is ignored with renderer=http.")
	}

	// normalize
	if out.Normalize.DefaultJobType == "" {
		res.addWarn("normalize.default_job_type is empty; %q is used.", normalize.DefaultJobType)
	}

	// ingest
	if out.Ingest.Interval < 0 {
		res.addErr("ingest.interval must be >= 0")
	} else if out.Ingest.Interval > 0 && out.Ingest.Interval < time.Minute {
		res.addWarn("ingest.interval is very low (%s) and may get the scraper blocked.", out.Ingest.Interval)
	}
	if out.Ingest.Timeout < 0 {
		res.addErr("ingest.timeout must be >= 0")
	}

	return out, res
}
