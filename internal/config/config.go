// Package config loads the service's YAML configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Selectors struct {
	Container string `yaml:"container"`
	Title     string `yaml:"title"`
	Company   string `yaml:"company"`
	Location  string `yaml:"location"`
	Posted    string `yaml:"posted"`
	JobType   string `yaml:"job_type"`
	Tags      string `yaml:"tags"`
	Link      string `yaml:"link"`
}

type Config struct {
	App struct {
		Addr    string `yaml:"addr"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Store struct {
		Driver string `yaml:"driver"` // sqlite | postgres
		Path   string `yaml:"path"`   // sqlite file; defaults to <data_dir>/jobs.db
		DSN    string `yaml:"dsn"`
		// PasswordKeyringAccount names the OS keychain entry holding the
		// postgres password, so it never sits in this file.
		PasswordKeyringAccount string `yaml:"password_keyring_account"`
		MaxConns               int    `yaml:"max_conns"`
		ViaBouncer             bool   `yaml:"via_bouncer"`
	} `yaml:"store"`

	Source struct {
		URL               string        `yaml:"url"`
		Renderer          string        `yaml:"renderer"` // chrome | http
		Headless          bool          `yaml:"headless"`
		UserAgent         string        `yaml:"user_agent"`
		ExecPath          string        `yaml:"exec_path"`
		ActionTimeout     time.Duration `yaml:"action_timeout"`
		Settle            time.Duration `yaml:"settle"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`

		LoadMore struct {
			Selector  string        `yaml:"selector"`
			MaxClicks int           `yaml:"max_clicks"`
			Pause     time.Duration `yaml:"pause"`
		} `yaml:"load_more"`

		Selectors Selectors `yaml:"selectors"`
	} `yaml:"source"`

	Normalize struct {
		DefaultJobType      string   `yaml:"default_job_type"`
		DefaultTags         []string `yaml:"default_tags"`
		TagsCaseInsensitive bool     `yaml:"tags_case_insensitive"`
		KeyCaseInsensitive  bool     `yaml:"key_case_insensitive"`
	} `yaml:"normalize"`

	Ingest struct {
		Interval time.Duration `yaml:"interval"` // 0 disables scheduled runs
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"ingest"`
}

// Default is the configuration written by `config init` and the base that
// a config file is layered over.
func Default() Config {
	var c Config
	c.App.Addr = "127.0.0.1:5000"
	c.App.DataDir = "data"

	c.Log.Level = "info"
	c.Log.Format = "text"

	c.Store.Driver = "sqlite"
	c.Store.MaxConns = 4

	c.Source.URL = "https://www.actuarylist.com"
	c.Source.Renderer = "chrome"
	c.Source.Headless = true
	c.Source.ActionTimeout = 30 * time.Second
	c.Source.Settle = 3 * time.Second
	c.Source.RequestsPerSecond = 1
	c.Source.LoadMore.Selector = "button.load-more"
	c.Source.LoadMore.MaxClicks = 10
	c.Source.LoadMore.Pause = 2 * time.Second
	c.Source.Selectors = Selectors{
		Container: ".job-card",
		Title:     ".job-title",
		Company:   ".company",
		Location:  ".location",
		Posted:    ".posting-date",
		JobType:   ".job-type",
		Tags:      ".tag",
		Link:      "a",
	}

	c.Normalize.DefaultJobType = "Full-time"
	c.Normalize.DefaultTags = []string{"Life", "Pricing"}
	c.Normalize.TagsCaseInsensitive = true

	c.Ingest.Timeout = 10 * time.Minute
	return c
}

// Load reads path over Default, so keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// DBPath is the SQLite file location.
func (c Config) DBPath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.App.DataDir, "jobs.db")
}
