package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"jobboard/internal/config"
)

type ConfigHandler struct {
	Config config.Config
}

// Get returns the effective configuration with credentials stripped from
// the database DSN.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := h.Config
	cfg.Store.DSN = redactDSN(cfg.Store.DSN)
	WriteJSON(w, http.StatusOK, cfg)
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Config)
	WriteJSON(w, http.StatusOK, vr)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	// key=value DSNs are not picked apart
	u, err := url.Parse(dsn)
	if err != nil || !strings.Contains(dsn, "://") {
		return "[redacted]"
	}
	if u.User == nil {
		return dsn
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
