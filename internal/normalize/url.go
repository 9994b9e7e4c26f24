package normalize

import (
	"net/url"
	"sort"
	"strings"
)

// Link resolves href against the page URL and canonicalizes it: lowercased
// scheme and host, no fragment, tracking params dropped, query sorted.
func Link(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if b, err := url.Parse(strings.TrimSpace(base)); err == nil && b.Scheme != "" {
		ref = b.ResolveReference(ref)
	}
	return canonicalizeURL(ref), nil
}

func canonicalizeURL(u *url.URL) string {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "ref" {
			q.Del(k)
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}
