package feeds

import (
	"strings"

	"github.com/feedfold/feedfold/internal/domain"
)

// Candidate is one fetchable address for a source. Host is the mirror host
// the locator resolved against, empty for direct locators.
type Candidate struct {
	URL  string
	Host string
}

// Resolve maps a locator to a fetchable address. mirror:// locators have the
// scheme stripped and the remaining path joined onto mirrorHost; anything
// else passes through unchanged and fails downstream at fetch time if it is
// malformed. Bare hosts get https:// prepended, scheme-prefixed hosts are
// used as-is.
func Resolve(locator, mirrorHost string) string {
	if !strings.HasPrefix(locator, domain.MirrorScheme) {
		return locator
	}

	host := strings.TrimSpace(mirrorHost)
	if host == "" {
		return locator
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	path := strings.TrimPrefix(locator, domain.MirrorScheme)
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(path, "/")
}

// Candidates builds the ordered address list for a locator. Direct locators
// yield exactly one candidate. mirror:// locators resolve against every host
// in configured order; when preferredHost is one of the hosts its candidate
// moves to the front, so the mirror that last succeeded is tried first.
func Candidates(locator string, mirrorHosts []string, preferredHost string) []Candidate {
	if !strings.HasPrefix(locator, domain.MirrorScheme) {
		return []Candidate{{URL: locator}}
	}

	preferredHost = strings.TrimSpace(preferredHost)

	var preferred []Candidate
	rest := make([]Candidate, 0, len(mirrorHosts))
	for _, host := range mirrorHosts {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		c := Candidate{URL: Resolve(locator, host), Host: host}
		if host == preferredHost && len(preferred) == 0 {
			preferred = append(preferred, c)
			continue
		}
		rest = append(rest, c)
	}

	return append(preferred, rest...)
}
