package httpclient

import (
	"net/url"
	"strconv"
	"strings"
)

// Local development servers drift from their primary port when it is
// taken. Only this exact host/port combination triggers the sweep.
const (
	devPrimaryPort  = 4000
	devFallbackLow  = 4001
	devFallbackHigh = 4005
)

// candidateBases returns the ordered base URLs to try for one attempt.
//
// The first entry is always initial. When initial points at
// localhost or 127.0.0.1 on port 4000, the same scheme, host and path on
// ports 4001..4005 follow. Any other base yields a single candidate.
func candidateBases(initial string) []string {
	candidates := []string{initial}

	u, err := url.Parse(initial)
	if err != nil {
		return candidates
	}

	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return candidates
	}
	if u.Port() != strconv.Itoa(devPrimaryPort) {
		return candidates
	}

	for port := devFallbackLow; port <= devFallbackHigh; port++ {
		alt := *u
		alt.Host = host + ":" + strconv.Itoa(port)
		candidates = append(candidates, alt.String())
	}
	return candidates
}

// joinURL appends path to base. path always starts with "/".
func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}
