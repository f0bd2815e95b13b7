package httpclient

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// defaultLogger is used when WithLogger is not given.
var defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// debugLog returns a debug event, or nil when debug logging is off.
// zerolog events are nil-safe, so callers chain fields unconditionally.
func (c *Client) debugLog() *zerolog.Event {
	if !c.debug {
		return nil
	}
	return c.logger.Debug()
}

// generateCurlCommand creates a cURL command equivalent for the given request.
//
// The bearer token is masked so the command can be pasted into logs.
//
// Example output:
//
//	curl -X POST 'http://localhost:4001/ai/chat' \
//	  -H 'Authorization: Bearer ***' \
//	  -H 'Content-Type: application/json' \
//	  -d '{"message":"hi"}'
func generateCurlCommand(method, target string, header http.Header, body []byte) string {
	parts := []string{"curl"}

	if method != http.MethodGet {
		parts = append(parts, "-X", method)
	}

	parts = append(parts, fmt.Sprintf("'%s'", target))

	// Sorted for stable output.
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range header[k] {
			if k == "Authorization" {
				v = maskAuthorization(v)
			}
			parts = append(parts, "-H", fmt.Sprintf("'%s: %s'", k, v))
		}
	}

	if len(body) > 0 {
		escaped := strings.ReplaceAll(string(body), "'", "'\\''")
		parts = append(parts, "-d", fmt.Sprintf("'%s'", escaped))
	}

	return strings.Join(parts, " ")
}

// maskAuthorization keeps the scheme and hides the credential.
func maskAuthorization(v string) string {
	scheme, _, found := strings.Cut(v, " ")
	if !found {
		return "***"
	}
	return scheme + " ***"
}
