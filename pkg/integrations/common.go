package integrations

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/netscore/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName trims and lowercases a package name.
func NormalizePkgName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"ssh://git@github.com/", "https://github.com/",
	"http://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, ssh:// and git+ prefixes, the npm "github:owner/repo"
// shorthand, and removes .git suffixes. Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	if rest, ok := strings.CutPrefix(s, "github:"); ok {
		s = "https://github.com/" + rest
	}
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// PathEscape escapes a package name for use as a single URL path segment.
// Scoped npm names keep their "@" and encode the slash ("@types%2Fnode").
func PathEscape(name string) string { return url.PathEscape(name) }
