// Package integrations provides HTTP clients for the npm registry and the
// GitHub API.
//
// Each service has its own subpackage:
//
//   - [npm]: package versions, dependency constraints and unpacked sizes
//   - [github]: repository metrics consumed by the quality scorers
//
// # Client Pattern
//
// Service clients embed [Client], which adds response caching and retries:
//
//	c := npm.NewClient(store, 24*time.Hour)
//	pkg, err := c.FetchPackage(ctx, "express", false) // false = use cache
//
// Transient failures (network errors, 5xx) are wrapped with
// [cache.Retryable] and retried by [Client.Cached] with exponential backoff.
// A 404 maps to [ErrNotFound].
//
// [npm]: github.com/matzehuels/netscore/pkg/integrations/npm
// [github]: github.com/matzehuels/netscore/pkg/integrations/github
// [cache.Retryable]: github.com/matzehuels/netscore/pkg/cache.Retryable
package integrations
