package score

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/netscore/pkg/errors"
	"github.com/matzehuels/netscore/pkg/integrations/github"
	"github.com/matzehuels/netscore/pkg/integrations/npm"
)

// Resolver maps a user-supplied URL to repository coordinates.
type Resolver interface {
	Resolve(ctx context.Context, url string) (Coordinates, error)
}

// URLResolver accepts github.com repository URLs and npmjs.com package
// URLs. npm packages are followed to the GitHub repository their registry
// entry declares.
type URLResolver struct {
	npm *npm.Client
}

// NewURLResolver creates a resolver. With a nil client only github.com
// URLs resolve.
func NewURLResolver(client *npm.Client) *URLResolver {
	return &URLResolver{npm: client}
}

// Resolve returns the coordinates for raw. Failures carry INVALID_URL or
// REPO_UNRESOLVED codes.
func (r *URLResolver) Resolve(ctx context.Context, raw string) (Coordinates, error) {
	raw = strings.TrimSpace(raw)
	if err := errors.ValidateURL(raw); err != nil {
		return Coordinates{}, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Coordinates{}, errors.Wrap(errors.ErrCodeInvalidURL, err, "unparsable URL %q", raw)
	}

	switch strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") {
	case "github.com":
		owner, repo, err := github.ParseRepoURL(raw)
		if err != nil {
			return Coordinates{}, errors.Wrap(errors.ErrCodeRepoUnresolved, err, "%s", raw)
		}
		return Coordinates{URL: raw, Owner: owner, Repo: repo}, nil
	case "npmjs.com":
		return r.resolveNPM(ctx, raw, u.Path)
	default:
		return Coordinates{}, errors.New(errors.ErrCodeRepoUnresolved, "unsupported host %q", u.Host)
	}
}

func (r *URLResolver) resolveNPM(ctx context.Context, raw, path string) (Coordinates, error) {
	name, ok := npmPackageName(path)
	if !ok {
		return Coordinates{}, errors.New(errors.ErrCodeInvalidURL, "not an npm package URL: %q", raw)
	}
	if r.npm == nil {
		return Coordinates{}, errors.New(errors.ErrCodeRepoUnresolved, "npm lookups disabled for %s", name)
	}

	info, err := r.npm.FetchPackage(ctx, name, false)
	if err != nil {
		return Coordinates{}, errors.Wrap(errors.ErrCodeRepoUnresolved, err, "npm package %s", name)
	}
	if info.Repository == "" {
		return Coordinates{}, errors.New(errors.ErrCodeRepoUnresolved, "npm package %s declares no repository", name)
	}
	owner, repo, err := github.ParseRepoURL(info.Repository)
	if err != nil {
		return Coordinates{}, errors.Wrap(errors.ErrCodeRepoUnresolved, err, "npm package %s repository %s", name, info.Repository)
	}
	return Coordinates{URL: raw, Owner: owner, Repo: repo, Package: name}, nil
}

// npmPackageName extracts the package from "/package/<name>" or
// "/package/@scope/<name>".
func npmPackageName(path string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.Trim(path, "/"), "package/")
	if !ok || rest == "" {
		return "", false
	}
	parts := strings.Split(rest, "/")
	if strings.HasPrefix(parts[0], "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", false
		}
		return parts[0] + "/" + parts[1], true
	}
	return parts[0], true
}
