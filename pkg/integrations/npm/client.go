package npm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/netscore/pkg/cache"
	"github.com/matzehuels/netscore/pkg/integrations"
	"github.com/matzehuels/netscore/pkg/version"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// PackageInfo is the cached view of a packument.
type PackageInfo struct {
	Name        string                 `json:"name"`
	Latest      string                 `json:"latest"`
	Description string                 `json:"description,omitempty"`
	Repository  string                 `json:"repository,omitempty"`
	Versions    map[string]VersionInfo `json:"versions"`
}

// VersionInfo describes one published version.
type VersionInfo struct {
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	UnpackedSize int64             `json:"unpacked_size,omitempty"`
	Tarball      string            `json:"tarball,omitempty"`
	License      string            `json:"license,omitempty"`
	Repository   string            `json:"repository,omitempty"`
}

// VersionList returns the published versions sorted ascending.
func (p *PackageInfo) VersionList() []string {
	var vs []string
	for v := range p.Versions {
		vs = append(vs, v)
	}
	slices.SortFunc(vs, version.Compare)
	return vs
}

// Client fetches packuments from an npm-compatible registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client caching responses in c.
func NewClient(c cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(c, "npm", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at a different registry or mirror.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchPackage retrieves the packument for pkg.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Version retrieves one version of pkg.
func (c *Client) Version(ctx context.Context, pkg, v string) (*VersionInfo, error) {
	info, err := c.FetchPackage(ctx, pkg, false)
	if err != nil {
		return nil, err
	}
	vi, ok := info.Versions[v]
	if !ok {
		return nil, fmt.Errorf("%w: npm package %s@%s", integrations.ErrNotFound, pkg, v)
	}
	return &vi, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PathEscape(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	*info = PackageInfo{
		Name:        data.Name,
		Latest:      data.DistTags.Latest,
		Description: data.Description,
		Repository:  integrations.NormalizeRepoURL(extractField(data.Repository, "url")),
		Versions:    make(map[string]VersionInfo, len(data.Versions)),
	}
	for v, d := range data.Versions {
		info.Versions[v] = VersionInfo{
			Version:      v,
			Dependencies: d.Dependencies,
			UnpackedSize: d.Dist.UnpackedSize,
			Tarball:      d.Dist.Tarball,
			License:      extractField(d.License, "type"),
			Repository:   integrations.NormalizeRepoURL(extractField(d.Repository, "url")),
		}
	}
	if info.Repository == "" {
		info.Repository = info.Versions[info.Latest].Repository
	}
	return nil
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

type registryResponse struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	DistTags    distTags                  `json:"dist-tags"`
	Repository  any                       `json:"repository"`
	Versions    map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	License      any               `json:"license"`
	Repository   any               `json:"repository"`
	Dependencies map[string]string `json:"dependencies"`
	Dist         struct {
		Tarball      string `json:"tarball"`
		UnpackedSize int64  `json:"unpackedSize"`
	} `json:"dist"`
}
