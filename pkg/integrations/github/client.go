package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/netscore/pkg/cache"
	"github.com/matzehuels/netscore/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

const (
	contributorLimit = 30
	issueLimit       = 50
	pullLimit        = 30
	// Only the most recent merged pulls are checked for reviews; each costs
	// two extra requests.
	reviewLimit = 10
)

// Client provides access to the GitHub API for repository metrics.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(c cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(c, "github", cacheTTL, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at a different API endpoint (GitHub
// Enterprise or a test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Fetch retrieves repository metrics from GitHub. Only the repository
// lookup itself is required; the remaining sections are best effort and
// left empty when their endpoint fails.
// If refresh is true, cached data is bypassed.
func (c *Client) Fetch(ctx context.Context, owner, repo string, refresh bool) (*RepoMetrics, error) {
	key := owner + "/" + repo

	var m RepoMetrics
	err := c.Cached(ctx, key, refresh, &m, func() error {
		return c.fetchMetrics(ctx, owner, repo, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) fetchMetrics(ctx context.Context, owner, repo string, m *RepoMetrics) error {
	data, err := c.fetchRepo(ctx, owner, repo)
	if err != nil {
		return err
	}

	*m = RepoMetrics{
		RepoURL:       fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		Owner:         owner,
		Name:          repo,
		DefaultBranch: data.DefaultBranch,
		Stars:         data.Stars,
		Forks:         data.Forks,
		OpenIssues:    data.OpenIssues,
		SizeKB:        data.Size,
		Language:      data.Language,
		Archived:      data.Archived,
		LastCommitAt:  data.PushedAt,
	}
	if data.License != nil {
		m.License = data.License.SPDXID
	}
	if rel, err := c.fetchRelease(ctx, owner, repo); err == nil {
		m.LastReleaseAt = &rel.PublishedAt
	}
	if contribs, err := c.fetchContributors(ctx, owner, repo); err == nil {
		m.Contributors = contribs
	}
	if readme, err := c.FetchReadme(ctx, owner, repo); err == nil {
		m.ReadmeSize = len(readme.Content)
	}
	if manifest, err := c.FetchFile(ctx, owner, repo, "package.json"); err == nil {
		if deps, err := manifestDependencies(manifest.Content); err == nil {
			m.Dependencies = deps
		}
	}
	if issues, err := c.fetchClosedIssues(ctx, owner, repo); err == nil {
		m.ClosedIssues = issues
	}
	if pulls, err := c.fetchMergedPulls(ctx, owner, repo); err == nil {
		m.MergedPulls = pulls
	}
	return nil
}

func (c *Client) fetchRepo(ctx context.Context, owner, repo string) (*repoResponse, error) {
	var data repoResponse
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return nil, err
	}
	return &data, nil
}

func (c *Client) fetchRelease(ctx context.Context, owner, repo string) (*releaseResponse, error) {
	var data releaseResponse
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) fetchContributors(ctx context.Context, owner, repo string) ([]Contributor, error) {
	var data []contributorResponse
	url := fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=%d", c.baseURL, owner, repo, contributorLimit)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}

	var result []Contributor
	for _, cr := range data {
		if cr.Type != "Bot" {
			result = append(result, Contributor{
				Login:         cr.Login,
				Contributions: cr.Contributions,
			})
		}
	}
	return result, nil
}

func (c *Client) fetchClosedIssues(ctx context.Context, owner, repo string) ([]IssueStat, error) {
	var data []issueResponse
	url := fmt.Sprintf("%s/repos/%s/%s/issues?state=closed&per_page=%d", c.baseURL, owner, repo, issueLimit)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}

	var result []IssueStat
	for _, is := range data {
		// The issues endpoint also lists pull requests.
		if is.PullRequest != nil || is.ClosedAt == nil {
			continue
		}
		result = append(result, IssueStat{CreatedAt: is.CreatedAt, ClosedAt: *is.ClosedAt})
	}
	return result, nil
}

func (c *Client) fetchMergedPulls(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	var data []pullResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls?state=closed&per_page=%d", c.baseURL, owner, repo, pullLimit)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}

	var result []PullRequest
	for _, pr := range data {
		if pr.MergedAt == nil {
			continue
		}
		if len(result) == reviewLimit {
			break
		}
		p := PullRequest{Number: pr.Number}
		var detail pullDetailResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, pr.Number), &detail); err == nil {
			p.Additions = detail.Additions
		}
		var reviews []reviewResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.baseURL, owner, repo, pr.Number), &reviews); err == nil {
			p.Reviewed = len(reviews) > 0
		}
		result = append(result, p)
	}
	return result, nil
}
