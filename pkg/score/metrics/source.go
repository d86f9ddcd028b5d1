package metrics

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/netscore/pkg/integrations"
	"github.com/matzehuels/netscore/pkg/integrations/github"
	"github.com/matzehuels/netscore/pkg/score"
)

// Source provides the repository snapshot scorers work from.
type Source interface {
	Repo(ctx context.Context, c score.Coordinates) (*github.RepoMetrics, error)
}

// GitHubSource reads snapshots through a GitHub client. Concurrent
// requests for the same repository share one fetch, which runs detached
// from any single caller's cancellation.
type GitHubSource struct {
	client *github.Client
	group  singleflight.Group
}

// NewGitHubSource creates a source backed by client.
func NewGitHubSource(client *github.Client) *GitHubSource {
	return &GitHubSource{client: client}
}

// Repo fetches the snapshot for c.
func (s *GitHubSource) Repo(ctx context.Context, c score.Coordinates) (*github.RepoMetrics, error) {
	v, err, _ := s.group.Do(c.String(), func() (any, error) {
		return s.client.Fetch(context.WithoutCancel(ctx), c.Owner, c.Repo, false)
	})
	if err != nil {
		return nil, err
	}
	return v.(*github.RepoMetrics), nil
}

// StaticSource serves fixed snapshots keyed by "owner/repo".
type StaticSource map[string]*github.RepoMetrics

// Repo returns the snapshot for c or an error when none is registered.
func (s StaticSource) Repo(_ context.Context, c score.Coordinates) (*github.RepoMetrics, error) {
	m, ok := s[c.String()]
	if !ok {
		return nil, fmt.Errorf("%w: github repo %s", integrations.ErrNotFound, c)
	}
	return m, nil
}
