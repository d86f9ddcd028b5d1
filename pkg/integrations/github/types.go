package github

import "time"

// RepoMetrics is the repository snapshot consumed by the quality scorers.
type RepoMetrics struct {
	RepoURL       string     `json:"repo_url"`
	Owner         string     `json:"owner"`
	Name          string     `json:"name"`
	DefaultBranch string     `json:"default_branch,omitempty"`
	Stars         int        `json:"stars"`
	Forks         int        `json:"forks"`
	OpenIssues    int        `json:"open_issues"`
	SizeKB        int        `json:"size_kb"`
	License       string     `json:"license,omitempty"`
	Language      string     `json:"language,omitempty"`
	Archived      bool       `json:"archived,omitempty"`
	LastCommitAt  *time.Time `json:"last_commit_at,omitempty"`
	LastReleaseAt *time.Time `json:"last_release_at,omitempty"`

	Contributors []Contributor `json:"contributors,omitempty"`

	// ReadmeSize is the README length in bytes; 0 when absent.
	ReadmeSize int `json:"readme_size"`

	// Dependencies are the runtime dependencies declared in the root
	// package.json, name to constraint. Nil when the file is absent.
	Dependencies map[string]string `json:"dependencies,omitempty"`

	ClosedIssues []IssueStat   `json:"closed_issues,omitempty"`
	MergedPulls  []PullRequest `json:"merged_pulls,omitempty"`
}

// Contributor is a non-bot account with its commit count.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// IssueStat records when a closed issue was opened and closed.
type IssueStat struct {
	CreatedAt time.Time `json:"created_at"`
	ClosedAt  time.Time `json:"closed_at"`
}

// PullRequest is a merged pull request and whether it received a review.
type PullRequest struct {
	Number    int  `json:"number"`
	Additions int  `json:"additions"`
	Reviewed  bool `json:"reviewed"`
}

// FileContent represents the decoded content of a repository file.
type FileContent struct {
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Content string `json:"content"`
}

type repoResponse struct {
	Name          string     `json:"name"`
	DefaultBranch string     `json:"default_branch"`
	Stars         int        `json:"stargazers_count"`
	Forks         int        `json:"forks_count"`
	OpenIssues    int        `json:"open_issues_count"`
	Size          int        `json:"size"`
	PushedAt      *time.Time `json:"pushed_at"`
	License       *struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Language string `json:"language"`
	Archived bool   `json:"archived"`
}

type releaseResponse struct {
	PublishedAt time.Time `json:"published_at"`
}

type contributorResponse struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	Type          string `json:"type"`
}

type issueResponse struct {
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	PullRequest *struct{}  `json:"pull_request"`
}

type pullResponse struct {
	Number   int        `json:"number"`
	MergedAt *time.Time `json:"merged_at"`
}

type pullDetailResponse struct {
	Additions int `json:"additions"`
}

type reviewResponse struct {
	State string `json:"state"`
}

type contentResponse struct {
	Path     string `json:"path"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
