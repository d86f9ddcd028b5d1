package metrics

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/netscore/pkg/integrations/github"
	"github.com/matzehuels/netscore/pkg/score"
	"github.com/matzehuels/netscore/pkg/version"
)

// All returns the scorers for every metric in score.DefaultWeights.
func All(src Source) []score.Scorer {
	return []score.Scorer{
		New(score.BusFactor, src, BusFactor),
		New(score.RampUp, src, RampUp),
		New(score.Correctness, src, Correctness),
		New(score.ResponsiveMaintainer, src, ResponsiveMaintainer),
		New(score.License, src, License),
		New(score.GoodPinningPractice, src, GoodPinningPractice),
		New(score.PullRequest, src, PullRequest),
	}
}

// Func computes a metric from a repository snapshot.
type Func func(m *github.RepoMetrics) float64

// New creates a scorer that applies fn to the snapshot src provides.
func New(name string, src Source, fn Func) score.Scorer {
	return score.ScorerFunc{
		Metric: name,
		Fn: func(ctx context.Context, c score.Coordinates) (float64, error) {
			m, err := src.Repo(ctx, c)
			if err != nil {
				return 0, err
			}
			return fn(m), nil
		},
	}
}

const (
	busFactorTarget    = 5    // contributors covering half the commits for a full score
	readmeTarget       = 5000 // README bytes for a full ramp-up score
	starsPerIssue      = 10   // stars that offset one open issue
	responsiveFull     = 24 * time.Hour
	responsiveZero     = 30 * 24 * time.Hour
	recentActivity     = 90 * 24 * time.Hour
	inactiveResponsive = 0.5
)

// BusFactor is the number of contributors needed to account for half of
// all commits, relative to busFactorTarget.
func BusFactor(m *github.RepoMetrics) float64 {
	counts := make([]int, 0, len(m.Contributors))
	total := 0
	for _, c := range m.Contributors {
		counts = append(counts, c.Contributions)
		total += c.Contributions
	}
	if total == 0 {
		return 0
	}
	slices.SortFunc(counts, func(a, b int) int { return b - a })

	covered, k := 0, 0
	for _, n := range counts {
		covered += n
		k++
		if 2*covered >= total {
			break
		}
	}
	return math.Min(1, float64(k)/busFactorTarget)
}

// RampUp grows with README length up to readmeTarget bytes.
func RampUp(m *github.RepoMetrics) float64 {
	return math.Min(1, float64(m.ReadmeSize)/readmeTarget)
}

// Correctness weighs stars against open issues.
func Correctness(m *github.RepoMetrics) float64 {
	if m.Stars == 0 {
		return 0
	}
	stars := float64(m.Stars)
	return stars / (stars + starsPerIssue*float64(m.OpenIssues))
}

// ResponsiveMaintainer scores the median time to close recent issues:
// 1 within a day, falling linearly to 0 at thirty days. Archived
// repositories score 0. Without closed issues, recent pushes score
// inactiveResponsive.
func ResponsiveMaintainer(m *github.RepoMetrics) float64 {
	return responsiveAt(m, time.Now())
}

func responsiveAt(m *github.RepoMetrics, now time.Time) float64 {
	if m.Archived {
		return 0
	}
	if len(m.ClosedIssues) == 0 {
		if m.LastCommitAt != nil && now.Sub(*m.LastCommitAt) <= recentActivity {
			return inactiveResponsive
		}
		return 0
	}

	durations := make([]time.Duration, len(m.ClosedIssues))
	for i, is := range m.ClosedIssues {
		durations[i] = is.ClosedAt.Sub(is.CreatedAt)
	}
	slices.Sort(durations)
	median := durations[len(durations)/2]

	switch {
	case median <= responsiveFull:
		return 1
	case median >= responsiveZero:
		return 0
	}
	return 1 - float64(median-responsiveFull)/float64(responsiveZero-responsiveFull)
}

// lgplCompatible lists SPDX identifiers compatible with LGPL-2.1.
var lgplCompatible = map[string]bool{
	"0BSD":              true,
	"APACHE-2.0":        true,
	"BSD-2-CLAUSE":      true,
	"BSD-3-CLAUSE":      true,
	"CC0-1.0":           true,
	"ISC":               true,
	"LGPL-2.1":          true,
	"LGPL-2.1-ONLY":     true,
	"LGPL-2.1-OR-LATER": true,
	"MIT":               true,
	"UNLICENSE":         true,
	"ZLIB":              true,
}

// License is 1 when the repository license is LGPL-2.1 compatible.
func License(m *github.RepoMetrics) float64 {
	if lgplCompatible[strings.ToUpper(strings.TrimSpace(m.License))] {
		return 1
	}
	return 0
}

// GoodPinningPractice is the share of package.json dependencies pinned to
// at least a major.minor version. No dependencies scores 1.
func GoodPinningPractice(m *github.RepoMetrics) float64 {
	if len(m.Dependencies) == 0 {
		return 1
	}
	pinned := 0
	for _, c := range m.Dependencies {
		if version.Parse(c).Pinned() {
			pinned++
		}
	}
	return float64(pinned) / float64(len(m.Dependencies))
}

// PullRequest is the share of lines added by recent merged pull requests
// that went through code review.
func PullRequest(m *github.RepoMetrics) float64 {
	total, reviewed := 0, 0
	for _, pr := range m.MergedPulls {
		total += pr.Additions
		if pr.Reviewed {
			reviewed += pr.Additions
		}
	}
	if total == 0 {
		return 0
	}
	return float64(reviewed) / float64(total)
}
