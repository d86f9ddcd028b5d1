// Package github provides an HTTP client for the GitHub API.
//
// # Overview
//
// This package fetches repository metrics from GitHub (https://api.github.com)
// for the quality scorers in pkg/score/metrics.
//
// # Usage
//
//	client := github.NewClient(store, token, 24*time.Hour)
//
//	metrics, err := client.Fetch(ctx, "expressjs", "express", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Stars:", metrics.Stars)
//	fmt.Println("Contributors:", metrics.Contributors)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour.
//
// # RepoMetrics
//
// [Client.Fetch] returns a [RepoMetrics] containing:
//
//   - Stars, Forks, OpenIssues: repository counters
//   - Contributors: top non-bot contributors with commit counts
//   - LastCommitAt, LastReleaseAt: activity dates
//   - ReadmeSize, Dependencies: README length and package.json dependencies
//   - ClosedIssues, MergedPulls: recent issue turnaround and review coverage
//   - License, Language, Archived: additional metadata
//
// # Caching
//
// Responses are cached to reduce API calls. The cache TTL is set when
// creating the client. Pass refresh=true to bypass the cache.
//
// # URL Parsing
//
// [ParseRepoURL] extracts owner and repository from github.com URLs,
// handling .git suffixes, trailing slashes, and deep links.
package github
