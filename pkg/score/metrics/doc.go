// Package metrics implements the standard quality scorers.
//
// Every scorer reads the same repository snapshot from a [Source]. The
// GitHub-backed source fetches the snapshot once per repository even when
// all scorers ask for it at the same time.
//
//	src := metrics.NewGitHubSource(githubClient)
//	engine, err := score.NewEngine(resolver, metrics.All(src), score.DefaultWeights())
//
// The formulas are heuristics. Each maps its signal to [0, 1]:
//
//   - BusFactor: contributors needed to cover half of all commits
//   - RampUp: README length
//   - Correctness: stars relative to open issues
//   - ResponsiveMaintainer: median time to close recent issues
//   - License: SPDX identifier compatible with LGPL-2.1
//   - GoodPinningPractice: share of dependencies pinned to a minor version
//   - PullRequest: share of recent merged code that went through review
package metrics
