// Package version matches concrete package versions against the dependency
// constraints found in package manifests.
//
// Four constraint forms are recognised:
//
//   - Caret "^X" (or "^X.Y.Z"): any version whose major component is X.
//   - Tilde "~X.Y" (or "~X.Y.Z"): same major and minor, patch at least Z.
//   - Range "X-Y" (or "X - Y"): X <= v <= Y compared as plain strings.
//   - Exact "X": string equality after stripping a leading "=" or "v".
//
// A "*" or empty constraint matches everything.
//
// Range comparison is lexicographic on the dot-separated form, not semver
// precedence, so "9.0.0" sorts after "10.0.0". Callers that need numeric
// ordering between candidate versions use [Compare], which [Select] does.
//
//	v, ok := version.Select([]string{"4.17.20", "4.17.21", "5.0.0"}, "^4.17.0")
//	// v == "4.17.21", ok == true
package version
