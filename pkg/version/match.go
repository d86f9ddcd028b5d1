package version

import (
	"cmp"
	"strconv"
	"strings"
)

// Kind identifies the form of a [Constraint].
type Kind int

const (
	KindExact Kind = iota
	KindCaret
	KindTilde
	KindRange
	KindAny
)

// String returns the constraint kind name.
func (k Kind) String() string {
	switch k {
	case KindCaret:
		return "caret"
	case KindTilde:
		return "tilde"
	case KindRange:
		return "range"
	case KindAny:
		return "any"
	default:
		return "exact"
	}
}

// Constraint is a parsed dependency version constraint.
type Constraint struct {
	Kind Kind
	Raw  string // Constraint as declared
	Base string // Version operand for exact, caret and tilde; lower bound for ranges
	Max  string // Upper bound, ranges only
}

// Parse classifies a constraint string. Parse never fails: anything that
// is not a caret, tilde, range or wildcard is treated as an exact version.
func Parse(constraint string) Constraint {
	raw := constraint
	c := strings.TrimSpace(constraint)

	switch {
	case c == "" || c == "*" || c == "x" || c == "latest":
		return Constraint{Kind: KindAny, Raw: raw}
	case strings.HasPrefix(c, "^"):
		return Constraint{Kind: KindCaret, Raw: raw, Base: trim(c[1:])}
	case strings.HasPrefix(c, "~"):
		return Constraint{Kind: KindTilde, Raw: raw, Base: trim(strings.TrimPrefix(c[1:], ">"))}
	}

	if lo, hi, ok := splitRange(c); ok {
		return Constraint{Kind: KindRange, Raw: raw, Base: lo, Max: hi}
	}
	return Constraint{Kind: KindExact, Raw: raw, Base: trim(c)}
}

// Matches reports whether version satisfies the constraint.
func (c Constraint) Matches(version string) bool {
	v := trim(version)
	switch c.Kind {
	case KindAny:
		return true
	case KindCaret:
		return SatisfiesCaret(v, c.Base)
	case KindTilde:
		return SatisfiesTilde(v, c.Base)
	case KindRange:
		return SatisfiesRange(v, c.Base, c.Max)
	default:
		return v == c.Base
	}
}

// Pinned reports whether the constraint fixes at least the major and minor
// components, so that only patch releases can slip in.
func (c Constraint) Pinned() bool {
	switch c.Kind {
	case KindExact, KindTilde:
		return true
	case KindRange:
		lo, hi := components(c.Base), components(c.Max)
		return lo[0] == hi[0] && lo[1] == hi[1]
	default:
		return false
	}
}

// Satisfies reports whether version satisfies constraint.
func Satisfies(version, constraint string) bool {
	return Parse(constraint).Matches(version)
}

// SatisfiesCaret reports whether version has the same major component as
// caret. The caret operand may be a bare major ("4") or a full version
// ("4.17.0"); only its major component is significant.
func SatisfiesCaret(version, caret string) bool {
	want := components(trim(strings.TrimPrefix(caret, "^")))[0]
	return want != "" && components(version)[0] == want
}

// SatisfiesTilde reports whether version shares major and minor with tilde
// and its patch is at least tilde's patch (zero when omitted).
func SatisfiesTilde(version, tilde string) bool {
	want := components(trim(strings.TrimPrefix(tilde, "~")))
	got := components(version)
	if want[0] == "" || got[0] != want[0] || got[1] != want[1] {
		return false
	}
	return comparePart(got[2], orZero(want[2])) >= 0
}

// SatisfiesRange reports whether min <= version <= max using plain string
// comparison of the dot-separated forms.
func SatisfiesRange(version, min, max string) bool {
	return version >= min && version <= max
}

// Compare orders two concrete versions component-wise, numerically where
// both components are numbers. A prerelease ("1.0.0-beta") sorts before
// its release; build metadata is ignored. It returns -1, 0 or +1.
func Compare(a, b string) int {
	coreA, preA := splitPrerelease(trim(a))
	coreB, preB := splitPrerelease(trim(b))
	if c := compareDotted(coreA, coreB, true); c != 0 {
		return c
	}
	switch {
	case preA == preB:
		return 0
	case preA == "":
		return 1
	case preB == "":
		return -1
	}
	return compareDotted(preA, preB, false)
}

// compareDotted compares dot-separated identifiers. With pad, missing
// identifiers count as "0"; otherwise the shorter list sorts first.
func compareDotted(a, b string, pad bool) int {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < max(len(pa), len(pb)); i++ {
		if !pad && (i >= len(pa) || i >= len(pb)) {
			return cmp.Compare(len(pa), len(pb))
		}
		var x, y string
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if c := comparePart(orZero(x), orZero(y)); c != 0 {
			return c
		}
	}
	return 0
}

// Select returns the greatest version in versions that satisfies
// constraint. ok is false when nothing matches.
func Select(versions []string, constraint string) (best string, ok bool) {
	c := Parse(constraint)
	for _, v := range versions {
		if !c.Matches(v) {
			continue
		}
		if !ok || Compare(v, best) > 0 {
			best, ok = v, true
		}
	}
	return best, ok
}

func splitRange(c string) (lo, hi string, ok bool) {
	if l, h, found := strings.Cut(c, " - "); found {
		return trim(l), trim(h), true
	}
	// Without spaces the upper bound must be a dotted version, so that
	// prereleases such as "1.0.0-0" or "1.0.0-beta.1" stay exact.
	l, h, found := strings.Cut(c, "-")
	if !found || !startsWithDigit(l) || !startsWithDigit(h) || !strings.Contains(h, ".") {
		return "", "", false
	}
	return trim(l), trim(h), true
}

// components returns major, minor and patch, with missing parts empty.
// Prerelease and build suffixes are dropped.
func components(v string) [3]string {
	var out [3]string
	core, _ := splitPrerelease(v)
	for i, p := range strings.SplitN(core, ".", 3) {
		out[i] = p
	}
	return out
}

// splitPrerelease separates "1.0.0-rc.1+build" into "1.0.0" and "rc.1".
func splitPrerelease(v string) (core, pre string) {
	v, _, _ = strings.Cut(v, "+")
	core, pre, _ = strings.Cut(v, "-")
	return core, pre
}

func comparePart(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func trim(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "=")
	return strings.TrimPrefix(v, "v")
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func startsWithDigit(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
