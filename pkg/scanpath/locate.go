package scanpath

import (
	"sort"
	"strings"

	"github.com/vulntor/scanlens/pkg/report"
)

// ParseKey splits a blob key of the form scans/<target>/<date>/<file> where
// <file> is one of CandidateFiles. Keys of any other shape are rejected.
func ParseKey(name string) (loc report.ScanLocation, file string, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[0] != Root {
		return report.ScanLocation{}, "", false
	}
	target, date, file := parts[1], parts[2], parts[3]
	if target == "" || date == "" || !IsCandidateFile(file) {
		return report.ScanLocation{}, "", false
	}
	return report.ScanLocation{Target: target, Date: date}, file, true
}

// Newer reports whether a sorts after b. Canonical date folders outrank
// non-canonical ones; within each class dates compare lexicographically,
// and ties fall back to the target name.
func Newer(a, b report.ScanLocation) bool {
	ac, bc := IsCanonicalDate(a.Date), IsCanonicalDate(b.Date)
	if ac != bc {
		return ac
	}
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.Target > b.Target
}

// FindLatest returns the most recent scan folder in names. When
// targetFilter is non-empty only that target is considered. ok is false
// when no scan exists yet.
func FindLatest(names []string, targetFilter string) (report.ScanLocation, bool) {
	var (
		best  report.ScanLocation
		found bool
	)
	for _, name := range names {
		loc, _, ok := ParseKey(name)
		if !ok {
			continue
		}
		if targetFilter != "" && loc.Target != targetFilter {
			continue
		}
		if !found || Newer(loc, best) {
			best = loc
			found = true
		}
	}
	return best, found
}

// Filter narrows ListScans results.
type Filter struct {
	// Target keeps only this target when set.
	Target string
	// DatePrefix keeps dates starting with this prefix, e.g. "2025-09".
	DatePrefix string
}

// ListScans returns the distinct scan folders in names, newest first.
func ListScans(names []string, f Filter) []report.ScanLocation {
	seen := make(map[report.ScanLocation]struct{})
	var out []report.ScanLocation

	for _, name := range names {
		loc, _, ok := ParseKey(name)
		if !ok {
			continue
		}
		if f.Target != "" && loc.Target != f.Target {
			continue
		}
		if f.DatePrefix != "" && !strings.HasPrefix(loc.Date, f.DatePrefix) {
			continue
		}
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}

	sort.Slice(out, func(i, j int) bool { return Newer(out[i], out[j]) })
	return out
}

// Targets returns the distinct targets that have at least one scan folder,
// sorted.
func Targets(names []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range names {
		loc, _, ok := ParseKey(name)
		if !ok {
			continue
		}
		if _, dup := seen[loc.Target]; dup {
			continue
		}
		seen[loc.Target] = struct{}{}
		out = append(out, loc.Target)
	}
	sort.Strings(out)
	return out
}
