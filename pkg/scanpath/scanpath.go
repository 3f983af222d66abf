// pkg/scanpath/scanpath.go

// Package scanpath resolves scan identity from blob keys and locates scan
// folders in a flat blob listing.
//
// The blob layout is scans/<target>/<YYYY-MM-DDTHH-MM>/<file>. Date folders
// are fixed width, zero padded and UTC, so plain string comparison orders
// them chronologically.
package scanpath

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/vulntor/scanlens/pkg/report"
)

// Root is the first segment of every scan blob key.
const Root = "scans"

// FolderDateLayout is the time layout of a canonical date folder.
const FolderDateLayout = "2006-01-02T15-04"

// isoMillisLayout renders instants the way summaries carry them.
const isoMillisLayout = "2006-01-02T15:04:05.000Z07:00"

// Canonical file names inside a scan folder.
const (
	FileNiktoTxt    = "nikto.txt"
	FileNiktoCSV    = "nikto.csv"
	FileNmap        = "nmap.xml"
	FileNuclei      = "nuclei.json"
	FileHydraTxt    = "hydra_dvwa.txt"
	FileHydraJSON   = "hydra_dvwa.json"
	FileGobuster    = "gobuster.json"
	FileSQLMap      = "sqlmap_summary.json"
	FileCredentials = "dvwa_creds.txt"
	FileWordlist    = "dvwa_words.txt"
)

// CandidateFiles is the set of file names that mark a folder as a scan.
var CandidateFiles = []string{
	FileNiktoTxt,
	FileNiktoCSV,
	FileNmap,
	FileNuclei,
	FileHydraTxt,
	FileHydraJSON,
	FileGobuster,
	FileSQLMap,
	FileCredentials,
	FileWordlist,
}

// IsCandidateFile reports whether name is one of CandidateFiles.
func IsCandidateFile(name string) bool {
	for _, f := range CandidateFiles {
		if f == name {
			return true
		}
	}
	return false
}

var folderDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T(\d{2})-(\d{2})$`)

// ipExtractor recognizes a path segment as an IPv4 address.
type ipExtractor struct {
	name    string
	re      *regexp.Regexp
	convert func(seg string) string
}

// ipExtractors are tried in order for each segment; the first segment that
// any extractor accepts wins.
var ipExtractors = []ipExtractor{
	{
		name:    "dashed",
		re:      regexp.MustCompile(`^\d{1,3}(-\d{1,3}){3}$`),
		convert: func(seg string) string { return strings.ReplaceAll(seg, "-", ".") },
	},
	{
		name:    "dotted",
		re:      regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`),
		convert: func(seg string) string { return seg },
	},
}

// Resolved is the identity recovered from a blob key. ScanDate is empty when
// the key carries no date folder.
type Resolved struct {
	Target   string `json:"target"`
	IP       string `json:"ip"`
	ScanDate string `json:"scanDate,omitempty"`
}

// ResolveFromPath derives target, IP and scan date from an object key such
// as scans/10-0-0-4/2025-09-07T09-20/nuclei.json. It never fails: absent
// segments resolve to report.Unknown and an empty date.
func ResolveFromPath(objectKey string) Resolved {
	segs := segments(objectKey)

	res := Resolved{Target: report.Unknown, IP: report.Unknown}

	if ip, ok := findIP(segs); ok {
		res.Target = ip
		res.IP = ip
	}
	for _, s := range segs {
		if iso, ok := FolderDateToISO(s); ok {
			res.ScanDate = iso
			break
		}
	}
	return res
}

func findIP(segs []string) (string, bool) {
	for _, s := range segs {
		for _, ex := range ipExtractors {
			if ex.re.MatchString(s) {
				return ex.convert(s), true
			}
		}
	}
	return "", false
}

// segments splits a slash-separated key, dropping empty segments.
func segments(key string) []string {
	var out []string
	for _, s := range strings.Split(key, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsCanonicalDate reports whether s is a YYYY-MM-DDTHH-MM folder token.
func IsCanonicalDate(s string) bool {
	return folderDateRe.MatchString(s)
}

// FolderDateToISO converts a canonical date folder to an ISO-8601 UTC
// instant with millisecond precision, e.g. 2025-09-07T09:20:00.000Z.
func FolderDateToISO(folder string) (string, bool) {
	m := folderDateRe.FindStringSubmatch(folder)
	if m == nil {
		return "", false
	}
	return m[1] + "T" + m[2] + ":" + m[3] + ":00.000Z", true
}

// FolderDateTime parses a canonical date folder as a UTC instant.
func FolderDateTime(folder string) (time.Time, bool) {
	iso, ok := FolderDateToISO(folder)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(isoMillisLayout, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatFolderDate renders t as a canonical date folder (UTC, minute
// resolution).
func FormatFolderDate(t time.Time) string {
	return t.UTC().Format(FolderDateLayout)
}

// FormatISO renders t the way ScanSummary.ScanDate is carried.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillisLayout)
}

// ScanPrefix returns scans/<target>/<date>.
func ScanPrefix(loc report.ScanLocation) string {
	return path.Join(Root, loc.Target, loc.Date)
}

// BlobName returns the key of file inside the scan folder of loc.
func BlobName(loc report.ScanLocation, file string) string {
	return ScanPrefix(loc) + "/" + file
}
