// Package report defines the normalized scan model shared by the parsers,
// the aggregator and the outer request layers.
//
// All types are plain values. A parser owns its result until it hands it to
// the aggregator, which owns the merged ScanSummary for the rest of the
// request.
package report

import "strings"

// Unknown is the sentinel used for target, IP and free-text fields when no
// source supplies a value.
const Unknown = "unknown"

// Severity is the normalized severity of a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// ParseSeverity normalizes a tool-provided severity string. Matching is
// case-insensitive and ignores surrounding whitespace; anything outside the
// known set becomes SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityInfo:
		return SeverityInfo
	case SeverityLow:
		return SeverityLow
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// Finding is a single issue, credential, directory or tested path reported by
// a scanning tool.
type Finding struct {
	ID          string   `json:"id"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity,omitempty"`
	Reference   string   `json:"reference,omitempty"`
	Template    string   `json:"template,omitempty"`
}

// NiktoResult is the parsed form of a Nikto text report.
type NiktoResult struct {
	Target          string    `json:"target"`
	IP              string    `json:"ip"`
	Port            string    `json:"port"`
	Vulnerabilities []Finding `json:"vulnerabilities"`
}

// PortEntry is one open port reported by Nmap.
type PortEntry struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Service  string `json:"service"`
	Version  string `json:"version,omitempty"`
}

// NmapResult is the parsed form of an Nmap XML report.
type NmapResult struct {
	Target string      `json:"target"`
	IP     string      `json:"ip"`
	Ports  []PortEntry `json:"ports"`
}

// NucleiResult is the parsed form of a Nuclei JSON report.
type NucleiResult struct {
	Target   string    `json:"target"`
	IP       string    `json:"ip"`
	Findings []Finding `json:"findings"`
}

// ToolResult is the shared shape for Hydra, Gobuster and SQLMap output.
// Status carries the tool's own run status when the report includes one.
type ToolResult struct {
	Target          string    `json:"target"`
	IP              string    `json:"ip"`
	Status          string    `json:"status,omitempty"`
	Vulnerabilities []Finding `json:"vulnerabilities"`
}

// Credential is a username/password pair from a credentials file.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SummaryCounts are derived totals. They are always recomputed from the
// assembled finding lists.
type SummaryCounts struct {
	TotalVulnerabilities int `json:"totalVulnerabilities"`
	OpenPorts            int `json:"openPorts"`
	CriticalFindings     int `json:"criticalFindings"`
	HighFindings         int `json:"highFindings"`
	MediumFindings       int `json:"mediumFindings"`
	LowFindings          int `json:"lowFindings"`
	InfoFindings         int `json:"infoFindings"`
	TotalCredentials     int `json:"totalCredentials"`
	TotalDirectories     int `json:"totalDirectories"`
	TotalWords           int `json:"totalWords"`
}

// ScanSummary is the aggregate view of one scan run for one target.
type ScanSummary struct {
	Target      string        `json:"target"`
	IP          string        `json:"ip"`
	ScanDate    string        `json:"scanDate"`
	Nikto       *NiktoResult  `json:"nikto,omitempty"`
	Nmap        *NmapResult   `json:"nmap,omitempty"`
	Nuclei      *NucleiResult `json:"nuclei,omitempty"`
	Hydra       *ToolResult   `json:"hydra,omitempty"`
	Gobuster    *ToolResult   `json:"gobuster,omitempty"`
	SQLMap      *ToolResult   `json:"sqlmap,omitempty"`
	Credentials []Credential  `json:"credentials,omitempty"`
	Wordlist    []string      `json:"wordlist,omitempty"`
	Summary     SummaryCounts `json:"summary"`
}

// ScanLocation identifies one scan folder: scans/<Target>/<Date>.
type ScanLocation struct {
	Target string `json:"target"`
	Date   string `json:"date"`
}

// IsZero reports whether the location is unset.
func (l ScanLocation) IsZero() bool {
	return l.Target == "" && l.Date == ""
}

// OrUnknown returns s, or Unknown when s is blank.
func OrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
