// pkg/aggregate/aggregate.go

// Package aggregate merges the per-tool results of one scan folder into a
// single report.ScanSummary.
package aggregate

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
)

// Files maps a canonical file name (nikto.txt, nmap.xml, ...) to its
// content. A missing or empty entry means the file was not available.
type Files map[string]string

// Outcome is the result of running one tool's parsers.
type Outcome string

const (
	OutcomeParsed    Outcome = "parsed"
	OutcomeEmpty     Outcome = "empty"
	OutcomeMalformed Outcome = "malformed"
)

// Observer receives one parse outcome per tool per aggregation.
type Observer interface {
	ObserveParse(tool string, outcome Outcome)
}

// Options tune identity resolution and timestamps. The zero value is valid.
type Options struct {
	// ObjectKey is any blob key or prefix inside the scan folder. It is the
	// last-resort source of target, IP and scan date.
	ObjectKey string

	// Location, when set, is authoritative for target and scan date.
	Location report.ScanLocation

	// Now supplies the scan date when neither Location nor ObjectKey carry
	// one. Defaults to time.Now.
	Now func() time.Time

	// Observer is notified of per-tool parse outcomes. Optional.
	Observer Observer
}

// Aggregate runs every applicable parser over files and merges the results.
// It never fails: unparseable or missing files contribute nothing, and the
// summary counts are always recomputed from the merged findings.
func Aggregate(files Files, opts Options) report.ScanSummary {
	var s report.ScanSummary

	for _, tool := range tools {
		outcome := runTool(tool, files, &s)
		if opts.Observer != nil {
			opts.Observer.ObserveParse(tool.name, outcome)
		}
		if outcome == OutcomeMalformed {
			log.Debug().
				Str("component", "aggregate").
				Str("tool", tool.name).
				Msg("Tool output present but unparseable")
		}
	}

	resolveIdentity(&s, opts)
	s.Summary = Count(&s)
	return s
}

// runTool tries the tool's candidate files in priority order. The first
// candidate that parses is assigned; later candidates are only parsed when
// the tool merges them.
func runTool(tool toolSpec, files Files, s *report.ScanSummary) Outcome {
	outcome := OutcomeEmpty
	for _, c := range tool.candidates {
		content := files[c.file]
		if strings.TrimSpace(content) == "" {
			continue
		}
		v := c.parse(content)
		if v == nil {
			if outcome == OutcomeEmpty {
				outcome = OutcomeMalformed
			}
			continue
		}
		if outcome != OutcomeParsed {
			tool.assign(s, v)
			outcome = OutcomeParsed
			if tool.merge == nil {
				break
			}
			continue
		}
		tool.merge(s, v)
	}
	return outcome
}

// identitySource yields a target/IP pair from an already merged summary.
type identitySource func(s *report.ScanSummary) (target, ip string, ok bool)

// identitySources are consulted in order. Structured network identity
// from Nmap is preferred over Nikto's text header.
var identitySources = []identitySource{
	func(s *report.ScanSummary) (string, string, bool) {
		if s.Nmap == nil {
			return "", "", false
		}
		return s.Nmap.Target, s.Nmap.IP, true
	},
	func(s *report.ScanSummary) (string, string, bool) {
		if s.Nikto == nil {
			return "", "", false
		}
		return s.Nikto.Target, s.Nikto.IP, true
	},
}

func resolveIdentity(s *report.ScanSummary, opts Options) {
	fromPath := scanpath.ResolveFromPath(opts.ObjectKey)
	if opts.ObjectKey == "" && !opts.Location.IsZero() {
		fromPath = scanpath.ResolveFromPath(scanpath.ScanPrefix(opts.Location))
	}

	s.Target, s.IP = fromPath.Target, fromPath.IP
	for _, src := range identitySources {
		target, ip, ok := src(s)
		if !ok {
			continue
		}
		s.Target = known(target, fromPath.Target)
		s.IP = known(ip, fromPath.IP)
		break
	}

	if !opts.Location.IsZero() && opts.Location.Target != "" {
		overrideTarget(s, opts.Location.Target)
	}

	s.Target = report.OrUnknown(s.Target)
	s.IP = report.OrUnknown(s.IP)
	s.ScanDate = scanDate(opts, fromPath)
}

// overrideTarget pins the summary and the text-derived tool identities to
// the requested scan folder, so hostnames found in tool files do not leak
// into the response.
func overrideTarget(s *report.ScanSummary, folderTarget string) {
	target := folderTarget
	ip := s.IP
	if r := scanpath.ResolveFromPath(folderTarget); r.IP != report.Unknown {
		target, ip = r.IP, r.IP
	} else if ip == "" || ip == report.Unknown {
		ip = target
	}

	s.Target, s.IP = target, ip
	if s.Nikto != nil {
		s.Nikto.Target, s.Nikto.IP = target, ip
	}
	if s.Nuclei != nil {
		s.Nuclei.Target, s.Nuclei.IP = target, ip
	}
}

func scanDate(opts Options, fromPath scanpath.Resolved) string {
	if !opts.Location.IsZero() {
		if iso, ok := scanpath.FolderDateToISO(opts.Location.Date); ok {
			return iso
		}
	}
	if fromPath.ScanDate != "" {
		return fromPath.ScanDate
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return scanpath.FormatISO(now())
}

// known returns v unless it is blank or the unknown sentinel.
func known(v, fallback string) string {
	if v == "" || v == report.Unknown {
		return fallback
	}
	return v
}

// Count derives SummaryCounts from the findings currently held by s.
func Count(s *report.ScanSummary) report.SummaryCounts {
	var c report.SummaryCounts

	var all []report.Finding
	if s.Nikto != nil {
		all = append(all, s.Nikto.Vulnerabilities...)
	}
	if s.Nuclei != nil {
		all = append(all, s.Nuclei.Findings...)
	}
	if s.Hydra != nil {
		all = append(all, s.Hydra.Vulnerabilities...)
		c.TotalCredentials += len(s.Hydra.Vulnerabilities)
	}
	if s.Gobuster != nil {
		all = append(all, s.Gobuster.Vulnerabilities...)
		c.TotalDirectories = len(s.Gobuster.Vulnerabilities)
	}
	if s.SQLMap != nil {
		all = append(all, s.SQLMap.Vulnerabilities...)
	}
	if s.Nmap != nil {
		c.OpenPorts = len(s.Nmap.Ports)
	}
	c.TotalCredentials += len(s.Credentials)
	c.TotalWords = len(s.Wordlist)
	c.TotalVulnerabilities = len(all)

	for _, f := range all {
		switch report.ParseSeverity(string(f.Severity)) {
		case report.SeverityCritical:
			c.CriticalFindings++
		case report.SeverityHigh:
			c.HighFindings++
		case report.SeverityMedium:
			c.MediumFindings++
		case report.SeverityLow:
			c.LowFindings++
		case report.SeverityInfo:
			c.InfoFindings++
		}
	}
	return c
}
