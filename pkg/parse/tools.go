// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vulntor/scanlens/pkg/report"
)

var (
	credentialRe  = regexp.MustCompile(`login:\s*(\S+)\s+password:\s*(\S+)`)
	hydraOnRe     = regexp.MustCompile(`\bon (\S+)`)
	hydraHostRe   = regexp.MustCompile(`host:\s*(\S+)`)
	hydraLoginTag = "login:"
	hydraPassTag  = "password:"
)

func credentialFinding(id string, login, password string) report.Finding {
	return report.Finding{
		ID:          id,
		Method:      "POST",
		Path:        "/login",
		Description: fmt.Sprintf("Found credentials: %s:%s", login, password),
		Severity:    report.SeverityHigh,
	}
}

// ParseHydraText parses Hydra's text output. The first line names the target
// ("... on <target>"); body lines of the form "[...] login: u password: p"
// become high-severity findings.
func ParseHydraText(content string) *report.ToolResult {
	return guard(ToolHydra, func() *report.ToolResult {
		ls := lines(content)
		if len(ls) < 2 {
			malformed(ToolHydra, "Hydra text report too short", nil)
			return nil
		}

		target := ""
		if m := hydraOnRe.FindStringSubmatch(ls[0]); m != nil {
			target = m[1]
		}

		res := &report.ToolResult{Vulnerabilities: []report.Finding{}}
		for i := 1; i < len(ls); i++ {
			line := ls[i]
			if !strings.HasPrefix(line, "[") || !strings.Contains(line, hydraLoginTag) || !strings.Contains(line, hydraPassTag) {
				continue
			}
			m := credentialRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if target == "" {
				if h := hydraHostRe.FindStringSubmatch(line); h != nil {
					target = h[1]
				}
			}
			res.Vulnerabilities = append(res.Vulnerabilities,
				credentialFinding(fmt.Sprintf("hydra-cred-%d", i), m[1], m[2]))
		}

		res.Target = report.OrUnknown(target)
		res.IP = res.Target
		return res
	})
}

// ParseHydraJSON parses the JSON wrapper the scan pipeline writes around
// Hydra: {"target": ..., "dvwa_bruteforce": ..., "results": ["<hydra line>", ...]}.
func ParseHydraJSON(content string) *report.ToolResult {
	return guard(ToolHydra, func() *report.ToolResult {
		if isBlank(content) {
			return nil
		}
		data, err := decodeObject([]byte(strings.TrimSpace(content)))
		if err != nil {
			malformed(ToolHydra, "Hydra JSON decode failed", err)
			return nil
		}
		results, ok := data.list("results")
		if !ok {
			malformed(ToolHydra, "Hydra JSON has no results array", nil)
			return nil
		}

		res := &report.ToolResult{
			Target:          report.OrUnknown(data.str("target")),
			Status:          data.str("dvwa_bruteforce"),
			Vulnerabilities: []report.Finding{},
		}
		res.IP = res.Target

		for i, r := range results {
			m := credentialRe.FindStringSubmatch(itemString(r))
			if m == nil {
				continue
			}
			res.Vulnerabilities = append(res.Vulnerabilities,
				credentialFinding(fmt.Sprintf("hydra-cred-%d", i), m[1], m[2]))
		}
		return res
	})
}

// ParseGobuster parses {"target": ..., "directories": [...]}. Each directory
// becomes an info finding. Directory entries may be plain strings or objects
// with a "path" or "url" field.
func ParseGobuster(content string) *report.ToolResult {
	return guard(ToolGobuster, func() *report.ToolResult {
		if isBlank(content) {
			return nil
		}
		data, err := decodeObject([]byte(strings.TrimSpace(content)))
		if err != nil {
			malformed(ToolGobuster, "Gobuster JSON decode failed", err)
			return nil
		}
		dirs, ok := data.list("directories")
		if !ok {
			malformed(ToolGobuster, "Gobuster JSON has no directories array", nil)
			return nil
		}

		res := &report.ToolResult{
			Target:          report.OrUnknown(data.str("target")),
			Vulnerabilities: make([]report.Finding, 0, len(dirs)),
		}
		res.IP = res.Target

		for i, d := range dirs {
			dir := itemString(d, "path", "url")
			res.Vulnerabilities = append(res.Vulnerabilities, report.Finding{
				ID:          fmt.Sprintf("gobuster-dir-%d", i),
				Method:      "GET",
				Path:        dir,
				Description: "Found directory: " + dir,
				Severity:    report.SeverityInfo,
			})
		}
		return res
	})
}

// ParseSQLMap parses the pipeline's SQLMap summary:
// {"target": ..., "sqlmap_scan": ..., "dvwa_paths_tested": [...]}.
// Each tested path becomes a high finding.
func ParseSQLMap(content string) *report.ToolResult {
	return guard(ToolSQLMap, func() *report.ToolResult {
		if isBlank(content) {
			return nil
		}
		data, err := decodeObject([]byte(strings.TrimSpace(content)))
		if err != nil {
			malformed(ToolSQLMap, "SQLMap JSON decode failed", err)
			return nil
		}
		paths, ok := data.list("dvwa_paths_tested")
		if !ok {
			malformed(ToolSQLMap, "SQLMap JSON has no dvwa_paths_tested array", nil)
			return nil
		}

		res := &report.ToolResult{
			Target:          report.OrUnknown(data.str("target")),
			Status:          data.str("sqlmap_scan"),
			Vulnerabilities: make([]report.Finding, 0, len(paths)),
		}
		res.IP = res.Target

		for i, p := range paths {
			path := itemString(p, "path", "url")
			res.Vulnerabilities = append(res.Vulnerabilities, report.Finding{
				ID:          fmt.Sprintf("sqlmap-path-%d", i),
				Method:      "GET",
				Path:        path,
				Description: "SQL injection path tested: " + path,
				Severity:    report.SeverityHigh,
			})
		}
		return res
	})
}
