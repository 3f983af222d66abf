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

const niktoDefaultPort = "80"

var (
	niktoTargetHostRe = regexp.MustCompile(`^\+ Target Host:\s*(\S+)`)
	niktoTargetIPRe   = regexp.MustCompile(`^\+ Target IP:\s*(\S+)`)
	niktoTargetPortRe = regexp.MustCompile(`^\+ Target Port:\s*(\d+)`)
	niktoReferenceRe  = regexp.MustCompile(`\b(OSVDB-\d+|CVE-\d{4}-\d{4,})\b`)
)

// niktoHeaderPrefixes are informational "+ " lines describing the run
// rather than a finding.
var niktoHeaderPrefixes = []string{
	"Target IP:",
	"Target Hostname:",
	"Target Host:",
	"Target Port:",
	"Start Time:",
	"End Time:",
	"Server:",
}

// niktoLineExtractors are tried in order against each finding line.
var niktoLineExtractors = []lineExtractor{
	{
		name: "method-path",
		re:   regexp.MustCompile(`^([A-Z]+)\s+([^:]+):\s*(.+)$`),
		build: func(m []string) (string, string, string) {
			return m[1], m[2], m[3]
		},
	},
	{
		name: "path",
		re:   regexp.MustCompile(`^([^:]+):\s*(.+)$`),
		build: func(m []string) (string, string, string) {
			return "GET", m[1], m[2]
		},
	},
}

// ParseNikto parses a Nikto text report (the "+"/"-" prefixed console
// format, also stored as nikto.csv by older pipelines).
func ParseNikto(content string) *report.NiktoResult {
	return guard(ToolNikto, func() *report.NiktoResult {
		ls := lines(content)
		if len(ls) < 2 {
			malformed(ToolNikto, "Nikto report too short", nil)
			return nil
		}

		res := &report.NiktoResult{
			Target:          report.Unknown,
			IP:              report.Unknown,
			Port:            niktoDefaultPort,
			Vulnerabilities: []report.Finding{},
		}

		var explicitIP string
		for _, line := range ls {
			if m := niktoTargetHostRe.FindStringSubmatch(line); m != nil {
				res.Target = m[1]
				res.IP = m[1]
			}
			if m := niktoTargetIPRe.FindStringSubmatch(line); m != nil && explicitIP == "" {
				explicitIP = m[1]
			}
			if m := niktoTargetPortRe.FindStringSubmatch(line); m != nil {
				res.Port = m[1]
			}
		}
		if explicitIP != "" {
			res.IP = explicitIP
			if res.Target == report.Unknown {
				res.Target = explicitIP
			}
		}

		for i, line := range ls {
			if !strings.HasPrefix(line, "+ ") {
				continue
			}
			clean := line[2:]
			if isNiktoHeader(clean) {
				continue
			}

			method, path, description, ok := extract(niktoLineExtractors, clean)
			if !ok {
				continue
			}

			f := report.Finding{
				ID:          fmt.Sprintf("NIKTO-%d", i),
				Method:      orDefault(method, "N/A"),
				Path:        orDefault(strings.TrimSpace(path), "N/A"),
				Description: orDefault(strings.TrimSpace(description), "N/A"),
				Severity:    report.SeverityInfo,
			}
			if ref := niktoReferenceRe.FindString(clean); ref != "" {
				f.Reference = ref
			}
			res.Vulnerabilities = append(res.Vulnerabilities, f)
		}

		return res
	})
}

func isNiktoHeader(line string) bool {
	for _, p := range niktoHeaderPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	// "1 host(s) tested" trailer
	return strings.Contains(line, "host(s) tested")
}
