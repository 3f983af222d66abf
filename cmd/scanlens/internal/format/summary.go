// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/stringutil"
)

// Lipgloss styles for the summary header box
var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")). // Cyan
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")) // Gray
)

// severityColors maps a severity to its table cell color.
var severityColors = map[report.Severity]*color.Color{
	report.SeverityCritical: color.New(color.FgHiRed, color.Bold),
	report.SeverityHigh:     color.New(color.FgRed),
	report.SeverityMedium:   color.New(color.FgYellow),
	report.SeverityLow:      color.New(color.FgCyan),
	report.SeverityInfo:     color.New(color.FgBlue),
	report.SeverityUnknown:  color.New(color.FgWhite),
}

// PrintScanSummary renders s. Table mode prints a header box with the
// counts followed by the open ports and the findings of every tool; JSON
// and YAML modes print s as is.
func (f *formatter) PrintScanSummary(s report.ScanSummary) error {
	if f.mode != ModeTable {
		return f.PrintData(s)
	}

	if _, err := fmt.Fprintln(f.stdout, f.header(s)); err != nil {
		return err
	}

	if s.Nmap != nil && len(s.Nmap.Ports) > 0 {
		if err := f.section("Open ports"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(s.Nmap.Ports))
		for _, p := range s.Nmap.Ports {
			rows = append(rows, []string{strconv.Itoa(p.Port), p.Protocol, p.Service, p.Version})
		}
		if err := f.PrintTable([]string{"port", "proto", "service", "version"}, rows); err != nil {
			return err
		}
	}

	rows := findingRows(s, f.color)
	if len(rows) > 0 {
		if err := f.section("Findings"); err != nil {
			return err
		}
		if err := f.PrintTable([]string{"tool", "severity", "path", "description"}, rows); err != nil {
			return err
		}
	}

	if len(s.Credentials) > 0 {
		if err := f.section("Credentials"); err != nil {
			return err
		}
		creds := make([][]string, 0, len(s.Credentials))
		for _, c := range s.Credentials {
			creds = append(creds, []string{c.Username, c.Password})
		}
		if err := f.PrintTable([]string{"username", "password"}, creds); err != nil {
			return err
		}
	}

	return nil
}

func (f *formatter) header(s report.ScanSummary) string {
	c := s.Summary
	lines := []string{
		f.style(titleStyle, s.Target) + "  " + f.style(labelStyle, "ip") + " " + s.IP,
		f.style(labelStyle, "scanned") + " " + s.ScanDate,
		"",
		fmt.Sprintf("%s %d   %s %d   %s %d   %s %d",
			f.style(labelStyle, "vulnerabilities"), c.TotalVulnerabilities,
			f.style(labelStyle, "open ports"), c.OpenPorts,
			f.style(labelStyle, "credentials"), c.TotalCredentials,
			f.style(labelStyle, "directories"), c.TotalDirectories),
		fmt.Sprintf("%s %s   %s %s   %s %s   %s %s   %s %s",
			f.severity(report.SeverityCritical, "critical"), strconv.Itoa(c.CriticalFindings),
			f.severity(report.SeverityHigh, "high"), strconv.Itoa(c.HighFindings),
			f.severity(report.SeverityMedium, "medium"), strconv.Itoa(c.MediumFindings),
			f.severity(report.SeverityLow, "low"), strconv.Itoa(c.LowFindings),
			f.severity(report.SeverityInfo, "info"), strconv.Itoa(c.InfoFindings)),
	}
	body := strings.Join(lines, "\n")
	if !f.color {
		return body
	}
	return boxStyle.Render(body)
}

func (f *formatter) section(title string) error {
	if f.color {
		_, err := color.New(color.Bold).Fprintf(f.stdout, "\n%s\n", title)
		return err
	}
	_, err := fmt.Fprintf(f.stdout, "\n%s\n", title)
	return err
}

func (f *formatter) style(s lipgloss.Style, text string) string {
	if !f.color {
		return text
	}
	return s.Render(text)
}

func (f *formatter) severity(sev report.Severity, text string) string {
	if !f.color {
		return text
	}
	return severityColors[sev].Sprint(text)
}

// findingRows flattens every tool's findings into table rows, in the order
// the tools appear in the summary.
func findingRows(s report.ScanSummary, colored bool) [][]string {
	type source struct {
		tool     string
		findings []report.Finding
	}
	var sources []source
	if s.Nikto != nil {
		sources = append(sources, source{"nikto", s.Nikto.Vulnerabilities})
	}
	if s.Nuclei != nil {
		sources = append(sources, source{"nuclei", s.Nuclei.Findings})
	}
	if s.Hydra != nil {
		sources = append(sources, source{"hydra", s.Hydra.Vulnerabilities})
	}
	if s.Gobuster != nil {
		sources = append(sources, source{"gobuster", s.Gobuster.Vulnerabilities})
	}
	if s.SQLMap != nil {
		sources = append(sources, source{"sqlmap", s.SQLMap.Vulnerabilities})
	}

	var rows [][]string
	for _, src := range sources {
		for _, fd := range src.findings {
			sev := string(fd.Severity)
			if colored {
				if c, ok := severityColors[fd.Severity]; ok {
					sev = c.Sprint(sev)
				}
			}
			rows = append(rows, []string{src.tool, sev, fd.Path, stringutil.Ellipsis(fd.Description, 80)})
		}
	}
	return rows
}
