// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package parse turns raw scanner output into the normalized report model.
//
// Every parser is pure and total: it takes the file content as a string and
// returns either a result or nil ("no data for this tool"). Malformed input,
// empty input and internal panics all map to nil; nothing is returned to the
// caller as an error.
package parse

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Tool names, used as labels in logs and metrics.
const (
	ToolNikto       = "nikto"
	ToolNmap        = "nmap"
	ToolNuclei      = "nuclei"
	ToolHydra       = "hydra"
	ToolGobuster    = "gobuster"
	ToolSQLMap      = "sqlmap"
	ToolCredentials = "credentials"
	ToolWordlist    = "wordlist"
)

// guard runs fn and converts a panic into "no data".
func guard[T any](tool string, fn func() *T) (res *T) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().
				Str("component", "parse").
				Str("tool", tool).
				Interface("panic", r).
				Msg("Parser recovered from panic")
			res = nil
		}
	}()
	return fn()
}

// malformed logs a content grammar failure. It never escalates.
func malformed(tool, reason string, err error) {
	ev := log.Debug().
		Str("component", "parse").
		Str("tool", tool)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(reason)
}

// lines trims the content and splits it into lines with CR stripped.
func lines(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	out := strings.Split(trimmed, "\n")
	for i, l := range out {
		out[i] = strings.TrimRight(l, "\r")
	}
	return out
}

// isBlank reports whether content has nothing but whitespace.
func isBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}

// lineExtractor is one candidate pattern for a line-oriented format.
// Extractors are kept in priority order; the first match wins.
type lineExtractor struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) (method, path, description string)
}

// extract tries each extractor in order against line.
func extract(extractors []lineExtractor, line string) (method, path, description string, ok bool) {
	for _, ex := range extractors {
		m := ex.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		method, path, description = ex.build(m)
		return method, path, description, true
	}
	return "", "", "", false
}

// orDefault returns s unless it is blank, in which case def.
func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
