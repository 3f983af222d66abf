// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vulntor/scanlens/pkg/report"
)

// ParseNuclei parses Nuclei JSON output: an array of findings, a single
// finding object, or JSON lines. Objects carrying an "error" field or
// message "skipped" are the pipeline's placeholder for a skipped run and
// yield no data. Plain-text content yields no data.
func ParseNuclei(content string) *report.NucleiResult {
	return guard(ToolNuclei, func() *report.NucleiResult {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return nil
		}

		var items []object
		switch trimmed[0] {
		case '[':
			var raws []json.RawMessage
			if err := json.Unmarshal([]byte(trimmed), &raws); err != nil {
				malformed(ToolNuclei, "Nuclei array decode failed", err)
				return nil
			}
			items = decodeItems(raws)

		case '{':
			if single, err := decodeObject([]byte(trimmed)); err == nil {
				if isPlaceholder(single) {
					malformed(ToolNuclei, "Nuclei report is an error placeholder", nil)
					return nil
				}
				items = []object{single}
				break
			}
			raws, err := decodeJSONLines(trimmed)
			if err != nil {
				malformed(ToolNuclei, "Nuclei JSON decode failed", err)
				return nil
			}
			items = dropPlaceholders(decodeItems(raws))
			if len(items) == 0 {
				malformed(ToolNuclei, "Nuclei JSON lines hold only error placeholders", nil)
				return nil
			}

		default:
			malformed(ToolNuclei, "Nuclei report is not JSON", nil)
			return nil
		}

		res := &report.NucleiResult{
			Target:   report.Unknown,
			IP:       report.Unknown,
			Findings: []report.Finding{},
		}
		if len(items) == 0 {
			return res
		}

		first := items[0]
		res.Target = orDefault(firstStr([]object{first}, "host", "ip"), report.Unknown)
		res.IP = orDefault(first.str("ip"), res.Target)

		for i, item := range items {
			res.Findings = append(res.Findings, nucleiFinding(i, item))
		}
		return res
	})
}

// decodeItems keeps array elements that are objects. Non-object elements
// become empty objects so that finding indexes still follow the source.
func decodeItems(raws []json.RawMessage) []object {
	out := make([]object, 0, len(raws))
	for _, raw := range raws {
		o, err := decodeObject(raw)
		if err != nil {
			o = object{}
		}
		out = append(out, o)
	}
	return out
}

func isPlaceholder(o object) bool {
	return o.truthy("error") || o.str("message") == "skipped"
}

// dropPlaceholders removes the error and skipped records the pipeline
// interleaves with JSON lines output.
func dropPlaceholders(items []object) []object {
	out := items[:0]
	for _, o := range items {
		if !isPlaceholder(o) {
			out = append(out, o)
		}
	}
	return out
}

// nucleiFinding normalizes one finding. Nested info.* fields take precedence
// over top-level ones.
func nucleiFinding(i int, item object) report.Finding {
	sources := []object{item.obj("info"), item}

	return report.Finding{
		ID:          fmt.Sprintf("NUCLEI-%d", i),
		Method:      "GET",
		Path:        orDefault(firstStr([]object{item}, "matched-at", "path"), "/"),
		Description: orDefault(orDefault(firstStr(sources, "description"), firstStr(sources, "name")), report.Unknown),
		Severity:    report.ParseSeverity(firstStr(sources, "severity")),
		Reference:   firstStr(sources, "reference"),
		Template:    orDefault(firstStr([]object{item}, "template-id", "templateID", "template"), report.Unknown),
	}
}
