package aggregate

import (
	"github.com/vulntor/scanlens/pkg/parse"
	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
)

// candidate binds one file name to the parser that understands it. parse
// returns nil when the content holds no usable data.
type candidate struct {
	file  string
	parse func(content string) any
}

// toolSpec describes how one tool's output lands in a ScanSummary.
type toolSpec struct {
	name       string
	candidates []candidate
	assign     func(s *report.ScanSummary, v any)
	// merge, when set, receives every later candidate that also parsed.
	merge func(s *report.ScanSummary, v any)
}

// tools is ordered by output field, not by priority. Adding a tool is a
// new entry here plus its parser.
var tools = []toolSpec{
	{
		name: parse.ToolNikto,
		candidates: []candidate{
			{scanpath.FileNiktoTxt, single(parse.ParseNikto)},
			{scanpath.FileNiktoCSV, single(parse.ParseNikto)},
		},
		assign: func(s *report.ScanSummary, v any) { s.Nikto = v.(*report.NiktoResult) },
	},
	{
		name:       parse.ToolNmap,
		candidates: []candidate{{scanpath.FileNmap, single(parse.ParseNmap)}},
		assign:     func(s *report.ScanSummary, v any) { s.Nmap = v.(*report.NmapResult) },
	},
	{
		name:       parse.ToolNuclei,
		candidates: []candidate{{scanpath.FileNuclei, single(parse.ParseNuclei)}},
		assign:     func(s *report.ScanSummary, v any) { s.Nuclei = v.(*report.NucleiResult) },
	},
	{
		name: parse.ToolHydra,
		candidates: []candidate{
			{scanpath.FileHydraTxt, single(parse.ParseHydraText)},
			{scanpath.FileHydraJSON, single(parse.ParseHydraJSON)},
		},
		assign: func(s *report.ScanSummary, v any) { s.Hydra = v.(*report.ToolResult) },
		// The JSON wrapper carries the run status the text log lacks, and
		// may hold credentials the text log never printed.
		merge: func(s *report.ScanSummary, v any) {
			other := v.(*report.ToolResult)
			if s.Hydra.Status == "" {
				s.Hydra.Status = other.Status
			}
			s.Hydra.Vulnerabilities = mergeCredentials(s.Hydra.Vulnerabilities, other.Vulnerabilities)
		},
	},
	{
		name:       parse.ToolGobuster,
		candidates: []candidate{{scanpath.FileGobuster, single(parse.ParseGobuster)}},
		assign:     func(s *report.ScanSummary, v any) { s.Gobuster = v.(*report.ToolResult) },
	},
	{
		name:       parse.ToolSQLMap,
		candidates: []candidate{{scanpath.FileSQLMap, single(parse.ParseSQLMap)}},
		assign:     func(s *report.ScanSummary, v any) { s.SQLMap = v.(*report.ToolResult) },
	},
	{
		name:       parse.ToolCredentials,
		candidates: []candidate{{scanpath.FileCredentials, list(parse.ParseCredentials)}},
		assign:     func(s *report.ScanSummary, v any) { s.Credentials = v.([]report.Credential) },
	},
	{
		name:       parse.ToolWordlist,
		candidates: []candidate{{scanpath.FileWordlist, list(parse.ParseWordlist)}},
		assign:     func(s *report.ScanSummary, v any) { s.Wordlist = v.([]string) },
	},
}

// single adapts a pointer-returning parser so that "no data" is a nil
// interface rather than a typed nil.
func single[T any](fn func(string) *T) func(string) any {
	return func(content string) any {
		if r := fn(content); r != nil {
			return r
		}
		return nil
	}
}

func list[T any](fn func(string) []T) func(string) any {
	return func(content string) any {
		if r := fn(content); len(r) > 0 {
			return r
		}
		return nil
	}
}

// ToolNames returns the tool names in table order.
func ToolNames() []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.name)
	}
	return names
}

// ToolFiles returns the candidate file names for tool, or nil when the tool
// is unknown.
func ToolFiles(tool string) []string {
	for _, t := range tools {
		if t.name != tool {
			continue
		}
		files := make([]string, 0, len(t.candidates))
		for _, c := range t.candidates {
			files = append(files, c.file)
		}
		return files
	}
	return nil
}

// mergeCredentials appends the credential findings of extra that base does
// not already report. Credentials compare by description, which embeds the
// login and password.
func mergeCredentials(base, extra []report.Finding) []report.Finding {
	seen := make(map[string]bool, len(base))
	ids := make(map[string]bool, len(base))
	for _, f := range base {
		seen[f.Description] = true
		ids[f.ID] = true
	}
	for _, f := range extra {
		if seen[f.Description] {
			continue
		}
		seen[f.Description] = true
		if ids[f.ID] {
			f.ID += "-json"
		}
		ids[f.ID] = true
		base = append(base, f)
	}
	return base
}
