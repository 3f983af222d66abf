package parse

import (
	"strings"

	"github.com/vulntor/scanlens/pkg/report"
)

// ParseCredentials splits a "user:password" per line credentials file.
// A line without a colon is a username with an empty password.
func ParseCredentials(content string) []report.Credential {
	var out []report.Credential
	for _, line := range lines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		user, pass, _ := strings.Cut(line, ":")
		out = append(out, report.Credential{
			Username: strings.TrimSpace(user),
			Password: strings.TrimSpace(pass),
		})
	}
	return out
}

// ParseWordlist returns the non-blank lines of a wordlist file.
func ParseWordlist(content string) []string {
	var out []string
	for _, line := range lines(content) {
		if w := strings.TrimSpace(line); w != "" {
			out = append(out, w)
		}
	}
	return out
}
