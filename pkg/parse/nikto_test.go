package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/report"
)

const niktoFixture = `- Nikto v2.5.0
---------------------------------------------------------------------------
+ Target IP:          10.0.0.4
+ Target Hostname:    10.0.0.4
+ Target Port:        8080
+ Start Time:         2025-09-07 09:20:11 (GMT0)
---------------------------------------------------------------------------
+ Server: Apache/2.4.41 (Ubuntu)
+ GET /: The anti-clickjacking X-Frame-Options header is not present.
+ /icons/README: Apache default file found. See: OSVDB-3233
+ OSVDB-3092: /login.php: This might be interesting.
+ no colon line here
+ 1 host(s) tested
`

func TestParseNikto_Fixture(t *testing.T) {
	res := ParseNikto(niktoFixture)
	require.NotNil(t, res)

	assert.Equal(t, "10.0.0.4", res.Target)
	assert.Equal(t, "10.0.0.4", res.IP)
	assert.Equal(t, "8080", res.Port)
	require.Len(t, res.Vulnerabilities, 3)

	first := res.Vulnerabilities[0]
	assert.Equal(t, "NIKTO-8", first.ID)
	assert.Equal(t, "GET", first.Method)
	assert.Equal(t, "/", first.Path)
	assert.Equal(t, "The anti-clickjacking X-Frame-Options header is not present.", first.Description)
	assert.Equal(t, report.SeverityInfo, first.Severity)

	second := res.Vulnerabilities[1]
	assert.Equal(t, "NIKTO-9", second.ID)
	assert.Equal(t, "GET", second.Method, "path-only lines default to GET")
	assert.Equal(t, "/icons/README", second.Path)
	assert.Equal(t, "OSVDB-3233", second.Reference)

	third := res.Vulnerabilities[2]
	assert.Equal(t, "NIKTO-10", third.ID)
	assert.Equal(t, "OSVDB-3092", third.Path)
	assert.Equal(t, "/login.php: This might be interesting.", third.Description)
}

func TestParseNikto_TargetHostAndDefaultPort(t *testing.T) {
	content := "+ Target Host: example.com\n+ GET /admin: Admin login page found\n"

	res := ParseNikto(content)
	require.NotNil(t, res)
	assert.Equal(t, "example.com", res.Target)
	assert.Equal(t, "example.com", res.IP)
	assert.Equal(t, "80", res.Port)
	require.Len(t, res.Vulnerabilities, 1)
	assert.Equal(t, "NIKTO-1", res.Vulnerabilities[0].ID)
	assert.Equal(t, "/admin", res.Vulnerabilities[0].Path)
}

func TestParseNikto_IDsFollowLineIndex(t *testing.T) {
	content := "header\n+ GET /a: one\nnoise\n+ POST /b: two\n+ /c: three\r\n"

	res := ParseNikto(content)
	require.NotNil(t, res)

	var ids []string
	for _, v := range res.Vulnerabilities {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"NIKTO-1", "NIKTO-3", "NIKTO-4"}, ids)
	assert.Equal(t, "POST", res.Vulnerabilities[1].Method)
	assert.Equal(t, "three", res.Vulnerabilities[2].Description)
}

func TestParseNikto_NoData(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"single line", "+ GET /: only line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ParseNikto(tt.content))
		})
	}
}

func TestParseNikto_NoFindingsStillReturnsResult(t *testing.T) {
	res := ParseNikto("- Nikto v2.5.0\n- nothing reported\n")
	require.NotNil(t, res)
	assert.Equal(t, report.Unknown, res.Target)
	assert.Equal(t, report.Unknown, res.IP)
	assert.Empty(t, res.Vulnerabilities)
}
