package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/parse"
	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
)

var fixedNow = func() time.Time { return time.Date(2025, 9, 7, 9, 20, 0, 0, time.UTC) }

const (
	niktoText = `- Nikto v2.5.0
+ Target IP:          10.0.0.4
+ Target Port:        80
+ GET /: The X-Frame-Options header is not present.
+ /icons/README: Apache default file found. See: OSVDB-3233
`
	nmapXML = `<nmaprun><host><address addr="10.0.0.4" addrtype="ipv4"/><ports>` +
		`<port protocol="tcp" portid="22"><state state="open"/><service name="ssh"/></port>` +
		`<port protocol="tcp" portid="80"><state state="open"/><service name="http"/></port>` +
		`<port protocol="tcp" portid="443"><state state="closed"/></port>` +
		`</ports></host></nmaprun>`
	nucleiJSON = `[
		{"template-id":"a","host":"10.0.0.4","info":{"severity":"high","name":"A"}},
		{"template-id":"b","host":"10.0.0.4","info":{"severity":"critical","name":"B"}}
	]`
	hydraText = `# Hydra v9.5 run on 10.0.0.4 http-post-form
[80][http-post-form] host: 10.0.0.4   login: admin   password: password
`
	hydraJSON    = `{"target":"10.0.0.4","dvwa_bruteforce":"completed","results":[]}`
	gobusterJSON = `{"target":"10.0.0.4","directories":["/admin","/config"]}`
	sqlmapJSON   = `{"target":"10.0.0.4","sqlmap_scan":"done","dvwa_paths_tested":["/vulnerabilities/sqli/"]}`
)

func fullFolder() Files {
	return Files{
		scanpath.FileNiktoTxt:    niktoText,
		scanpath.FileNmap:        nmapXML,
		scanpath.FileNuclei:      nucleiJSON,
		scanpath.FileHydraTxt:    hydraText,
		scanpath.FileHydraJSON:   hydraJSON,
		scanpath.FileGobuster:    gobusterJSON,
		scanpath.FileSQLMap:      sqlmapJSON,
		scanpath.FileCredentials: "admin:password\ngordonb:abc123\n",
		scanpath.FileWordlist:    "admin\nlogin\n\nsetup\n",
	}
}

type recorder map[string]Outcome

func (r recorder) ObserveParse(tool string, outcome Outcome) { r[tool] = outcome }

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(Files{}, Options{Now: fixedNow})

	assert.Equal(t, report.Unknown, s.Target)
	assert.Equal(t, report.Unknown, s.IP)
	assert.Equal(t, "2025-09-07T09:20:00.000Z", s.ScanDate)
	assert.Equal(t, report.SummaryCounts{}, s.Summary)
	assert.Nil(t, s.Nikto)
	assert.Nil(t, s.Nmap)
	assert.Nil(t, s.Nuclei)
	assert.Nil(t, s.Hydra)
	assert.Nil(t, s.Gobuster)
	assert.Nil(t, s.SQLMap)
	assert.Empty(t, s.Credentials)
	assert.Empty(t, s.Wordlist)
}

func TestAggregate_FullFolder(t *testing.T) {
	obs := recorder{}
	s := Aggregate(fullFolder(), Options{
		ObjectKey: "scans/10-0-0-4/2025-09-07T09-20/nmap.xml",
		Observer:  obs,
	})

	assert.Equal(t, "10.0.0.4", s.Target)
	assert.Equal(t, "10.0.0.4", s.IP)
	assert.Equal(t, "2025-09-07T09:20:00.000Z", s.ScanDate)

	require.NotNil(t, s.Hydra)
	assert.Equal(t, "completed", s.Hydra.Status)
	require.NotNil(t, s.SQLMap)
	assert.Equal(t, "done", s.SQLMap.Status)

	assert.Equal(t, report.SummaryCounts{
		TotalVulnerabilities: 8,
		OpenPorts:            2,
		CriticalFindings:     1,
		HighFindings:         3,
		InfoFindings:         4,
		TotalCredentials:     3,
		TotalDirectories:     2,
		TotalWords:           3,
	}, s.Summary)

	for _, tool := range ToolNames() {
		assert.Equal(t, OutcomeParsed, obs[tool], tool)
	}
}

func TestAggregate_NmapIdentityWins(t *testing.T) {
	files := Files{
		scanpath.FileNmap: `<nmaprun><host><address addr="10.0.0.8" addrtype="ipv4"/>` +
			`<hostnames><hostname name="dvwa.internal"/></hostnames><ports></ports></host></nmaprun>`,
		scanpath.FileNiktoTxt: niktoText,
	}

	s := Aggregate(files, Options{ObjectKey: "scans/10-0-0-4/2025-09-07T09-20/"})
	assert.Equal(t, "dvwa.internal", s.Target)
	assert.Equal(t, "10.0.0.8", s.IP)
	assert.Equal(t, 0, s.Summary.OpenPorts)
}

func TestAggregate_NiktoIdentityBeatsPath(t *testing.T) {
	s := Aggregate(Files{scanpath.FileNiktoTxt: niktoText}, Options{
		ObjectKey: "scans/10-0-0-5/2025-09-07T09-20/nikto.txt",
	})
	assert.Equal(t, "10.0.0.4", s.Target)
	assert.Equal(t, "10.0.0.4", s.IP)
	assert.Equal(t, 2, s.Summary.TotalVulnerabilities)
	assert.Equal(t, 2, s.Summary.InfoFindings)
}

func TestAggregate_UnknownToolIdentityFallsBackToPath(t *testing.T) {
	noHeader := "- Nikto v2.5.0\n+ GET /: Something.\n"
	s := Aggregate(Files{scanpath.FileNiktoTxt: noHeader}, Options{
		ObjectKey: "scans/10-0-0-5/2025-09-07T09-20/nikto.txt",
	})
	assert.Equal(t, "10.0.0.5", s.Target)
	assert.Equal(t, "10.0.0.5", s.IP)
}

func TestAggregate_LocationOverridesIdentity(t *testing.T) {
	files := Files{
		scanpath.FileNiktoTxt: "- Nikto v2.5.0\n+ Target Host: dvwa.local\n+ GET /: Something.\n",
		scanpath.FileNuclei:   `{"host":"dvwa.local","severity":"low"}`,
	}
	loc := report.ScanLocation{Target: "10.0.0.9", Date: "2025-10-01T08-30"}

	s := Aggregate(files, Options{Location: loc, Now: fixedNow})

	assert.Equal(t, "10.0.0.9", s.Target)
	assert.Equal(t, "10.0.0.9", s.IP)
	assert.Equal(t, "2025-10-01T08:30:00.000Z", s.ScanDate)
	require.NotNil(t, s.Nikto)
	assert.Equal(t, "10.0.0.9", s.Nikto.Target)
	require.NotNil(t, s.Nuclei)
	assert.Equal(t, "10.0.0.9", s.Nuclei.IP)
}

func TestAggregate_NonCanonicalLocationDateUsesNow(t *testing.T) {
	loc := report.ScanLocation{Target: "10.0.0.9", Date: "manual-run"}
	s := Aggregate(Files{}, Options{Location: loc, Now: fixedNow})

	assert.Equal(t, "10.0.0.9", s.Target)
	assert.Equal(t, "2025-09-07T09:20:00.000Z", s.ScanDate)
}

func TestAggregate_NiktoFallsBackToCSV(t *testing.T) {
	obs := recorder{}
	files := Files{
		scanpath.FileNiktoTxt: "truncated",
		scanpath.FileNiktoCSV: niktoText,
	}

	s := Aggregate(files, Options{Observer: obs, Now: fixedNow})
	require.NotNil(t, s.Nikto)
	assert.Len(t, s.Nikto.Vulnerabilities, 2)
	assert.Equal(t, OutcomeParsed, obs[parse.ToolNikto])
}

func TestAggregate_HydraJSONOnly(t *testing.T) {
	content := `{"target":"10.0.0.4","dvwa_bruteforce":"failed","results":["host: 10.0.0.4 login: a password: b"]}`
	s := Aggregate(Files{scanpath.FileHydraJSON: content}, Options{Now: fixedNow})

	require.NotNil(t, s.Hydra)
	assert.Equal(t, "failed", s.Hydra.Status)
	assert.Equal(t, 1, s.Summary.TotalCredentials)
	assert.Equal(t, 1, s.Summary.HighFindings)
}

func TestAggregate_HydraTextWithoutCredentialsKeepsJSON(t *testing.T) {
	text := "# Hydra v9.5 run on 10.0.0.4 http-post-form\n[DATA] max 16 tasks per 1 server\n"
	content := `{"target":"10.0.0.4","dvwa_bruteforce":"completed","results":["host: 10.0.0.4 login: a password: b"]}`
	s := Aggregate(Files{
		scanpath.FileHydraTxt:  text,
		scanpath.FileHydraJSON: content,
	}, Options{Now: fixedNow})

	require.NotNil(t, s.Hydra)
	assert.Equal(t, "completed", s.Hydra.Status)
	require.Len(t, s.Hydra.Vulnerabilities, 1)
	assert.Equal(t, "Found credentials: a:b", s.Hydra.Vulnerabilities[0].Description)
	assert.Equal(t, 1, s.Summary.TotalCredentials)
}

func TestAggregate_HydraCredentialsDeduplicated(t *testing.T) {
	content := `{"target":"10.0.0.4","dvwa_bruteforce":"completed","results":[` +
		`"host: 10.0.0.4 login: admin password: password",` +
		`"host: 10.0.0.4 login: gordonb password: abc123"]}`
	s := Aggregate(Files{
		scanpath.FileHydraTxt:  hydraText,
		scanpath.FileHydraJSON: content,
	}, Options{Now: fixedNow})

	require.NotNil(t, s.Hydra)
	require.Len(t, s.Hydra.Vulnerabilities, 2)
	assert.NotEqual(t, s.Hydra.Vulnerabilities[0].ID, s.Hydra.Vulnerabilities[1].ID)
	assert.Equal(t, 2, s.Summary.TotalCredentials)
}

func TestAggregate_Outcomes(t *testing.T) {
	obs := recorder{}
	files := Files{
		scanpath.FileNuclei:   "not json at all",
		scanpath.FileGobuster: gobusterJSON,
		scanpath.FileSQLMap:   "   \n",
	}

	s := Aggregate(files, Options{Observer: obs, Now: fixedNow})

	assert.Nil(t, s.Nuclei)
	assert.Equal(t, OutcomeMalformed, obs[parse.ToolNuclei])
	assert.Equal(t, OutcomeParsed, obs[parse.ToolGobuster])
	assert.Equal(t, OutcomeEmpty, obs[parse.ToolSQLMap])
	assert.Equal(t, OutcomeEmpty, obs[parse.ToolNmap])
	assert.Len(t, obs, len(ToolNames()))
}

func TestAggregate_Idempotent(t *testing.T) {
	opts := Options{ObjectKey: "scans/10-0-0-4/2025-09-07T09-20/nmap.xml"}

	first, err := json.Marshal(Aggregate(fullFolder(), opts))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate(fullFolder(), opts))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, first, second)
}

func TestToolFiles(t *testing.T) {
	assert.Equal(t, []string{scanpath.FileNiktoTxt, scanpath.FileNiktoCSV}, ToolFiles(parse.ToolNikto))
	assert.Equal(t, []string{scanpath.FileHydraTxt, scanpath.FileHydraJSON}, ToolFiles(parse.ToolHydra))
	assert.Nil(t, ToolFiles("masscan"))
}
