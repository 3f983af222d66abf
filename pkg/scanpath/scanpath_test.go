package scanpath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/report"
)

func TestResolveFromPath(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want Resolved
	}{
		{
			name: "dashed ip with date",
			key:  "scans/10-0-0-4/2025-09-07T09-20/nuclei.json",
			want: Resolved{Target: "10.0.0.4", IP: "10.0.0.4", ScanDate: "2025-09-07T09:20:00.000Z"},
		},
		{
			name: "dotted ip",
			key:  "scans/10.0.0.5/2025-09-08T10-00/nikto.txt",
			want: Resolved{Target: "10.0.0.5", IP: "10.0.0.5", ScanDate: "2025-09-08T10:00:00.000Z"},
		},
		{
			name: "no date folder",
			key:  "scans/10-0-0-4/latest/nikto.txt",
			want: Resolved{Target: "10.0.0.4", IP: "10.0.0.4"},
		},
		{
			name: "hostname target",
			key:  "scans/dvwa.local/2025-09-07T09-20/nikto.txt",
			want: Resolved{Target: report.Unknown, IP: report.Unknown, ScanDate: "2025-09-07T09:20:00.000Z"},
		},
		{
			name: "empty",
			key:  "",
			want: Resolved{Target: report.Unknown, IP: report.Unknown},
		},
		{
			name: "extra slashes",
			key:  "//scans//10-0-0-4//2025-09-07T09-20//",
			want: Resolved{Target: "10.0.0.4", IP: "10.0.0.4", ScanDate: "2025-09-07T09:20:00.000Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveFromPath(tt.key))
		})
	}
}

func TestFolderDateToISO(t *testing.T) {
	iso, ok := FolderDateToISO("2025-09-07T12-46")
	require.True(t, ok)
	assert.Equal(t, "2025-09-07T12:46:00.000Z", iso)

	for _, bad := range []string{"2025-09-07", "2025-09-07T12:46", "2025-9-07T12-46", "latest", ""} {
		_, ok := FolderDateToISO(bad)
		assert.False(t, ok, bad)
	}
}

func TestFolderDateTime(t *testing.T) {
	ts, ok := FolderDateTime("2025-09-07T12-46")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 7, 12, 46, 0, 0, time.UTC), ts.UTC())

	for _, bad := range []string{"manual-run", "2025-13-07T12-46"} {
		_, ok := FolderDateTime(bad)
		assert.False(t, ok, bad)
	}
}

func TestFormatFolderDate_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 9, 7, 9, 20, 59, 0, time.FixedZone("IDT", 3*3600))

	folder := FormatFolderDate(ts)
	assert.Equal(t, "2025-09-07T06-20", folder)
	assert.True(t, IsCanonicalDate(folder))

	iso, ok := FolderDateToISO(folder)
	require.True(t, ok)
	assert.Equal(t, "2025-09-07T06:20:00.000Z", iso)
	assert.Equal(t, "2025-09-07T06:20:59.000Z", FormatISO(ts))
}

func TestBlobName(t *testing.T) {
	loc := report.ScanLocation{Target: "10.0.0.4", Date: "2025-09-07T09-20"}
	assert.Equal(t, "scans/10.0.0.4/2025-09-07T09-20", ScanPrefix(loc))
	assert.Equal(t, "scans/10.0.0.4/2025-09-07T09-20/nmap.xml", BlobName(loc, FileNmap))
}
