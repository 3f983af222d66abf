package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"HIGH", SeverityHigh},
		{"high", SeverityHigh},
		{"Medium", SeverityMedium},
		{" low ", SeverityLow},
		{"CRITICAL", SeverityCritical},
		{"Info", SeverityInfo},
		{"", SeverityUnknown},
		{"severe", SeverityUnknown},
		{"unknown", SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeverity(tt.in))
		})
	}
}

func TestOrUnknown(t *testing.T) {
	assert.Equal(t, Unknown, OrUnknown(""))
	assert.Equal(t, Unknown, OrUnknown("   "))
	assert.Equal(t, "10.0.0.4", OrUnknown("10.0.0.4"))
}

func TestScanSummary_JSONFieldNames(t *testing.T) {
	s := ScanSummary{Target: "t", IP: "i", ScanDate: "d"}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"scanDate":"d"`)
	assert.Contains(t, out, `"totalVulnerabilities":0`)
	assert.Contains(t, out, `"totalCredentials":0`)
	assert.NotContains(t, out, `"nikto"`)
	assert.NotContains(t, out, `"nmap"`)
}

func TestScanLocation_IsZero(t *testing.T) {
	assert.True(t, ScanLocation{}.IsZero())
	assert.False(t, ScanLocation{Target: "10.0.0.4"}.IsZero())
}
