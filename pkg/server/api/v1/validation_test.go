package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

func TestParseListScansQuery_Defaults(t *testing.T) {
	q, err := ParseListScansQuery(httptest.NewRequest(http.MethodGet, "/api/v1/scans", nil))
	require.NoError(t, err)
	require.Equal(t, service.DefaultPageSize, q.Limit)
	require.Empty(t, q.Target)
	require.Empty(t, q.Date)
	require.Empty(t, q.Cursor)
}

func TestParseListScansQuery(t *testing.T) {
	q, err := ParseListScansQuery(httptest.NewRequest(http.MethodGet,
		"/api/v1/scans?target=10.0.0.4&date=2025-09&limit=5&cursor=abc", nil))
	require.NoError(t, err)
	require.Equal(t, "10.0.0.4", q.Target)
	require.Equal(t, "2025-09", q.Date)
	require.Equal(t, 5, q.Limit)
	require.Equal(t, "abc", q.Cursor)
}

func TestParseListScansQuery_Invalid(t *testing.T) {
	tests := []struct {
		query string
		field string
	}{
		{"limit=x", "limit"},
		{"limit=0", "limit"},
		{"limit=500", "limit"},
		{"target=a/b", "target"},
		{"target=..", "target"},
		{"date=2025%2F09", "date"},
		{"date=2025-09-07T09-20-00-extra", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := ParseListScansQuery(httptest.NewRequest(http.MethodGet, "/api/v1/scans?"+tt.query, nil))
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.field, ve.Field)
			require.True(t, storage.IsInvalidInput(err))
		})
	}
}

func TestValidateSegment(t *testing.T) {
	for _, v := range []string{"10.0.0.4", "10-0-0-4", "dvwa.local", "fe80::1", "2025-09-07T09-20", "manual-run"} {
		require.NoError(t, ValidateSegment("target", v), v)
	}
	for _, v := range []string{"", " ", ".", "..", "a..b", "a/b", `a\b`, ".hidden", "-dash"} {
		require.Error(t, ValidateSegment("target", v), v)
	}
}

func TestValidationError_Message(t *testing.T) {
	require.Equal(t, "validation failed", (&ValidationError{}).Error())
	require.Equal(t, "limit: invalid", (&ValidationError{Field: "limit"}).Error())
	require.Equal(t, "limit: required", (&ValidationError{Field: "limit", Reason: "required"}).Error())
}
