package v1

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

var validate = validator.New()

// segmentRe matches one path segment of a scan location: a target
// (hostname, IPv4, IPv6 or dashed IP) or a date folder.
var segmentRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,252}$`)

// ListScansQuery represents supported query params for GET /api/v1/scans
type ListScansQuery struct {
	Target string
	Date   string // Date folder prefix, e.g. "2025-09" or "2025-09-07T09"
	Limit  int
	Cursor string // Opaque cursor for pagination (empty for first page)
}

// ParseListScansQuery parses and validates query params.
// Returns validated query with Limit=service.DefaultPageSize when omitted.
func ParseListScansQuery(r *http.Request) (*ListScansQuery, error) {
	q := r.URL.Query()
	var res ListScansQuery

	if v := strings.TrimSpace(q.Get("target")); v != "" {
		if err := ValidateSegment("target", v); err != nil {
			return nil, err
		}
		res.Target = v
	}

	if v := strings.TrimSpace(q.Get("date")); v != "" {
		if err := validate.Var(v, "max=16,excludesall=/\\"); err != nil {
			return nil, &ValidationError{Field: "date", Reason: "must be a date folder prefix"}
		}
		res.Date = v
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{Field: "limit", Reason: "must be an integer"}
		}
		if err := validate.Var(n, "min=1,max="+strconv.Itoa(service.MaxPageSize)); err != nil {
			return nil, &ValidationError{Field: "limit", Reason: "must be between 1 and " + strconv.Itoa(service.MaxPageSize)}
		}
		res.Limit = n
	}

	// Cursor is opaque; the service rejects malformed values.
	if v := strings.TrimSpace(q.Get("cursor")); v != "" {
		res.Cursor = v
	}

	if res.Limit == 0 {
		res.Limit = service.DefaultPageSize
	}

	return &res, nil
}

// ParseLatestQuery returns the optional target filter of
// GET /api/v1/scans/latest.
func ParseLatestQuery(r *http.Request) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get("target"))
	if v == "" {
		return "", nil
	}
	if err := ValidateSegment("target", v); err != nil {
		return "", err
	}
	return v, nil
}

// ParseLocation reads the {target} and {date} path values.
func ParseLocation(r *http.Request) (report.ScanLocation, error) {
	loc := report.ScanLocation{
		Target: r.PathValue("target"),
		Date:   r.PathValue("date"),
	}
	if err := ValidateSegment("target", loc.Target); err != nil {
		return report.ScanLocation{}, err
	}
	if err := ValidateSegment("date", loc.Date); err != nil {
		return report.ScanLocation{}, err
	}
	return loc, nil
}

// ValidateSegment checks a value used as one blob path segment.
func ValidateSegment(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	if strings.Contains(v, "..") || !segmentRe.MatchString(v) {
		return &ValidationError{Field: field, Reason: "invalid format"}
	}
	return nil
}

// ValidationError is a lightweight error used for 400 responses.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation failed"
	}
	if e.Reason == "" {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Reason
}

// Unwrap lets api.WriteError map validation failures to 400.
func (e *ValidationError) Unwrap() error {
	return storage.ErrInvalidInput
}
