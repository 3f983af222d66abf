package service

import (
	"context"

	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/storage"
)

// Listing limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of the scan listing.
type Page struct {
	Limit  int
	Cursor string
}

// ScanEntry is one scan folder with its aggregated counts.
type ScanEntry struct {
	Target   string               `json:"target"`
	Date     string               `json:"date"`
	ScanDate string               `json:"scanDate"`
	IP       string               `json:"ip"`
	Summary  report.SummaryCounts `json:"summary"`
}

// ScanPage is one page of List results, newest first.
type ScanPage struct {
	Items      []ScanEntry `json:"items"`
	Total      int         `json:"total"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

// List returns one page of scan folders matching f, each summarized.
func (s *Service) List(ctx context.Context, f scanpath.Filter, p Page) (ScanPage, error) {
	cur, err := storage.DecodeCursor(p.Cursor)
	if err != nil {
		return ScanPage{}, err
	}

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	names, err := s.names(ctx)
	if err != nil {
		return ScanPage{}, err
	}
	locs := scanpath.ListScans(names, f)

	start := resumeOffset(locs, cur)
	end := min(start+limit, len(locs))

	page := ScanPage{Items: make([]ScanEntry, 0, end-start), Total: len(locs)}
	for _, loc := range locs[start:end] {
		summary, err := s.Report(ctx, loc)
		if err != nil {
			return ScanPage{}, err
		}
		page.Items = append(page.Items, ScanEntry{
			Target:   loc.Target,
			Date:     loc.Date,
			ScanDate: summary.ScanDate,
			IP:       summary.IP,
			Summary:  summary.Summary,
		})
	}

	if end < len(locs) {
		page.NextCursor = storage.EncodeCursor(&storage.Cursor{
			Offset: end,
			Last:   locationKey(locs[end-1]),
		})
	}
	return page, nil
}

// resumeOffset finds where the previous page stopped. When folders were
// added since, the cursor's last key is located again so no entry is
// repeated or skipped.
func resumeOffset(locs []report.ScanLocation, cur *storage.Cursor) int {
	if cur == nil {
		return 0
	}
	if cur.Offset <= len(locs) && locationKey(locs[cur.Offset-1]) == cur.Last {
		return cur.Offset
	}
	for i, loc := range locs {
		if locationKey(loc) == cur.Last {
			return i + 1
		}
	}
	return min(cur.Offset, len(locs))
}

func locationKey(loc report.ScanLocation) string {
	return loc.Target + "/" + loc.Date
}
