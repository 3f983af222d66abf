package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/aggregate"
	"github.com/vulntor/scanlens/pkg/parse"
	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/storage"
)

const container = "scan-results"

type memStore struct {
	blobs   map[string]string
	failOn  map[string]error
	listErr error
}

func newMemStore(blobs map[string]string) *memStore {
	return &memStore{blobs: blobs, failOn: map[string]error{}}
}

func (m *memStore) ListBlobs(_ context.Context, c string) ([]storage.BlobInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if c != container {
		return nil, storage.NewNotFoundError("container", c)
	}
	var out []storage.BlobInfo
	for name, content := range m.blobs {
		out = append(out, storage.BlobInfo{Name: name, Size: int64(len(content))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Download(_ context.Context, c, name string) ([]byte, error) {
	if err, ok := m.failOn[name]; ok {
		return nil, err
	}
	content, ok := m.blobs[name]
	if !ok || c != container {
		return nil, storage.NewNotFoundError("blob", name)
	}
	return []byte(content), nil
}

func (m *memStore) Close() error { return nil }

type countingObserver struct {
	mu        sync.Mutex
	parses    map[string]aggregate.Outcome
	fetches   map[string]int
	durations int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{parses: map[string]aggregate.Outcome{}, fetches: map[string]int{}}
}

func (o *countingObserver) ObserveParse(tool string, outcome aggregate.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.parses[tool] = outcome
}

func (o *countingObserver) ObserveFetch(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetches[outcome]++
}

func (o *countingObserver) ObserveAggregate(time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.durations++
}

var fixedClock = func() time.Time { return time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC) }

const niktoText = `- Nikto v2.5.0
+ Target IP:          10.0.0.4
+ GET /: The X-Frame-Options header is not present.
`

func scanBlobs() map[string]string {
	return map[string]string{
		"scans/10.0.0.4/2025-09-07T09-20/nikto.txt":     niktoText,
		"scans/10.0.0.4/2025-09-08T10-00/gobuster.json": `{"target":"10.0.0.4","directories":["/admin"]}`,
		"scans/10.0.0.4/2025-09-08T10-00/nuclei.json":   `[{"host":"dvwa.local","info":{"severity":"critical","name":"x"}}]`,
		"scans/10.0.0.5/2025-09-06T08-00/nikto.txt":     niktoText,
		"scans/10.0.0.5/2025-09-06T08-00/notes.md":      "ignored",
	}
}

func newTestService(store storage.BlobStore, obs Observer) *Service {
	return &Service{Store: store, Container: container, Observer: obs, Clock: fixedClock}
}

func TestService_Latest(t *testing.T) {
	obs := newCountingObserver()
	svc := newTestService(newMemStore(scanBlobs()), obs)

	s, err := svc.Latest(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.4", s.Target)
	assert.Equal(t, "10.0.0.4", s.IP)
	assert.Equal(t, "2025-09-08T10:00:00.000Z", s.ScanDate)
	assert.Nil(t, s.Nikto)
	require.NotNil(t, s.Nuclei)
	assert.Equal(t, "10.0.0.4", s.Nuclei.Target)
	assert.Equal(t, 2, s.Summary.TotalVulnerabilities)
	assert.Equal(t, 1, s.Summary.CriticalFindings)
	assert.Equal(t, 1, s.Summary.TotalDirectories)

	assert.Equal(t, 2, obs.fetches[FetchOK])
	assert.Equal(t, len(scanpath.CandidateFiles)-2, obs.fetches[FetchMissing])
	assert.Equal(t, 1, obs.durations)
	assert.Equal(t, aggregate.OutcomeParsed, obs.parses[parse.ToolNuclei])
	assert.Equal(t, aggregate.OutcomeEmpty, obs.parses[parse.ToolNmap])
}

func TestService_Latest_TargetFilter(t *testing.T) {
	svc := newTestService(newMemStore(scanBlobs()), nil)

	s, err := svc.Latest(context.Background(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", s.Target)
	assert.Equal(t, "2025-09-06T08:00:00.000Z", s.ScanDate)
	require.NotNil(t, s.Nikto)
	assert.Equal(t, "10.0.0.5", s.Nikto.IP)
}

func TestService_Latest_NoScans(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
	}{
		{"empty container", newMemStore(map[string]string{})},
		{"only stray files", newMemStore(map[string]string{"scans/10.0.0.4/readme.txt": "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newTestService(tt.store, nil).Latest(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, report.Unknown, s.Target)
			assert.Equal(t, report.Unknown, s.IP)
			assert.Equal(t, "2025-09-10T12:00:00.000Z", s.ScanDate)
			assert.Equal(t, report.SummaryCounts{}, s.Summary)
		})
	}
}

func TestService_Latest_MissingContainer(t *testing.T) {
	svc := newTestService(newMemStore(scanBlobs()), nil)
	svc.Container = "other"

	s, err := svc.Latest(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, report.Unknown, s.Target)
}

func TestService_UpstreamFailure(t *testing.T) {
	store := newMemStore(scanBlobs())
	store.failOn["scans/10.0.0.4/2025-09-08T10-00/nmap.xml"] = errors.New("connection reset")
	obs := newCountingObserver()
	svc := newTestService(store, obs)

	_, err := svc.Latest(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "scan-results/scans/10.0.0.4/2025-09-08T10-00/nmap.xml")
	assert.Equal(t, 1, obs.fetches[FetchError])

	store.failOn = map[string]error{}
	store.listErr = errors.New("forbidden")
	_, err = svc.Targets(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestService_Report_InvalidLocation(t *testing.T) {
	svc := newTestService(newMemStore(scanBlobs()), nil)

	for _, loc := range []report.ScanLocation{
		{},
		{Target: "10.0.0.4"},
		{Target: "..", Date: "2025-09-07T09-20"},
		{Target: "10.0.0.4", Date: "a/b"},
	} {
		_, err := svc.Report(context.Background(), loc)
		assert.True(t, storage.IsInvalidInput(err), "%+v", loc)
	}
}

func TestService_Tool(t *testing.T) {
	svc := newTestService(newMemStore(scanBlobs()), nil)
	loc := report.ScanLocation{Target: "10.0.0.4", Date: "2025-09-07T09-20"}

	v, err := svc.Tool(context.Background(), loc, parse.ToolNikto)
	require.NoError(t, err)
	nikto, ok := v.(*report.NiktoResult)
	require.True(t, ok)
	assert.Len(t, nikto.Vulnerabilities, 1)

	_, err = svc.Tool(context.Background(), loc, parse.ToolNmap)
	assert.True(t, storage.IsNotFound(err))

	_, err = svc.Tool(context.Background(), loc, "masscan")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestService_Targets(t *testing.T) {
	svc := newTestService(newMemStore(scanBlobs()), nil)

	targets, err := svc.Targets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.4", "10.0.0.5"}, targets)
}

func TestService_List_Pagination(t *testing.T) {
	svc := newTestService(newMemStore(scanBlobs()), nil)
	ctx := context.Background()

	first, err := svc.List(ctx, scanpath.Filter{}, Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "2025-09-08T10-00", first.Items[0].Date)
	assert.Equal(t, 2, first.Items[0].Summary.TotalVulnerabilities)
	assert.Equal(t, "2025-09-07T09-20", first.Items[1].Date)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, scanpath.Filter{}, Page{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "10.0.0.5", second.Items[0].Target)
	assert.Empty(t, second.NextCursor)
}

func TestService_List_CursorSurvivesNewScan(t *testing.T) {
	store := newMemStore(scanBlobs())
	svc := newTestService(store, nil)
	ctx := context.Background()

	first, err := svc.List(ctx, scanpath.Filter{}, Page{Limit: 1})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	store.blobs["scans/10.0.0.9/2025-10-01T00-00/nikto.txt"] = niktoText

	second, err := svc.List(ctx, scanpath.Filter{}, Page{Limit: 1, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "2025-09-07T09-20", second.Items[0].Date)
}

func TestService_List_BadCursor(t *testing.T) {
	svc := newTestService(newMemStore(scanBlobs()), nil)

	_, err := svc.List(context.Background(), scanpath.Filter{}, Page{Cursor: "%%%"})
	assert.True(t, storage.IsInvalidInput(err))
}
