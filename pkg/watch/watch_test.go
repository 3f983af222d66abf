package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/service"
	"github.com/vulntor/scanlens/pkg/storage"
)

func setupContainer(t *testing.T) (root, container string) {
	t.Helper()
	root = t.TempDir()
	container = filepath.Join(root, storage.DefaultContainer)
	for _, d := range []string{
		"scans/10.0.0.4/2025-09-07T09-20",
		"scans/10.0.0.4/2025-09-08T10-00",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(container, d), 0o755))
	}
	require.NoError(t, os.WriteFile(
		filepath.Join(container, "scans/10.0.0.4/2025-09-07T09-20/nikto.txt"), []byte("x\ny\n"), 0o644))
	return root, container
}

func locator(t *testing.T, root string) LocateFunc {
	t.Helper()
	store, err := storage.NewLocalStore(context.Background(), &storage.Config{Root: root})
	require.NoError(t, err)
	svc := service.New(store, storage.DefaultContainer, nil)
	return func(ctx context.Context) (report.ScanLocation, bool, error) {
		return svc.Locate(ctx, "")
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(t.TempDir(), 0, nil, func(report.ScanLocation) {}, zerolog.Nop())
	assert.Error(t, err)

	w, err := New(t.TempDir(), 0, func(context.Context) (report.ScanLocation, bool, error) {
		return report.ScanLocation{}, false, nil
	}, func(report.ScanLocation) {}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounceDelay)
	require.NoError(t, w.Close())
}

func TestWatcher_ReportsInitialAndNewerScan(t *testing.T) {
	root, container := setupContainer(t)

	got := make(chan report.ScanLocation, 4)
	w, err := New(container, 20*time.Millisecond, locator(t, root), func(loc report.ScanLocation) {
		got <- loc
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	select {
	case loc := <-got:
		assert.Equal(t, report.ScanLocation{Target: "10.0.0.4", Date: "2025-09-07T09-20"}, loc)
	case <-time.After(2 * time.Second):
		t.Fatal("initial latest not reported")
	}

	require.NoError(t, os.WriteFile(
		filepath.Join(container, "scans/10.0.0.4/2025-09-08T10-00/nmap.xml"), []byte("<nmaprun/>"), 0o644))

	select {
	case loc := <-got:
		assert.Equal(t, "2025-09-08T10-00", loc.Date)
	case <-time.After(2 * time.Second):
		t.Fatal("newer scan not reported")
	}

	// Rewriting an older folder does not change the latest location.
	require.NoError(t, os.WriteFile(
		filepath.Join(container, "scans/10.0.0.4/2025-09-07T09-20/nuclei.json"), []byte("[]"), 0o644))
	select {
	case loc := <-got:
		t.Fatalf("unexpected report %+v", loc)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_ContainerWithoutScansFolder(t *testing.T) {
	root := t.TempDir()
	container := filepath.Join(root, storage.DefaultContainer)
	require.NoError(t, os.MkdirAll(container, 0o755))

	got := make(chan report.ScanLocation, 2)
	w, err := New(container, 100*time.Millisecond, locator(t, root), func(loc report.ScanLocation) {
		got <- loc
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	// Give Start time to register the container before the first write.
	time.Sleep(50 * time.Millisecond)
	dir := filepath.Join(container, "scans/10.0.0.5/2025-09-09T11-00")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nmap.xml"), []byte("<nmaprun/>"), 0o644))

	select {
	case loc := <-got:
		assert.Equal(t, report.ScanLocation{Target: "10.0.0.5", Date: "2025-09-09T11-00"}, loc)
	case <-time.After(2 * time.Second):
		t.Fatal("scan under a new scans folder not reported")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "absent"), time.Millisecond,
		func(context.Context) (report.ScanLocation, bool, error) { return report.ScanLocation{}, false, nil },
		func(report.ScanLocation) {}, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	err = w.Start(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
