package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBlob(t *testing.T, root, container, name, content string) {
	t.Helper()
	p := filepath.Join(root, container, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func newTestStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DefaultContainer), 0o755))

	store, err := NewLocalStore(context.Background(), &Config{Root: root, Container: DefaultContainer, MaxBlobSize: 1024})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, root
}

func TestNewLocalStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(t *testing.T) *Config
		wantErr error
	}{
		{
			name: "valid config",
			cfg:  func(t *testing.T) *Config { return &Config{Root: t.TempDir()} },
		},
		{
			name:    "empty root",
			cfg:     func(t *testing.T) *Config { return &Config{} },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing root",
			cfg:     func(t *testing.T) *Config { return &Config{Root: filepath.Join(t.TempDir(), "nope")} },
			wantErr: ErrNotFound,
		},
		{
			name:    "bad container",
			cfg:     func(t *testing.T) *Config { return &Config{Root: t.TempDir(), Container: "../x"} },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg(t)
			store, err := NewLocalStore(context.Background(), cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, store)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultContainer, cfg.Container)
			assert.Equal(t, DefaultMaxBlobSize, cfg.MaxBlobSize)
		})
	}
}

func TestLocalStore_ListBlobs(t *testing.T) {
	store, root := newTestStore(t)
	writeBlob(t, root, DefaultContainer, "scans/10.0.0.5/2025-09-08T10-00/nikto.txt", "b")
	writeBlob(t, root, DefaultContainer, "scans/10.0.0.4/2025-09-07T09-20/nmap.xml", "aa")

	blobs, err := store.ListBlobs(context.Background(), DefaultContainer)
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	assert.Equal(t, []string{
		"scans/10.0.0.4/2025-09-07T09-20/nmap.xml",
		"scans/10.0.0.5/2025-09-08T10-00/nikto.txt",
	}, Names(blobs))
	assert.Equal(t, int64(2), blobs[0].Size)
}

func TestLocalStore_ListBlobs_MissingContainer(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ListBlobs(context.Background(), "other")
	assert.True(t, IsNotFound(err))
}

func TestLocalStore_ListBlobs_Cancelled(t *testing.T) {
	store, root := newTestStore(t)
	writeBlob(t, root, DefaultContainer, "scans/a/b/nikto.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListBlobs(ctx, DefaultContainer)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore_Download(t *testing.T) {
	store, root := newTestStore(t)
	writeBlob(t, root, DefaultContainer, "scans/10.0.0.4/2025-09-07T09-20/nmap.xml", "<nmaprun/>")

	data, err := store.Download(context.Background(), DefaultContainer, "scans/10.0.0.4/2025-09-07T09-20/nmap.xml")
	require.NoError(t, err)
	assert.Equal(t, "<nmaprun/>", string(data))
}

func TestLocalStore_Download_Errors(t *testing.T) {
	store, root := newTestStore(t)
	writeBlob(t, root, DefaultContainer, "big.txt", string(make([]byte, 2048)))
	writeBlob(t, root, DefaultContainer, "scans/dir/file.txt", "x")

	tests := []struct {
		name string
		blob string
		is   error
	}{
		{"missing", "scans/10.0.0.4/none/nmap.xml", ErrNotFound},
		{"directory", "scans/dir", ErrNotFound},
		{"traversal", "../../etc/passwd", ErrInvalidInput},
		{"inner traversal", "scans/../../x", ErrInvalidInput},
		{"absolute", "/etc/passwd", ErrInvalidInput},
		{"empty", "", ErrInvalidInput},
		{"too large", "big.txt", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Download(context.Background(), DefaultContainer, tt.blob)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
		})
	}
}

func TestLocalStore_Closed(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.ListBlobs(context.Background(), DefaultContainer)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = store.Download(context.Background(), DefaultContainer, "x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen(t *testing.T) {
	store, err := Open(context.Background(), &Config{Root: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, store.Close())

	_, err = Open(context.Background(), nil)
	assert.True(t, IsInvalidInput(err))

	_, err = Open(context.Background(), &Config{})
	assert.True(t, IsInvalidInput(err))
}

func TestOpen_CustomFactory(t *testing.T) {
	orig := DefaultFactory
	t.Cleanup(func() { DefaultFactory = orig })

	var called bool
	DefaultFactory = func(ctx context.Context, cfg *Config) (BlobStore, error) {
		called = true
		return nil, errors.New("boom")
	}

	_, err := Open(context.Background(), &Config{Root: t.TempDir()})
	require.Error(t, err)
	assert.True(t, called)
	assert.Contains(t, err.Error(), "failed to create storage backend")
}

func TestConfigContext(t *testing.T) {
	cfg := &Config{Root: "/srv"}

	got, ok := ConfigFromContext(WithConfig(context.Background(), cfg))
	require.True(t, ok)
	assert.Same(t, cfg, got)

	_, ok = ConfigFromContext(context.Background())
	assert.False(t, ok)
}
