package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"deobf.dev/pkg/deobf/internal/adapter"
	m "deobf.dev/pkg/deobf/internal/model"
)

// scenarioOne is a single listing declaring an obfuscated class, field and
// method that share the name "a".
const scenarioOne = `.class public La;
.super Ljava/lang/Object;

.field private a:I

.method public a()V
    .registers 2
    iget v0, p0, La;->a:I
    return-void
.end method
`

// writeTree creates files (relative path -> contents) under a fresh root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "smali")
	require.NoError(t, os.MkdirAll(root, 0o755))

	for rel, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}

	return root
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)

	return string(data)
}

var errInjected = errors.New("injected failure")

// failingFS fails reads or writes of files whose path ends with failOn.
type failingFS struct {
	*adapter.LocalSourceFSAdapter
	failOn    string
	failRead  bool
	failWrite bool
}

func newFailingFS(failOn string) *failingFS {
	return &failingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter(), failOn: failOn}
}

func (f *failingFS) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if f.failRead && strings.HasSuffix(string(path), f.failOn) {
		return nil, errInjected
	}

	return f.LocalSourceFSAdapter.ReadFile(ctx, path)
}

func (f *failingFS) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if f.failWrite && strings.HasSuffix(string(path), f.failOn) {
		return errInjected
	}

	return f.LocalSourceFSAdapter.WriteFile(ctx, path, content, perm)
}
