package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"deobf.dev/pkg/deobf/internal/adapter"
	m "deobf.dev/pkg/deobf/internal/model"
)

// validateRoot fails with ErrDirectoryNotFound unless root is an existing
// directory.
func validateRoot(ctx context.Context, fsAdapter adapter.SourceFSAdapter, root m.Path) error {
	info, err := fsAdapter.FileInfo(ctx, root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
		}

		return fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, root)
	}

	return nil
}

// listingFiles returns every listing file under root in lexical walk order.
func listingFiles(ctx context.Context, fsAdapter adapter.SourceFSAdapter, root m.Path, opts Options) ([]m.File, error) {
	ext := opts.extension()

	var files []m.File

	err := fsAdapter.Walk(ctx, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(info.Name(), ext) {
			return nil
		}

		rel, err := fsAdapter.RelPath(ctx, root, m.Path(path))
		if err != nil {
			return err
		}

		short := filepath.ToSlash(string(rel))
		if opts.excluded(short) {
			slog.Debug("Skipping excluded file", "path", short)
			return nil
		}

		files = append(files, m.File{FullPath: m.Path(path), ShortPath: m.Path(short)})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
