package domain

import (
	"context"
	"log/slog"
	"strings"

	"deobf.dev/pkg/deobf/internal/adapter"
	m "deobf.dev/pkg/deobf/internal/model"
)

// Scanner builds the rename tables of a tree. It never modifies the tree.
type Scanner struct {
	fsAdapter adapter.SourceFSAdapter
	opts      Options
}

// NewScanner returns a Scanner reading through fsAdapter.
func NewScanner(fsAdapter adapter.SourceFSAdapter, opts Options) *Scanner {
	return &Scanner{fsAdapter: fsAdapter, opts: opts}
}

// Scan walks root and returns the populated tables and the number of listing
// files visited. Any read failure discards the partial tables.
func (s *Scanner) Scan(ctx context.Context, root m.Path, alloc *NameAllocator) (*m.Tables, int, error) {
	if err := validateRoot(ctx, s.fsAdapter, root); err != nil {
		return nil, 0, err
	}

	files, err := listingFiles(ctx, s.fsAdapter, root, s.opts)
	if err != nil {
		return nil, 0, &RunError{Phase: PhaseScan, Path: root, Err: err}
	}

	tables := m.NewTables()

	for _, file := range files {
		content, err := s.fsAdapter.ReadFile(ctx, file.FullPath)
		if err != nil {
			slog.Error("Failed to read listing", "path", file.FullPath, "error", err)
			return nil, 0, &RunError{Phase: PhaseScan, Path: file.FullPath, Err: err}
		}

		scanContent(tables, alloc, file.ShortPath, string(content))
	}

	slog.Debug("Scan finished", "root", root, "files", len(files),
		"classes", tables.Classes.Len(), "fields", tables.Fields.Len(), "methods", tables.Methods.Len())

	return tables, len(files), nil
}

func scanContent(tables *m.Tables, alloc *NameAllocator, file m.Path, content string) {
	for _, line := range strings.Split(content, "\n") {
		decl := ClassifyLine(line)

		switch decl.Kind {
		case m.DeclType:
			recordClass(tables, alloc, file, decl.Name)
		case m.DeclField:
			if IsShortName(decl.Name) && !tables.Fields.Contains(file, decl.Name) {
				tables.Fields.Put(file, decl.Name, alloc.NextFieldName())
			}
		case m.DeclMethod:
			if !decl.Excluded && IsShortName(decl.Name) && !tables.Methods.Contains(file, decl.Name) {
				tables.Methods.Put(file, decl.Name, alloc.NextMethodName())
			}
		case m.DeclOther:
		}
	}
}

func recordClass(tables *m.Tables, alloc *NameAllocator, file m.Path, descriptor string) {
	if descriptor == "" {
		return
	}

	if _, ok := tables.Owners[descriptor]; !ok {
		tables.Owners[descriptor] = file
	}

	if IsObfuscatedClassName(descriptor) && !tables.Classes.Contains(descriptor) {
		tables.Classes.Put(descriptor, ReplaceSimpleName(descriptor, alloc.NextClassName()))
	}
}
