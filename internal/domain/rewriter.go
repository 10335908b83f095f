package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"deobf.dev/pkg/deobf/internal/adapter"
	m "deobf.dev/pkg/deobf/internal/model"
)

const diffContextLines = 2

// primitiveTypes are the one-letter type descriptors that may directly
// precede a class descriptor in a signature, as in `(ILa;)V`.
const primitiveTypes = "ZBSCIJFDV"

// ChangeSink receives one record per file the rewriter changed.
type ChangeSink func(change m.FileChange) error

// Rewriter applies rename tables to a tree in place.
type Rewriter struct {
	fsAdapter adapter.SourceFSAdapter
	opts      Options
	sink      ChangeSink
}

// NewRewriter returns a Rewriter. sink may be nil.
func NewRewriter(fsAdapter adapter.SourceFSAdapter, opts Options, sink ChangeSink) *Rewriter {
	return &Rewriter{fsAdapter: fsAdapter, opts: opts, sink: sink}
}

// Rewrite walks root and rewrites every listing file touched by tables. It
// returns the number of files modified (or that would be, on a dry run). The
// first read or write failure aborts the walk; files already written stay
// written.
func (r *Rewriter) Rewrite(ctx context.Context, root m.Path, tables *m.Tables) (int, error) {
	files, err := listingFiles(ctx, r.fsAdapter, root, r.opts)
	if err != nil {
		return 0, &RunError{Phase: PhaseRewrite, Path: root, Err: err}
	}

	modified := 0

	for _, file := range files {
		changed, err := r.rewriteFile(ctx, file, tables)
		if err != nil {
			slog.Error("Failed to rewrite listing", "path", file.FullPath, "error", err)
			return modified, &RunError{Phase: PhaseRewrite, Path: file.FullPath, Err: err}
		}

		if changed {
			modified++
		}
	}

	return modified, nil
}

func (r *Rewriter) rewriteFile(ctx context.Context, file m.File, tables *m.Tables) (bool, error) {
	content, err := r.fsAdapter.ReadFile(ctx, file.FullPath)
	if err != nil {
		return false, err
	}

	fr := newFileRewriter(tables, file.ShortPath, r.opts.MemberRefs)
	original := string(content)

	if !fr.mayApply(original) {
		return false, nil
	}

	lines := strings.Split(original, "\n")
	changedLines := 0

	for i, line := range lines {
		rewritten := fr.rewriteLine(line)
		if rewritten != line {
			lines[i] = rewritten
			changedLines++
		}
	}

	if changedLines == 0 {
		return false, nil
	}

	updated := strings.Join(lines, "\n")

	if !r.opts.DryRun {
		info, err := r.fsAdapter.FileInfo(ctx, file.FullPath)
		if err != nil {
			return false, err
		}

		if err := r.fsAdapter.WriteFile(ctx, file.FullPath, []byte(updated), info.Mode().Perm()); err != nil {
			return false, err
		}
	}

	slog.Debug("Rewrote listing", "path", file.ShortPath, "lines", changedLines, "dryRun", r.opts.DryRun)

	if r.sink == nil {
		return true, nil
	}

	change := m.FileChange{File: file.ShortPath, Lines: changedLines}
	if r.opts.Diff {
		change.Diff, err = unifiedDiff(string(file.ShortPath), original, updated)
		if err != nil {
			return true, fmt.Errorf("diff: %w", err)
		}
	}

	if err := r.sink(change); err != nil {
		return true, fmt.Errorf("record change: %w", err)
	}

	return true, nil
}

func unifiedDiff(name, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  diffContextLines,
	})
}

// fileRewriter holds the tables that apply to one file.
type fileRewriter struct {
	tables     *m.Tables
	classes    *m.RenameTable
	fields     *m.RenameTable
	methods    *m.RenameTable
	memberRefs bool
}

func newFileRewriter(tables *m.Tables, file m.Path, memberRefs bool) *fileRewriter {
	return &fileRewriter{
		tables:     tables,
		classes:    tables.Classes,
		fields:     tables.Fields.Scope(file),
		methods:    tables.Methods.Scope(file),
		memberRefs: memberRefs && (tables.Fields.Len() > 0 || tables.Methods.Len() > 0),
	}
}

// mayApply reports whether content contains any key that could apply to it.
func (fr *fileRewriter) mayApply(content string) bool {
	if fr.memberRefs && strings.Contains(content, "->") {
		return true
	}

	for _, tbl := range []*m.RenameTable{fr.classes, fr.fields, fr.methods} {
		for _, key := range tbl.Keys() {
			if strings.Contains(content, key) {
				return true
			}
		}
	}

	return false
}

// gate selects the scoped names whose declaration-style occurrence appears in
// line: a leading space followed by one of the given terminators.
func gate(table *m.RenameTable, line string, terminators ...string) map[string]string {
	var active map[string]string

	for _, e := range table.Entries() {
		for _, term := range terminators {
			if strings.Contains(line, " "+e.Original+term) {
				if active == nil {
					active = make(map[string]string)
				}

				active[e.Original] = e.Replacement

				break
			}
		}
	}

	return active
}

// rewriteLine computes every substitution against the original line in a
// single left-to-right pass. Class descriptors are matched as whole `L...;`
// units, fields and methods as whole identifier tokens, so a replacement is
// never itself rewritten.
func (fr *fileRewriter) rewriteLine(line string) string {
	fields := gate(fr.fields, line, " ", ":")
	methods := gate(fr.methods, line, "(")
	refs := fr.memberRefs && strings.Contains(line, "->")

	if fr.classes.Len() == 0 && len(fields) == 0 && len(methods) == 0 && !refs {
		return line
	}

	var b strings.Builder
	b.Grow(len(line) + 16)

	for i := 0; i < len(line); {
		c := line[i]

		if c == 'L' && (i == 0 || line[i-1] != '/') {
			if end := descriptorEnd(line, i); end > 0 {
				desc := line[i:end]
				if repl, ok := fr.classes.Get(desc); ok {
					b.WriteString(repl)
				} else {
					b.WriteString(desc)
				}

				i = end

				if refs {
					if next, repl, ok := fr.memberRef(line, i, desc); ok {
						b.WriteString("->")
						b.WriteString(repl)

						i = next
					}
				}

				continue
			}
		}

		if k := primitivePrefix(line, i); k > 0 {
			b.WriteString(line[i : i+k])

			i += k

			continue
		}

		if isIdentByte(c) {
			end := identEnd(line, i)
			b.WriteString(replaceToken(line[i:end], byteAt(line, end), fields, methods))

			i = end

			continue
		}

		b.WriteByte(c)
		i++
	}

	return b.String()
}

// memberRef resolves `->name:` or `->name(` at line[i:] against the tables of
// the file declaring owner.
func (fr *fileRewriter) memberRef(line string, i int, owner string) (int, string, bool) {
	if !strings.HasPrefix(line[i:], "->") {
		return 0, "", false
	}

	start := i + 2
	end := identEnd(line, start)

	if end == start || end >= len(line) {
		return 0, "", false
	}

	file, ok := fr.tables.Owners[owner]
	if !ok {
		return 0, "", false
	}

	name := line[start:end]

	var repl string

	switch line[end] {
	case ':':
		repl, ok = fr.tables.Fields.Get(file, name)
	case '(':
		repl, ok = fr.tables.Methods.Get(file, name)
	default:
		ok = false
	}

	return end, repl, ok
}

func replaceToken(tok string, next byte, fields, methods map[string]string) string {
	if next == '(' {
		if repl, ok := methods[tok]; ok {
			return repl
		}
	}

	if repl, ok := fields[tok]; ok {
		return repl
	}

	return tok
}

// descriptorEnd returns the index just past the ';' closing the internal
// class name that starts at line[i], or -1.
func descriptorEnd(line string, i int) int {
	j := i + 1
	for j < len(line) && (isIdentByte(line[j]) || line[j] == '/' || line[j] == '-') {
		j++
	}

	if j == i+1 || j >= len(line) || line[j] != ';' {
		return -1
	}

	return j + 1
}

// primitivePrefix returns the length of the run of primitive type letters at
// line[i] when a class descriptor follows it directly, or 0.
func primitivePrefix(line string, i int) int {
	j := i
	for j < len(line) && strings.IndexByte(primitiveTypes, line[j]) >= 0 {
		j++
	}

	if j == i || j >= len(line) || line[j] != 'L' || descriptorEnd(line, j) < 0 {
		return 0
	}

	return j - i
}

func identEnd(line string, i int) int {
	for i < len(line) && isIdentByte(line[i]) {
		i++
	}

	return i
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '$' || c >= 0x80
}

func byteAt(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}

	return 0
}
