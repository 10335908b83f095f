package model

import "fmt"

// FileChange describes a single file the rewriter modified (or would modify
// on a dry run).
type FileChange struct {
	File  Path
	Lines int    // number of lines that changed
	Diff  string // unified diff, empty unless diffs were requested
}

// Result is the summary of one engine run over one tree.
type Result struct {
	Root          Path
	Classes       int
	Fields        int
	Methods       int
	FilesScanned  int
	FilesModified int
	DryRun        bool
	Tables        *Tables
}

// Renamed returns the total number of mapped identifiers.
func (r Result) Renamed() int {
	return r.Classes + r.Fields + r.Methods
}

func (r Result) String() string {
	verb := "renamed"
	if r.DryRun {
		verb = "would be renamed"
	}

	return fmt.Sprintf("%d classes, %d fields, %d methods %s across %d files",
		r.Classes, r.Fields, r.Methods, verb, r.FilesModified)
}

// MappingDocument is the persisted form of the rename tables of one or more
// runs.
type MappingDocument struct {
	Version int           `json:"version" yaml:"version"`
	RunID   string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Roots   []RootMapping `json:"roots" yaml:"roots"`
}

// RootMapping holds the rename tables of a single tree.
type RootMapping struct {
	Root    Path            `json:"root" yaml:"root"`
	Classes []Mapping       `json:"classes" yaml:"classes"`
	Fields  []ScopedMapping `json:"fields" yaml:"fields"`
	Methods []ScopedMapping `json:"methods" yaml:"methods"`
}

// NewRootMapping snapshots tables for root.
func NewRootMapping(root Path, tables *Tables) RootMapping {
	rm := RootMapping{Root: root}
	if tables == nil {
		return rm
	}

	rm.Classes = tables.Classes.Entries()
	rm.Fields = tables.Fields.Entries()
	rm.Methods = tables.Methods.Entries()

	return rm
}

// Tables rebuilds the rename tables from a persisted mapping. Owners are not
// persisted, so member-reference lookups are unavailable on the result.
func (rm RootMapping) Tables() *Tables {
	tables := NewTables()

	for _, e := range rm.Classes {
		tables.Classes.Put(e.Original, e.Replacement)
	}

	for _, e := range rm.Fields {
		tables.Fields.Put(e.File, e.Original, e.Replacement)
	}

	for _, e := range rm.Methods {
		tables.Methods.Put(e.File, e.Original, e.Replacement)
	}

	return tables
}
