package model

// Kind identifies which rename table an identifier belongs to.
type Kind string

const (
	// KindClass is a type name, scoped to the whole tree.
	KindClass Kind = "class"
	// KindField is a field name, scoped to its declaring file.
	KindField Kind = "field"
	// KindMethod is a method name, scoped to its declaring file.
	KindMethod Kind = "method"
)

// Mapping is a single original -> replacement pair.
type Mapping struct {
	Original    string `json:"original" yaml:"original"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// ScopedMapping is a Mapping bound to the file that declares it.
type ScopedMapping struct {
	File        Path   `json:"file" yaml:"file"`
	Original    string `json:"original" yaml:"original"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// RenameTable maps original names to replacements. Keys are unique and keep
// their insertion order.
type RenameTable struct {
	keys   []string
	values map[string]string
}

// NewRenameTable returns an empty table.
func NewRenameTable() *RenameTable {
	return &RenameTable{values: make(map[string]string)}
}

// Put inserts original -> replacement. It reports false and leaves the table
// untouched when original is already present.
func (t *RenameTable) Put(original, replacement string) bool {
	if _, ok := t.values[original]; ok {
		return false
	}

	t.keys = append(t.keys, original)
	t.values[original] = replacement

	return true
}

// Get returns the replacement for original.
func (t *RenameTable) Get(original string) (string, bool) {
	if t == nil {
		return "", false
	}

	v, ok := t.values[original]

	return v, ok
}

// Contains reports whether original is a key.
func (t *RenameTable) Contains(original string) bool {
	_, ok := t.Get(original)
	return ok
}

// Len returns the number of entries.
func (t *RenameTable) Len() int {
	if t == nil {
		return 0
	}

	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t *RenameTable) Keys() []string {
	if t == nil {
		return nil
	}

	return append([]string(nil), t.keys...)
}

// Entries returns all pairs in insertion order.
func (t *RenameTable) Entries() []Mapping {
	if t == nil {
		return nil
	}

	out := make([]Mapping, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, Mapping{Original: k, Replacement: t.values[k]})
	}

	return out
}

// ScopedTable is a set of per-file rename tables. Two files may map the same
// original name to different replacements.
type ScopedTable struct {
	files  []Path
	byFile map[Path]*RenameTable
}

// NewScopedTable returns an empty scoped table.
func NewScopedTable() *ScopedTable {
	return &ScopedTable{byFile: make(map[Path]*RenameTable)}
}

// Put inserts (file, original) -> replacement unless the pair already exists.
func (s *ScopedTable) Put(file Path, original, replacement string) bool {
	table, ok := s.byFile[file]
	if !ok {
		table = NewRenameTable()
		s.byFile[file] = table
		s.files = append(s.files, file)
	}

	return table.Put(original, replacement)
}

// Get returns the replacement for original within file.
func (s *ScopedTable) Get(file Path, original string) (string, bool) {
	return s.Scope(file).Get(original)
}

// Contains reports whether (file, original) is a key.
func (s *ScopedTable) Contains(file Path, original string) bool {
	return s.Scope(file).Contains(original)
}

// Scope returns the table for file, or nil when file declares nothing.
func (s *ScopedTable) Scope(file Path) *RenameTable {
	if s == nil {
		return nil
	}

	return s.byFile[file]
}

// Files returns the scopes in insertion order.
func (s *ScopedTable) Files() []Path {
	if s == nil {
		return nil
	}

	return append([]Path(nil), s.files...)
}

// Len returns the total number of entries across all files.
func (s *ScopedTable) Len() int {
	if s == nil {
		return 0
	}

	n := 0
	for _, table := range s.byFile {
		n += table.Len()
	}

	return n
}

// Entries flattens the table in scope insertion order.
func (s *ScopedTable) Entries() []ScopedMapping {
	if s == nil {
		return nil
	}

	out := make([]ScopedMapping, 0, s.Len())

	for _, file := range s.files {
		for _, e := range s.byFile[file].Entries() {
			out = append(out, ScopedMapping{File: file, Original: e.Original, Replacement: e.Replacement})
		}
	}

	return out
}

// Tables groups the three rename tables of one run.
type Tables struct {
	Classes *RenameTable
	Fields  *ScopedTable
	Methods *ScopedTable
	// Owners records the file that declares each class descriptor, so member
	// references of the form `Lowner;->name` can find the owner's scope.
	Owners map[string]Path
}

// NewTables returns empty tables.
func NewTables() *Tables {
	return &Tables{
		Classes: NewRenameTable(),
		Fields:  NewScopedTable(),
		Methods: NewScopedTable(),
		Owners:  make(map[string]Path),
	}
}

// Empty reports whether no table holds an entry.
func (t *Tables) Empty() bool {
	return t == nil || (t.Classes.Len() == 0 && t.Fields.Len() == 0 && t.Methods.Len() == 0)
}
