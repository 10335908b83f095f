package model

// DeclKind classifies a single listing line.
type DeclKind int

const (
	// DeclOther is any line that does not declare a type, field or method.
	DeclOther DeclKind = iota
	// DeclType is a `.class` line.
	DeclType
	// DeclField is a `.field` line.
	DeclField
	// DeclMethod is a `.method` line.
	DeclMethod
)

// String returns a lower-case label for the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case DeclType:
		return "type"
	case DeclField:
		return "field"
	case DeclMethod:
		return "method"
	case DeclOther:
		return "other"
	default:
		return "unknown"
	}
}

// Declaration is a classified listing line.
type Declaration struct {
	Kind DeclKind
	Raw  string
	Name string
	// Excluded is set for constructor and static initializer methods, which
	// are never renamed.
	Excluded bool
}
