package domain

import (
	"strings"

	m "deobf.dev/pkg/deobf/internal/model"
)

const (
	classDirective  = ".class"
	fieldDirective  = ".field"
	methodDirective = ".method"

	constructorName       = "<init>"
	staticInitializerName = "<clinit>"
)

// ClassifyLine classifies one listing line. The line is trimmed first; type
// declarations win over fields, and fields over methods.
func ClassifyLine(line string) m.Declaration {
	trimmed := strings.TrimSpace(line)
	parts := strings.Fields(trimmed)

	decl := m.Declaration{Kind: m.DeclOther, Raw: line}
	if len(parts) == 0 {
		return decl
	}

	switch parts[0] {
	case classDirective:
		decl.Kind = m.DeclType
		if len(parts) > 1 {
			decl.Name = parts[len(parts)-1]
		}
	case fieldDirective:
		decl.Kind = m.DeclField
		decl.Name = nameBefore(parts[1:], ':')
	case methodDirective:
		decl.Kind = m.DeclMethod
		decl.Excluded = strings.Contains(trimmed, constructorName) || strings.Contains(trimmed, staticInitializerName)
		decl.Name = nameBefore(parts[1:], '(')
	}

	return decl
}

// nameBefore returns the text before sep in the first part that contains it.
func nameBefore(parts []string, sep byte) string {
	for _, part := range parts {
		if i := strings.IndexByte(part, sep); i >= 0 {
			return part[:i]
		}
	}

	return ""
}
