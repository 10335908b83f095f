package domain

import "strings"

const maxObfuscatedLen = 2

// IsShortName reports whether name looks machine-renamed: one or two
// lower-case ASCII letters.
func IsShortName(name string) bool {
	if len(name) == 0 || len(name) > maxObfuscatedLen {
		return false
	}

	for i := 0; i < len(name); i++ {
		if name[i] < 'a' || name[i] > 'z' {
			return false
		}
	}

	return true
}

// IsObfuscatedClassName reports whether descriptor is an internal class name
// (`Lpkg/Name;`) whose simple name passes IsShortName.
func IsObfuscatedClassName(descriptor string) bool {
	simple, ok := SimpleName(descriptor)
	return ok && IsShortName(simple)
}

// SimpleName returns the segment after the last '/' of an internal class name.
func SimpleName(descriptor string) (string, bool) {
	if len(descriptor) < 3 || descriptor[0] != 'L' || descriptor[len(descriptor)-1] != ';' {
		return "", false
	}

	body := descriptor[1 : len(descriptor)-1]

	return body[strings.LastIndexByte(body, '/')+1:], true
}

// ReplaceSimpleName swaps the simple name of descriptor, keeping its package
// path: ReplaceSimpleName("Lcom/x/a;", "DeobfClass1") == "Lcom/x/DeobfClass1;".
func ReplaceSimpleName(descriptor, simple string) string {
	body := descriptor[1 : len(descriptor)-1]
	pkg := body[:strings.LastIndexByte(body, '/')+1]

	return "L" + pkg + simple + ";"
}
