package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultExtension is the extension of bytecode-listing files.
const DefaultExtension = ".smali"

// Options tunes a single engine run. The zero value scans `.smali` files and
// rewrites exactly the occurrences described by the rename tables.
type Options struct {
	// Extension of listing files; DefaultExtension when empty.
	Extension string
	// Exclude drops files whose root-relative path matches any pattern.
	Exclude []*regexp.Regexp
	// MemberRefs also rewrites `Lowner;->name:` and `Lowner;->name(`
	// references whose owner class was declared in the scanned tree.
	MemberRefs bool
	// DryRun computes every rewrite but writes nothing.
	DryRun bool
	// Diff attaches a unified diff to each reported FileChange.
	Diff bool
}

func (o Options) extension() string {
	ext := strings.TrimSpace(o.Extension)
	if ext == "" {
		return DefaultExtension
	}

	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

func (o Options) excluded(shortPath string) bool {
	for _, re := range o.Exclude {
		if re.MatchString(shortPath) {
			return true
		}
	}

	return false
}

// CompileExcludes compiles user-supplied exclusion regexes.
func CompileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		out = append(out, re)
	}

	return out, nil
}
