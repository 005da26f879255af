package tree

import "strings"

// Separator splits path segments in command operands.
const Separator = "/"

// Path is an ordered list of segment names walked from a node downwards.
type Path []string

// SplitPath turns a slash separated operand into a Path.
// Empty segments from leading, trailing or doubled slashes are dropped
// unless keepEmpty is set, in which case they are kept as literal "" names.
func SplitPath(raw string, keepEmpty bool) Path {
	parts := strings.Split(raw, Separator)
	if keepEmpty {
		return Path(parts)
	}
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			p = append(p, part)
		}
	}
	return p
}

// String re-joins the segments with the separator.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// Base returns the final segment, or "" for an empty path.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns every segment but the last. The parent of an empty path is empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1]
}

// HasPrefix reports whether prefix names p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Child returns a new path with name appended; p is left untouched.
func (p Path) Child(name string) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, name)
}
