package config

import "strings"

// Path locates a parameter from the configuration root as an ordered list of
// technical names. The root is the empty path.
type Path []string

// ParsePath converts a "/"-joined full name (with or without the leading
// slash) back into a Path.
func ParsePath(full string) Path {
	parts := strings.Split(full, "/")
	path := make(Path, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			path = append(path, p)
		}
	}
	return path
}

// String renders the path as an absolute "/"-joined name, e.g. "/group/field".
// This is the form used to key attribute maps and diff results.
func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}

// Child returns a new path extended by one level.
func (p Path) Child(name string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, name)
}

// Equal reports whether two paths name the same parameter.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
