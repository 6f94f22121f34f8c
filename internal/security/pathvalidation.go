// Package security validates user-supplied names before they reach the
// filesystem.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxComponentLen bounds a single path component, matching common
// filesystem limits.
const maxComponentLen = 255

// ValidatePathComponent checks that s can be used verbatim as exactly one
// path component: non-empty, not "." or "..", no separators, no NUL and no
// surrounding whitespace.
func ValidatePathComponent(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("path component is empty")
	case s == "." || s == "..":
		return fmt.Errorf("path component %q is not allowed", s)
	case len(s) > maxComponentLen:
		return fmt.Errorf("path component too long: %d bytes (max %d)", len(s), maxComponentLen)
	case strings.TrimSpace(s) != s:
		return fmt.Errorf("path component %q has leading or trailing whitespace", s)
	case strings.ContainsAny(s, `/\`+"\x00"):
		return fmt.Errorf("path component %q contains a separator or NUL", s)
	}
	return nil
}

// JoinWithin joins rel onto root and rejects results that escape root.
// The check is lexical; root need not exist yet.
func JoinWithin(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %s must be relative to %s", rel, root)
	}
	joined := filepath.Join(root, rel)

	relPath, err := filepath.Rel(filepath.Clean(root), joined)
	if err != nil {
		return "", fmt.Errorf("path is outside output directory: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s attempts to escape %s", rel, root)
	}
	return joined, nil
}
