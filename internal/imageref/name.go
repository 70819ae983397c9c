package imageref

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// NameFromPath derives a default repository name from a build context
// path when the operator didn't pass one. Example:
//
//	/Users/ana/projects/acme/billing-api → acme_billing-api
//	/Users/ana/billing-api               → billing-api
//
// The home directory is trimmed, and the result contains only letters,
// digits, underscores, dots and hyphens.
func NameFromPath(contextPath string) string {
	const fallback = "unnamed-image"

	if contextPath == "" {
		return fallback
	}

	if strings.HasPrefix(contextPath, "~") {
		contextPath = strings.TrimPrefix(contextPath, "~")
		if home, err := os.UserHomeDir(); err == nil {
			contextPath = filepath.Join(home, contextPath)
		}
	}
	contextPath = filepath.Clean(contextPath)

	if home, err := os.UserHomeDir(); err == nil {
		if after, ok := strings.CutPrefix(contextPath, home); ok {
			contextPath = after
		}
	}

	parts := strings.FieldsFunc(contextPath, func(r rune) bool {
		return r == filepath.Separator
	})
	if len(parts) == 0 {
		return fallback
	}

	// Take up to two trailing dirs
	var elems []string
	if len(parts) >= 2 {
		elems = parts[len(parts)-2:]
	} else {
		elems = parts
	}

	name := sanitizeName(strings.Join(elems, "_"))
	if name == "" {
		return fallback
	}
	return name
}

// sanitizeName keeps only [a-z0-9_.-], lowercases, trims leading '.'/'-'/'_'.
// Returns "" if nothing valid remains.
func sanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			// else drop
		}
	}
	return strings.TrimLeft(b.String(), "._-")
}
