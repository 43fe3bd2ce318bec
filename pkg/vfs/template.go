package vfs

import (
	"fmt"
	"strings"
)

// templates splits a search path into its directory templates. Empty
// entries from leading, trailing, or doubled separators are skipped, so a
// separator-only string yields nothing.
func templates(path, sep string) []string {
	var out []string
	for _, t := range strings.Split(path, sep) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// expand substitutes name for every placeholder occurrence in tmpl. The
// accumulated length is checked against limit after each chunk; exceeding
// it fails with ErrTooLong. A template without a placeholder ignores the
// name entirely.
func expand(tmpl, name, mark string, limit int) (string, error) {
	var b strings.Builder
	rest := tmpl
	for {
		i := strings.Index(rest, mark)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		b.WriteString(name)
		rest = rest[i+len(mark):]
		if b.Len() > limit {
			return "", fmt.Errorf("vfs: expand %q: %w", tmpl, ErrTooLong)
		}
	}
	if b.Len() > limit {
		return "", fmt.Errorf("vfs: expand %q: %w", tmpl, ErrTooLong)
	}
	return b.String(), nil
}
