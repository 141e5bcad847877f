// Package cliutil provides utilities for CLI operations.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// StringList is a flag.Value collecting every occurrence of a repeatable flag.
type StringList []string

// String implements flag.Value.
func (l *StringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ", ")
}

// Set implements flag.Value.
func (l *StringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// SplitPairs parses "name<sep>value" items into ordered names and values.
// Surrounding whitespace is trimmed from both halves; a missing separator or
// an empty name is an error.
func SplitPairs(items []string, sep string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(items))
	for _, item := range items {
		name, value, ok := strings.Cut(item, sep)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid value %q: expected name%svalue", item, sep)
		}
		pairs = append(pairs, [2]string{name, strings.TrimSpace(value)})
	}
	return pairs, nil
}
