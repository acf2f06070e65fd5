// Package human provides types that parse and format human-friendly
// representations of the values found in configuration files and on the
// command line: file system paths, byte sizes, and rates.
//
// Each type implements flag.Value and the text and yaml (un)marshaling
// interfaces, so it can be used directly in flag sets and configuration
// structs:
//
//	type bufferConfig struct {
//		Size human.Bytes `yaml:"size"`
//		Rate human.Rate  `yaml:"rate"`
//	}
package human

import (
	"fmt"
	"strings"
	"unicode"
)

// parseUnit splits s into its numeric head and the trailing unit, which is
// made of letters only.
func parseUnit(s string) (head, unit string) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if i < 0 {
		return s, ""
	}
	return strings.TrimRightFunc(s[:i+1], unicode.IsSpace), s[i+1:]
}

// match reports whether s is a case-insensitive prefix of pattern.
func match(s, pattern string) bool {
	return len(s) <= len(pattern) && strings.EqualFold(s, pattern[:len(s)])
}

func ftoa(value, scale float64) string {
	if value == 0 {
		return "0"
	}
	if value < 0 {
		return "-" + ftoa(-value, scale)
	}

	var format string
	switch {
	case (value / scale) >= 100:
		format = "%.0f"
	case (value / scale) >= 10:
		format = "%.1f"
	case scale > 1:
		format = "%.2f"
	default:
		format = "%.3f"
	}

	s := fmt.Sprintf(format, value/scale)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}
