package util

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// illegalNagiosChars mirrors Nagios' default illegal_object_name_chars plus whitespace.
var illegalNagiosChars = regexp.MustCompile("[`~!$%^&*|'\"<>?,()=\\s]+")

// NagiosName converts a string into a valid Nagios object name.
func NagiosName(s string) string {
	s = strings.TrimSpace(s)
	s = illegalNagiosChars.ReplaceAllString(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// NagiosNames applies NagiosName to every element.
func NagiosNames(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = NagiosName(s)
	}
	return out
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
