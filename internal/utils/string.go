package utils

import (
	"strings"
)

// NormalizeString replaces full-width characters with their half-width counterparts
// and trims leading/trailing spaces.
// Localized ipconfig output uses full-width colons and parentheses.
func NormalizeString(str string) string {
	replacer := strings.NewReplacer(
		"，", ",",
		"；", ";",
		"：", ":",
		"。", ".",
		"（", "(",
		"）", ")",
		"【", "[",
		"】", "]",
		" ", " ",
		"　", " ",
	)
	return strings.TrimSpace(replacer.Replace(str))
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
