package utils

// IsWordRune reports whether r belongs to a hover word, [A-Za-z0-9_].
func IsWordRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}

// WordAt returns the [A-Za-z0-9_]+ run touching character column col of line.
// A cursor sitting right after a word still selects it. Columns count runes.
func WordAt(line string, col int) string {
	runes := []rune(line)
	if col < 0 || col > len(runes) {
		return ""
	}

	start, end := col, col
	for start > 0 && IsWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && IsWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}
