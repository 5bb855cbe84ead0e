package text

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Decode resolves HTML entities upstream embeds in display names.
func Decode(value string) string {
	return html.UnescapeString(value)
}

// Description sanitizes free-form upstream copy for display: entities
// decoded, markup stripped, whitespace collapsed, and a terminal full
// stop guaranteed.
func Description(value string) string {
	value = Decode(value)
	value = tagRegex.ReplaceAllString(value, " ")
	value = whitespaceRegex.ReplaceAllString(value, " ")
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	switch value[len(value)-1] {
	case '.', '!', '?':
		return value
	}
	return value + "."
}

// Possessive forms the possessive of a name, dropping the trailing s
// where English does.
func Possessive(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasSuffix(name, "s") || strings.HasSuffix(name, "S") {
		return name + "'"
	}
	return name + "'s"
}
