package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	lineBreakRegex = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRegex       = regexp.MustCompile(`<[^>]*>`)
	hexRefRegex    = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);`)
	decRefRegex    = regexp.MustCompile(`&#([0-9]+);`)

	// One pass, &amp; first: "&amp;lt;" must come out as "&lt;", not "<".
	namedEntities = strings.NewReplacer(
		"&amp;", "&",
		"&quot;", `"`,
		"&apos;", "'",
		"&lt;", "<",
		"&gt;", ">",
	)
)

// HTMLToLines converts lyrics container markup to display lines. Line
// breaks become newlines, tags are dropped, character references are
// decoded, and blank lines and section headers ("[Chorus]") are skipped.
func HTMLToLines(markup string) []string {
	text := lineBreakRegex.ReplaceAllString(markup, "\n")
	text = tagRegex.ReplaceAllString(text, "")
	text = decodeNumericRefs(text, hexRefRegex, 16)
	text = decodeNumericRefs(text, decRefRegex, 10)
	text = namedEntities.Replace(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func decodeNumericRefs(text string, re *regexp.Regexp, base int) string {
	return re.ReplaceAllStringFunc(text, func(ref string) string {
		digits := re.FindStringSubmatch(ref)[1]
		code, err := strconv.ParseInt(digits, base, 32)
		if err != nil || code == 0 || !utf8.ValidRune(rune(code)) {
			return ref
		}
		return string(rune(code))
	})
}
