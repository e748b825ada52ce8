package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// languageNames maps the language tags the application actually uses to the
// wording the prompt should carry. Unknown tags fall back to the tag itself;
// the pipeline treats the tag as an opaque partition key either way.
var languageNames = map[string]string{
	"pt": "Portuguese (European Portugal variant, not Brazilian)",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
}

// LanguageName returns the prompt wording for a language tag.
func LanguageName(tag string) string {
	if name, ok := languageNames[tag]; ok {
		return name
	}
	return tag
}

// BuildNumberedPrompt builds the one-prompt-per-chunk request: each source
// string on its own numbered line, with instructions to reply in the same
// numbered format.
func BuildNumberedPrompt(texts []string, targetLang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following numbered list of texts to %s.\n", LanguageName(targetLang))
	b.WriteString("Keep any technical terms, brand names, and formatting intact.\n")
	b.WriteString("Return ONLY the translations in the same numbered format, one per line.\n")
	b.WriteString("Do not include any explanations or additional text.\n")
	b.WriteString("\nTexts to translate:\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, text)
	}
	return b.String()
}

var numberedLine = regexp.MustCompile(`^\s*(\d+)[.)]\s*(.*\S)\s*$`)

// ParseNumberedReply maps a numbered provider reply back onto the input
// positions. The returned slice always has expected length; a slot is empty
// when no reply line carried its number. Pure function, no I/O.
func ParseNumberedReply(reply string, expected int) []string {
	out := make([]string, expected)
	if expected == 0 {
		return out
	}

	position := 0
	for _, line := range strings.Split(reply, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			// Unnumbered line: take it positionally, like the reply had
			// kept the order but dropped the numbering.
			if position < expected && out[position] == "" {
				out[position] = stripQuotes(strings.TrimSpace(line))
				position++
			}
			continue
		}

		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > expected {
			continue
		}
		out[n-1] = stripQuotes(m[2])
		if n > position {
			position = n
		}
	}

	return out
}

// Complete reports whether every slot of a parsed reply is filled.
func Complete(parsed []string) bool {
	for _, s := range parsed {
		if s == "" {
			return false
		}
	}
	return true
}

// stripQuotes removes one matching pair of surrounding double quotes; some
// models quote each reply line even when the source was unquoted.
func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
