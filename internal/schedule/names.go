package schedule

import (
	"strings"
	"unicode"
)

// NotDefined is shown where a responsible person is missing.
const NotDefined = "Not defined"

// particles are surname connectors skipped when picking initials.
var particles = map[string]bool{
	"da": true, "de": true, "do": true, "das": true, "dos": true,
	"di": true, "du": true, "del": true, "della": true,
	"van": true, "von": true, "der": true, "den": true,
	"e": true, "y": true, "la": true, "le": true,
}

// ShortenName abbreviates a full name to "First S. L." using the first and
// last surnames after dropping particles. A single remaining surname gives
// "First S."; a single token is returned unchanged and blank input yields "".
func ShortenName(fullName string) string {
	tokens := strings.Fields(fullName)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return tokens[0]
	}

	var surnames []string
	for _, tok := range tokens[1:] {
		if !particles[strings.ToLower(tok)] {
			surnames = append(surnames, tok)
		}
	}
	if len(surnames) == 0 {
		return tokens[0]
	}

	first := initial(surnames[0])
	if len(surnames) == 1 {
		return tokens[0] + " " + first + "."
	}
	return tokens[0] + " " + first + ". " + initial(surnames[len(surnames)-1]) + "."
}

// DisplayName is ShortenName with NotDefined substituted for blank names.
func DisplayName(fullName string) string {
	if s := ShortenName(fullName); s != "" {
		return s
	}
	return NotDefined
}

func initial(word string) string {
	for _, r := range word {
		return string(unicode.ToUpper(r))
	}
	return ""
}
