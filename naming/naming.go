// ABOUTME: Name derivation for generated code: snake_case instance names and PascalCase class names.
// ABOUTME: Validates product names as generated-code identifiers and rejects reserved words.
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrInvalidIdentifier is returned when a name cannot become an identifier.
	ErrInvalidIdentifier = errors.New("provided name is not a valid Python identifier")
	// ErrReservedWord is returned when a name is a reserved keyword of the target language.
	ErrReservedWord = errors.New("provided name is a reserved keyword in Python")
)

// identifierPattern allows spaces because names are converted to snake or
// pascal case before they are emitted.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_ ]*$`)

// reservedWords is the hard keyword list of the generated language.
var reservedWords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// ValidateIdentifier checks that name can be used to derive identifiers.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	if reservedWords[name] {
		return fmt.Errorf("%w: %q", ErrReservedWord, name)
	}
	return nil
}

var (
	upperRun  = regexp.MustCompile(`([A-Z]+)`)
	upperWord = regexp.MustCompile(`([A-Z][a-z]+)`)
	capChunk  = regexp.MustCompile(`[A-Z][^A-Z]*`)
	separator = regexp.MustCompile(`(_|-| )+`)
)

// SnakeCase converts "Research Agent", "ResearchAgent" and "research-agent"
// to "research_agent". Runs of capitals are kept together ("HTTPServer" ->
// "http_server").
func SnakeCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = upperRun.ReplaceAllString(s, " $1")
	s = upperWord.ReplaceAllString(s, " $1")
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}

// PascalCase converts "research agent" or "research_agent" to
// "ResearchAgent". Input that is already PascalCase is returned unchanged;
// input containing a separator never counts as already PascalCase.
func PascalCase(s string) string {
	if s != "" && !separator.MatchString(s) && s == joinCapitalized(splitKeepingCapitals(s)) {
		return s
	}
	words := strings.Fields(separator.ReplaceAllString(s, " "))
	return joinCapitalized(words)
}

// splitKeepingCapitals splits s before every capital letter, keeping the
// leading fragment when s does not start with one.
func splitKeepingCapitals(s string) []string {
	var parts []string
	last := 0
	for _, loc := range capChunk.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}
	return parts
}

func joinCapitalized(words []string) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(Capitalize(w))
	}
	return b.String()
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
