package taskfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	placeholderOpeningConstant                 = "{{"
	unterminatedPlaceholderMessageConstant     = "unterminated placeholder"
	invalidPlaceholderMessageConstant          = "invalid placeholder"
	invalidPlaceholderDetailTemplateConstant   = "%w %q"
	identifierExpressionConstant               = `^[A-Za-z_][A-Za-z0-9_-]*$`
	placeholderExpressionConstant              = `\{\{\{\{|\{\{([^{}]*)\}\}`
	placeholderSubmatchIndexPairLengthConstant = 4
)

var (
	identifierPattern  = regexp.MustCompile(identifierExpressionConstant)
	placeholderPattern = regexp.MustCompile(placeholderExpressionConstant)

	// ErrUnterminatedPlaceholder indicates a "{{" without a matching "}}".
	ErrUnterminatedPlaceholder = errors.New(unterminatedPlaceholderMessageConstant)
	// ErrInvalidPlaceholder indicates braces that do not enclose an identifier.
	ErrInvalidPlaceholder = errors.New(invalidPlaceholderMessageConstant)
)

// IsIdentifier reports whether candidate is a valid task or parameter name.
func IsIdentifier(candidate string) bool {
	return identifierPattern.MatchString(candidate)
}

// Placeholders returns the parameter names referenced by text, in order of
// appearance and including repeats. "{{{{" is an escaped literal "{{" and
// never opens a placeholder.
func Placeholders(text string) ([]string, error) {
	names := []string{}
	for _, indexes := range placeholderPattern.FindAllStringSubmatchIndex(text, -1) {
		name, isPlaceholder := placeholderName(text, indexes)
		if !isPlaceholder {
			continue
		}
		if !IsIdentifier(name) {
			return nil, fmt.Errorf(invalidPlaceholderDetailTemplateConstant, ErrInvalidPlaceholder, text[indexes[0]:indexes[1]])
		}
		names = append(names, name)
	}

	remainder := placeholderPattern.ReplaceAllString(text, "")
	if strings.Contains(remainder, placeholderOpeningConstant) {
		return nil, ErrUnterminatedPlaceholder
	}
	return names, nil
}

// Expand replaces every placeholder whose name is present in values and
// collapses each "{{{{" escape to "{{". The replacement happens in a single
// pass: substituted values are not scanned again, and placeholders without a
// value are left as written.
func Expand(text string, values map[string]string) string {
	matchIndexes := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matchIndexes) == 0 {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	consumed := 0
	for _, indexes := range matchIndexes {
		matchStart, matchEnd := indexes[0], indexes[1]
		replacement := placeholderOpeningConstant
		if name, isPlaceholder := placeholderName(text, indexes); isPlaceholder {
			value, exists := values[name]
			if !exists {
				continue
			}
			replacement = value
		}
		builder.WriteString(text[consumed:matchStart])
		builder.WriteString(replacement)
		consumed = matchEnd
	}
	builder.WriteString(text[consumed:])
	return builder.String()
}

// placeholderName reports the trimmed name captured by a match, or false when
// the match is an escape.
func placeholderName(text string, indexes []int) (string, bool) {
	if len(indexes) < placeholderSubmatchIndexPairLengthConstant || indexes[2] < 0 {
		return "", false
	}
	return strings.TrimSpace(text[indexes[2]:indexes[3]]), true
}
