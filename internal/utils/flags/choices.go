package flags

import (
	"fmt"
	"strings"
)

const (
	choiceUsageTemplate       = "%s (%s)"
	choiceSeparator           = "|"
	unsupportedChoiceTemplate = "unsupported --%s value %q (expected one of %s)"
)

// FormatChoiceUsage appends the accepted values to a flag usage string.
func FormatChoiceUsage(usage string, choices []string) string {
	if len(choices) == 0 {
		return usage
	}
	return fmt.Sprintf(choiceUsageTemplate, usage, strings.Join(choices, choiceSeparator))
}

// NormalizeChoice lowercases value and checks it against choices.
func NormalizeChoice(flagName string, value string, choices []string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	for _, choice := range choices {
		if normalizedValue == choice {
			return normalizedValue, nil
		}
	}
	return "", fmt.Errorf(unsupportedChoiceTemplate, flagName, value, strings.Join(choices, choiceSeparator))
}
