package taskfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	headerTerminatorConstant         = ":"
	commentMarkerConstant            = "#"
	quietMarkerConstant              = "@"
	carriageReturnConstant           = "\r"
	indentationCharactersConstant    = " \t"
	reservedDefaultTaskNameConstant  = "default"
	maximumLineLengthBytesConstant   = 1024 * 1024
	initialLineBufferBytesConstant   = 64 * 1024
	quotedHeaderReasonConstant       = "quoted line at top level is not a task header"
	missingTerminatorReasonConstant  = "expected task header ending in ':'"
	missingTaskNameReasonConstant    = "task header has no name"
	invalidTaskNameReasonTemplate    = "invalid task name %q"
	reservedTaskNameReasonTemplate   = "task name %q is reserved"
	duplicateTaskReasonTemplate      = "duplicate task %q (first declared on line %d)"
	invalidParameterReasonTemplate   = "task %q: invalid parameter name %q"
	duplicateParameterReasonTemplate = "task %q: duplicate parameter %q"
	orphanCommandReasonConstant      = "command line outside of a task"
	mixedIndentationReasonTemplate   = "task %q: indentation mixes tabs and spaces"
	inconsistentIndentReasonTemplate = "task %q: inconsistent indentation"
	placeholderReasonTemplate        = "task %q: %v"
	undeclaredParamReasonTemplate    = "task %q: command references undeclared parameter %q"
	emptyQuietCommandReasonTemplate  = "task %q: quiet marker without a command"
	readFailureReasonConstant        = "unable to read definition source"
	openFailureReasonConstant        = "unable to open definition file"
)

var reservedTaskNames = map[string]struct{}{
	reservedDefaultTaskNameConstant: {},
}

// LoadFile opens and parses the definition file at path.
func LoadFile(path string) (Registry, error) {
	file, openError := os.Open(path)
	if openError != nil {
		return Registry{}, ParseError{Source: path, Reason: openFailureReasonConstant, Cause: openError}
	}
	defer file.Close()
	return Load(file, path)
}

// Load parses a definition source. sourceName is used in error messages.
func Load(reader io.Reader, sourceName string) (Registry, error) {
	parser := newDefinitionParser(sourceName)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, initialLineBufferBytesConstant), maximumLineLengthBytesConstant)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if lineError := parser.consume(lineNumber, strings.TrimSuffix(scanner.Text(), carriageReturnConstant)); lineError != nil {
			return Registry{}, lineError
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return Registry{}, ParseError{Source: sourceName, Line: lineNumber + 1, Reason: readFailureReasonConstant, Cause: scanError}
	}

	parser.finishTask()
	return newRegistry(sourceName, parser.definitions), nil
}

type definitionParser struct {
	sourceName         string
	definitions        []Definition
	declaredLines      map[string]int
	current            *Definition
	currentParameters  map[string]struct{}
	blockIndentation   string
	pendingDescription string
}

func newDefinitionParser(sourceName string) *definitionParser {
	return &definitionParser{
		sourceName:    sourceName,
		declaredLines: make(map[string]int),
	}
}

func (parser *definitionParser) consume(lineNumber int, line string) error {
	if len(strings.TrimSpace(line)) == 0 {
		parser.pendingDescription = ""
		return nil
	}

	contentStart := len(line) - len(strings.TrimLeft(line, indentationCharactersConstant))
	if contentStart == 0 {
		return parser.consumeTopLevel(lineNumber, line)
	}
	return parser.consumeCommand(lineNumber, line[:contentStart], line)
}

func (parser *definitionParser) consumeTopLevel(lineNumber int, line string) error {
	parser.finishTask()

	trimmed := strings.TrimRight(line, indentationCharactersConstant)
	if strings.HasPrefix(trimmed, commentMarkerConstant) {
		parser.pendingDescription = strings.TrimSpace(strings.TrimPrefix(trimmed, commentMarkerConstant))
		return nil
	}
	description := parser.pendingDescription
	parser.pendingDescription = ""

	if strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, `'`) {
		return parser.failure(lineNumber, quotedHeaderReasonConstant)
	}
	if !strings.HasSuffix(trimmed, headerTerminatorConstant) {
		return parser.failure(lineNumber, missingTerminatorReasonConstant)
	}

	fields := strings.Fields(strings.TrimSuffix(trimmed, headerTerminatorConstant))
	if len(fields) == 0 {
		return parser.failure(lineNumber, missingTaskNameReasonConstant)
	}

	taskName := fields[0]
	if !IsIdentifier(taskName) {
		return parser.failure(lineNumber, fmt.Sprintf(invalidTaskNameReasonTemplate, taskName))
	}
	if _, reserved := reservedTaskNames[taskName]; reserved {
		return parser.failure(lineNumber, fmt.Sprintf(reservedTaskNameReasonTemplate, taskName))
	}
	if firstLine, duplicate := parser.declaredLines[taskName]; duplicate {
		return parser.failure(lineNumber, fmt.Sprintf(duplicateTaskReasonTemplate, taskName, firstLine))
	}

	parameters := make([]string, 0, len(fields)-1)
	parameterSet := make(map[string]struct{}, len(fields)-1)
	for _, parameterName := range fields[1:] {
		if !IsIdentifier(parameterName) {
			return parser.failure(lineNumber, fmt.Sprintf(invalidParameterReasonTemplate, taskName, parameterName))
		}
		if _, duplicate := parameterSet[parameterName]; duplicate {
			return parser.failure(lineNumber, fmt.Sprintf(duplicateParameterReasonTemplate, taskName, parameterName))
		}
		parameterSet[parameterName] = struct{}{}
		parameters = append(parameters, parameterName)
	}

	parser.declaredLines[taskName] = lineNumber
	parser.current = &Definition{
		Name:        taskName,
		Parameters:  parameters,
		Description: description,
		Line:        lineNumber,
	}
	parser.currentParameters = parameterSet
	parser.blockIndentation = ""
	return nil
}

func (parser *definitionParser) consumeCommand(lineNumber int, indentation string, line string) error {
	if parser.current == nil {
		return parser.failure(lineNumber, orphanCommandReasonConstant)
	}
	taskName := parser.current.Name

	if len(parser.blockIndentation) == 0 {
		if strings.Contains(indentation, " ") && strings.Contains(indentation, "\t") {
			return parser.failure(lineNumber, fmt.Sprintf(mixedIndentationReasonTemplate, taskName))
		}
		parser.blockIndentation = indentation
	} else if !strings.HasPrefix(line, parser.blockIndentation) {
		return parser.failure(lineNumber, fmt.Sprintf(inconsistentIndentReasonTemplate, taskName))
	}

	text := strings.TrimRight(line[len(parser.blockIndentation):], indentationCharactersConstant)
	if strings.HasPrefix(strings.TrimSpace(text), commentMarkerConstant) {
		return nil
	}

	quiet := strings.HasPrefix(text, quietMarkerConstant)
	if quiet {
		text = strings.TrimPrefix(text, quietMarkerConstant)
		if len(strings.TrimSpace(text)) == 0 {
			return parser.failure(lineNumber, fmt.Sprintf(emptyQuietCommandReasonTemplate, taskName))
		}
	}

	referencedNames, placeholderError := Placeholders(text)
	if placeholderError != nil {
		return parser.failure(lineNumber, fmt.Sprintf(placeholderReasonTemplate, taskName, placeholderError))
	}
	for _, referencedName := range referencedNames {
		if _, declared := parser.currentParameters[referencedName]; !declared {
			return parser.failure(lineNumber, fmt.Sprintf(undeclaredParamReasonTemplate, taskName, referencedName))
		}
	}

	parser.current.Commands = append(parser.current.Commands, CommandLine{Text: text, Quiet: quiet, Line: lineNumber})
	return nil
}

func (parser *definitionParser) finishTask() {
	if parser.current == nil {
		return
	}
	parser.definitions = append(parser.definitions, *parser.current)
	parser.current = nil
	parser.currentParameters = nil
	parser.blockIndentation = ""
}

func (parser *definitionParser) failure(lineNumber int, reason string) error {
	return ParseError{Source: parser.sourceName, Line: lineNumber, Reason: reason}
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var parseError ParseError
	return errors.As(err, &parseError)
}
