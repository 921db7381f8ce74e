package taskfile

import (
	"errors"
	"fmt"
)

const (
	parseErrorTemplateConstant            = "%s:%d: %s"
	parseErrorWithoutLineTemplateConstant = "%s: %s"
	notFoundErrorTemplateConstant         = "task %q not found"
	definitionNotFoundMessageConstant     = "no task definition file found"
)

// ErrDefinitionNotFound indicates that Locate found no definition file.
var ErrDefinitionNotFound = errors.New(definitionNotFoundMessageConstant)

// ParseError reports a malformed definition source.
type ParseError struct {
	Source string
	Line   int
	Reason string
	Cause  error
}

// Error describes the failure with its source position.
func (parseError ParseError) Error() string {
	if parseError.Line <= 0 {
		return fmt.Sprintf(parseErrorWithoutLineTemplateConstant, parseError.Source, parseError.Reason)
	}
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Source, parseError.Line, parseError.Reason)
}

// Unwrap exposes the underlying I/O failure, if any.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

// NotFoundError reports a lookup of an unknown task name.
type NotFoundError struct {
	TaskName string
}

// Error describes the missing task.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundErrorTemplateConstant, notFoundError.TaskName)
}
