// Package runner executes resolved task commands and tracks each invocation
// from parsing to termination.
package runner

import (
	"errors"
	"fmt"
	"os"

	"github.com/tyemirov/taskr/internal/execshell"
	"github.com/tyemirov/taskr/internal/resolver"
	"github.com/tyemirov/taskr/internal/taskfile"
)

// Status is the terminal outcome of an invocation.
type Status string

// Terminal statuses.
const (
	StatusSuccess            Status = "success"
	StatusFailure            Status = "failure"
	StatusNotFound           Status = "not-found"
	StatusMalformedArguments Status = "malformed-arguments"
	StatusParseError         Status = "parse-error"
	StatusInterrupted        Status = "interrupted"
	StatusListed             Status = "listed"
	StatusRunnerError        Status = "runner-error"
)

// Process exit codes for outcomes that are not a child's own status.
const (
	ExitCodeSuccess  = 0
	ExitCodeNotFound = 1
	ExitCodeArity    = 2
	ExitCodeParse    = 3
	ExitCodeUsage    = 4
)

const (
	childFailureErrorTemplate = "task %q failed: command %q exited with code %d"
	interruptedErrorTemplate  = "task %q interrupted by %s"
)

// Result is the outcome of running, or failing to run, one task.
type Result struct {
	TaskName    string
	Status      Status
	ExitCode    int
	CommandsRun int
}

// ChildFailureError reports a command that exited with a non-zero status.
type ChildFailureError struct {
	TaskName string
	Command  string
	Line     int
	ExitCode int
}

func (failureError ChildFailureError) Error() string {
	return fmt.Sprintf(childFailureErrorTemplate, failureError.TaskName, failureError.Command, failureError.ExitCode)
}

// InterruptedError reports a task stopped by SIGINT or SIGTERM.
type InterruptedError struct {
	TaskName string
	Signal   os.Signal
}

func (interruptedError InterruptedError) Error() string {
	return fmt.Sprintf(interruptedErrorTemplate, interruptedError.TaskName, execshell.SignalName(interruptedError.Signal))
}

// ExitCode returns 128 plus the signal number.
func (interruptedError InterruptedError) ExitCode() int {
	return execshell.ExitCodeForSignal(interruptedError.Signal)
}

// UsageError wraps invalid flags or configuration.
type UsageError struct {
	Cause error
}

func (usageError UsageError) Error() string {
	return usageError.Cause.Error()
}

func (usageError UsageError) Unwrap() error {
	return usageError.Cause
}

// ExitCode maps an error returned anywhere in an invocation to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var childFailure ChildFailureError
	if errors.As(err, &childFailure) {
		return childFailure.ExitCode
	}
	var interrupted InterruptedError
	if errors.As(err, &interrupted) {
		return interrupted.ExitCode()
	}
	var executionError execshell.CommandExecutionError
	if errors.As(err, &executionError) {
		return execshell.ShellNotStartableExitCode
	}

	switch StatusForError(err) {
	case StatusNotFound:
		return ExitCodeNotFound
	case StatusMalformedArguments:
		return ExitCodeArity
	case StatusParseError:
		return ExitCodeParse
	default:
		return ExitCodeUsage
	}
}

// StatusForError classifies an error into a terminal status.
func StatusForError(err error) Status {
	if err == nil {
		return StatusSuccess
	}

	var notFound taskfile.NotFoundError
	var arity resolver.ArityError
	var childFailure ChildFailureError
	var interrupted InterruptedError
	switch {
	case errors.As(err, &notFound):
		return StatusNotFound
	case errors.As(err, &arity):
		return StatusMalformedArguments
	case taskfile.IsParseError(err), errors.Is(err, taskfile.ErrDefinitionNotFound):
		return StatusParseError
	case errors.As(err, &childFailure):
		return StatusFailure
	case errors.As(err, &interrupted):
		return StatusInterrupted
	default:
		return StatusRunnerError
	}
}
