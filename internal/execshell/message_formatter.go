package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant         = "Running %s"
	completedMessageTemplateConstant       = "Completed %s"
	failedMessageTemplateConstant          = "%s failed with exit code %d"
	interruptedMessageTemplateConstant     = "%s interrupted by %s (exit code %d)"
	executionFailedMessageTemplateConstant = "%s failed: %v"
	workingDirectorySuffixTemplateConstant = "%s (in %s)"
	maximumDescribedScriptLengthConstant   = 120
	truncatedScriptEllipsisConstant        = "..."
)

// CommandMessageFormatter renders human-readable lifecycle messages.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.describe(command))
}

// BuildSuccessMessage describes a command that exited with status zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(completedMessageTemplateConstant, formatter.describe(command))
}

// BuildFailureMessage describes a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	if result.Interrupted() {
		return fmt.Sprintf(interruptedMessageTemplateConstant, formatter.describe(command), SignalName(result.Signal), result.ExitCode)
	}
	return fmt.Sprintf(failedMessageTemplateConstant, formatter.describe(command), result.ExitCode)
}

// BuildExecutionFailureMessage describes a command the shell could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, executionError error) string {
	return fmt.Sprintf(executionFailedMessageTemplateConstant, formatter.describe(command), executionError)
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) string {
	script := strings.TrimSpace(command.Script)
	if len(script) > maximumDescribedScriptLengthConstant {
		script = script[:maximumDescribedScriptLengthConstant] + truncatedScriptEllipsisConstant
	}
	if len(command.Details.WorkingDirectory) == 0 {
		return script
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, script, command.Details.WorkingDirectory)
}
