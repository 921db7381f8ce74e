package execshell

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandStartMessageConstant               = "command execution starting"
	commandSuccessMessageConstant             = "command execution completed"
	commandFailureMessageConstant             = "command returned non-zero status"
	commandRunnerErrorMessageConstant         = "command execution error"
	commandScriptFieldNameConstant            = "command"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	signalFieldNameConstant                   = "signal"
)

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand is one command line handed to the shell as a single opaque string.
type ShellCommand struct {
	Script  string
	Details CommandDetails
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	ExitCode int
	// Signal is the last signal forwarded to the child, or nil.
	Signal os.Signal
}

// Interrupted reports whether a signal was forwarded while the command ran.
func (result ExecutionResult) Interrupted() bool {
	return result.Signal != nil
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor orchestrates running shell commands with logging.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError provides details about commands exiting with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

const (
	commandFailureErrorMessageTemplateConstant     = "command %q exited with code %d"
	commandInterruptedErrorMessageTemplateConstant = "command %q interrupted by %s"
)

// Error describes the failure in a readable format.
func (commandError CommandFailedError) Error() string {
	if commandError.Result.Interrupted() {
		return fmt.Sprintf(commandInterruptedErrorMessageTemplateConstant, commandError.Command.Script, SignalName(commandError.Result.Signal))
	}
	return fmt.Sprintf(commandFailureErrorMessageTemplateConstant, commandError.Command.Script, commandError.Result.ExitCode)
}

// CommandExecutionError wraps failures to start or wait for the shell.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

const commandExecutionErrorMessageTemplateConstant = "unable to execute command %q: %v"

// Error describes the underlying runner failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.Script, executionError.Cause)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
	}, nil
}

// Execute runs the provided shell command and logs lifecycle events.
// A non-zero exit yields CommandFailedError together with the result. An
// empty script is handed to the shell like any other, which exits zero.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
	} else {
		executor.logger.Info(commandStartMessageConstant,
			zap.String(commandScriptFieldNameConstant, command.Script),
			zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
		)
	}

	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	if runnerError != nil {
		if executor.humanReadableLogging {
			executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, runnerError))
		} else {
			executor.logger.Error(commandRunnerErrorMessageConstant,
				zap.String(commandScriptFieldNameConstant, command.Script),
				zap.Error(runnerError),
			)
		}
		return executionResult, CommandExecutionError{Command: command, Cause: runnerError}
	}

	if executionResult.ExitCode != 0 {
		if executor.humanReadableLogging {
			executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, executionResult))
		} else {
			executor.logger.Warn(commandFailureMessageConstant,
				zap.String(commandScriptFieldNameConstant, command.Script),
				zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
				zap.String(signalFieldNameConstant, SignalName(executionResult.Signal)),
			)
		}
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command))
	} else {
		executor.logger.Info(commandSuccessMessageConstant,
			zap.String(commandScriptFieldNameConstant, command.Script),
			zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
		)
	}
	return executionResult, nil
}
