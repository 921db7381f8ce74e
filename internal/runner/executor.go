package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/taskr/internal/execshell"
	"github.com/tyemirov/taskr/internal/resolver"
)

const (
	// TaskEnvironmentVariable names the running task in every child environment.
	TaskEnvironmentVariable = "TASKR_TASK"

	commandExecutorNotConfiguredMessage = "task executor command executor not configured"
	loggerNotConfiguredMessage          = "task executor logger not configured"
	taskStartedLogMessage               = "task starting"
	taskCompletedLogMessage             = "task completed"
	taskStoppedLogMessage               = "task stopped before next command"
	dryRunLogMessage                    = "dry run; no commands spawned"
	taskNameLogField                    = "task"
	commandCountLogField                = "commands"
	commandIndexLogField                = "command_index"
	signalLogField                      = "signal"
	environmentSeparator                = "="
)

var (
	// ErrCommandExecutorNotConfigured indicates the shell executor dependency was missing.
	ErrCommandExecutorNotConfigured = errors.New(commandExecutorNotConfiguredMessage)
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessage)
)

// CommandExecutor runs one shell command; *execshell.ShellExecutor satisfies it.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Configuration controls how a task's commands are run. Environment holds
// NAME=value entries added to every child environment. Signals is checked
// between commands; a pending signal stops the task.
type Configuration struct {
	WorkingDirectory string
	Environment      []string
	EchoCommands     bool
	StyleEcho        bool
	DryRun           bool
	EchoWriter       io.Writer
	OutputWriter     io.Writer
	Signals          <-chan os.Signal
}

// Executor runs resolved commands sequentially and stops at the first failure.
type Executor struct {
	commandExecutor CommandExecutor
	logger          *zap.Logger
	configuration   Configuration
	echoFormatter   echoFormatter
}

// NewExecutor validates dependencies and applies writer defaults.
func NewExecutor(commandExecutor CommandExecutor, logger *zap.Logger, configuration Configuration) (*Executor, error) {
	if commandExecutor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if configuration.EchoWriter == nil {
		configuration.EchoWriter = os.Stderr
	}
	if configuration.OutputWriter == nil {
		configuration.OutputWriter = os.Stdout
	}
	return &Executor{
		commandExecutor: commandExecutor,
		logger:          logger,
		configuration:   configuration,
		echoFormatter:   echoFormatter{styled: configuration.StyleEcho},
	}, nil
}

// Run executes commands in order. It never spawns a command after one has
// failed or after a signal has been received.
func (executor *Executor) Run(executionContext context.Context, taskName string, commands []resolver.Command) (Result, error) {
	result := Result{TaskName: taskName, Status: StatusSuccess, ExitCode: ExitCodeSuccess}

	if executor.configuration.DryRun {
		for _, command := range commands {
			if _, writeError := fmt.Fprintln(executor.configuration.OutputWriter, command.Text); writeError != nil {
				return executor.runnerFailure(result, writeError)
			}
		}
		executor.logger.Debug(dryRunLogMessage, zap.String(taskNameLogField, taskName), zap.Int(commandCountLogField, len(commands)))
		return result, nil
	}

	executor.logger.Info(taskStartedLogMessage, zap.String(taskNameLogField, taskName), zap.Int(commandCountLogField, len(commands)))

	details := execshell.CommandDetails{
		WorkingDirectory:     executor.configuration.WorkingDirectory,
		EnvironmentVariables: executor.childEnvironment(taskName),
	}

	for commandIndex, command := range commands {
		if pendingSignal, pending := executor.pendingSignal(); pending {
			executor.logger.Warn(taskStoppedLogMessage,
				zap.String(taskNameLogField, taskName),
				zap.Int(commandIndexLogField, commandIndex),
				zap.String(signalLogField, execshell.SignalName(pendingSignal)),
			)
			return executor.interrupted(result, pendingSignal)
		}

		if executor.configuration.EchoCommands && !command.Quiet {
			executor.echoFormatter.write(executor.configuration.EchoWriter, command.Text)
		}

		executionResult, executionError := executor.commandExecutor.Execute(executionContext, execshell.ShellCommand{Script: command.Text, Details: details})
		result.CommandsRun++

		if executionResult.Interrupted() {
			return executor.interrupted(result, executionResult.Signal)
		}

		var failedError execshell.CommandFailedError
		switch {
		case executionError == nil:
		case errors.As(executionError, &failedError):
			result.Status = StatusFailure
			result.ExitCode = failedError.Result.ExitCode
			return result, ChildFailureError{
				TaskName: taskName,
				Command:  command.Text,
				Line:     command.Line,
				ExitCode: failedError.Result.ExitCode,
			}
		default:
			return executor.runnerFailure(result, executionError)
		}
	}

	executor.logger.Info(taskCompletedLogMessage, zap.String(taskNameLogField, taskName), zap.Int(commandCountLogField, result.CommandsRun))
	return result, nil
}

func (executor *Executor) pendingSignal() (os.Signal, bool) {
	if executor.configuration.Signals == nil {
		return nil, false
	}
	select {
	case receivedSignal := <-executor.configuration.Signals:
		return receivedSignal, true
	default:
		return nil, false
	}
}

func (executor *Executor) interrupted(result Result, receivedSignal os.Signal) (Result, error) {
	interruptedError := InterruptedError{TaskName: result.TaskName, Signal: receivedSignal}
	result.Status = StatusInterrupted
	result.ExitCode = interruptedError.ExitCode()
	return result, interruptedError
}

func (executor *Executor) runnerFailure(result Result, cause error) (Result, error) {
	result.Status = StatusRunnerError
	result.ExitCode = ExitCode(cause)
	return result, cause
}

func (executor *Executor) childEnvironment(taskName string) map[string]string {
	environment := make(map[string]string, len(executor.configuration.Environment)+1)
	for _, entry := range executor.configuration.Environment {
		name, value, found := strings.Cut(entry, environmentSeparator)
		if !found || len(name) == 0 {
			continue
		}
		environment[name] = value
	}
	environment[TaskEnvironmentVariable] = taskName
	return environment
}
