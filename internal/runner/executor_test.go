package runner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/taskr/internal/execshell"
	"github.com/tyemirov/taskr/internal/resolver"
	"github.com/tyemirov/taskr/internal/runner"
)

const (
	testTaskNameConstant         = "build-macos"
	testWorkingDirectoryConstant = "/srv/bdk-android"
	testFirstCommandConstant     = "./build-macos-aarch64.sh"
	testSecondCommandConstant    = "./build-macos-x86_64.sh"
	testThirdCommandConstant     = "rm -rf ./build/"
)

type scriptedOutcome struct {
	result execshell.ExecutionResult
	err    error
}

type recordingCommandExecutor struct {
	outcomes         map[string]scriptedOutcome
	recordedCommands []execshell.ShellCommand
}

func (executor *recordingCommandExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, command)
	outcome := executor.outcomes[command.Script]
	return outcome.result, outcome.err
}

func (executor *recordingCommandExecutor) scripts() []string {
	scripts := make([]string, 0, len(executor.recordedCommands))
	for _, command := range executor.recordedCommands {
		scripts = append(scripts, command.Script)
	}
	return scripts
}

func testCommands() []resolver.Command {
	return []resolver.Command{
		{Text: testFirstCommandConstant, Line: 6},
		{Text: testSecondCommandConstant, Line: 7},
		{Text: testThirdCommandConstant, Quiet: true, Line: 8},
	}
}

func failedOutcome(script string, exitCode int) scriptedOutcome {
	result := execshell.ExecutionResult{ExitCode: exitCode}
	return scriptedOutcome{
		result: result,
		err:    execshell.CommandFailedError{Command: execshell.ShellCommand{Script: script}, Result: result},
	}
}

func newTestExecutor(testInstance *testing.T, commandExecutor runner.CommandExecutor, configuration runner.Configuration) *runner.Executor {
	testInstance.Helper()
	if configuration.EchoWriter == nil {
		configuration.EchoWriter = &bytes.Buffer{}
	}
	if configuration.OutputWriter == nil {
		configuration.OutputWriter = &bytes.Buffer{}
	}
	executor, creationError := runner.NewExecutor(commandExecutor, zap.NewNop(), configuration)
	require.NoError(testInstance, creationError)
	return executor
}

func TestNewExecutorValidation(testInstance *testing.T) {
	_, missingExecutorError := runner.NewExecutor(nil, zap.NewNop(), runner.Configuration{})
	require.ErrorIs(testInstance, missingExecutorError, runner.ErrCommandExecutorNotConfigured)

	_, missingLoggerError := runner.NewExecutor(&recordingCommandExecutor{}, nil, runner.Configuration{})
	require.ErrorIs(testInstance, missingLoggerError, runner.ErrLoggerNotConfigured)
}

func TestExecutorRunsCommandsInOrder(testInstance *testing.T) {
	commandExecutor := &recordingCommandExecutor{}
	executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{
		WorkingDirectory: testWorkingDirectoryConstant,
		Environment:      []string{"GRADLE_OPTS=-Xmx2g", "malformed", "=empty"},
	})

	result, runError := executor.Run(context.Background(), testTaskNameConstant, testCommands())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, runner.Result{TaskName: testTaskNameConstant, Status: runner.StatusSuccess, ExitCode: 0, CommandsRun: 3}, result)
	require.Equal(testInstance, []string{testFirstCommandConstant, testSecondCommandConstant, testThirdCommandConstant}, commandExecutor.scripts())

	for _, command := range commandExecutor.recordedCommands {
		require.Equal(testInstance, testWorkingDirectoryConstant, command.Details.WorkingDirectory)
		require.Equal(testInstance, map[string]string{
			runner.TaskEnvironmentVariable: testTaskNameConstant,
			"GRADLE_OPTS":                  "-Xmx2g",
		}, command.Details.EnvironmentVariables)
	}
}

func TestExecutorStopsAtFirstFailure(testInstance *testing.T) {
	commandExecutor := &recordingCommandExecutor{
		outcomes: map[string]scriptedOutcome{testSecondCommandConstant: failedOutcome(testSecondCommandConstant, 3)},
	}
	executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{})

	result, runError := executor.Run(context.Background(), testTaskNameConstant, testCommands())
	require.Equal(testInstance, []string{testFirstCommandConstant, testSecondCommandConstant}, commandExecutor.scripts())
	require.Equal(testInstance, runner.StatusFailure, result.Status)
	require.Equal(testInstance, 3, result.ExitCode)
	require.Equal(testInstance, 2, result.CommandsRun)

	var childFailure runner.ChildFailureError
	require.True(testInstance, errors.As(runError, &childFailure))
	require.Equal(testInstance, runner.ChildFailureError{TaskName: testTaskNameConstant, Command: testSecondCommandConstant, Line: 7, ExitCode: 3}, childFailure)
	require.Equal(testInstance, 3, runner.ExitCode(runError))
	require.Equal(testInstance, `task "build-macos" failed: command "./build-macos-x86_64.sh" exited with code 3`, runError.Error())
}

func TestExecutorEchoesCommands(testInstance *testing.T) {
	testCases := []struct {
		name         string
		echoCommands bool
		styleEcho    bool
		expectedEcho string
	}{
		{
			name:         "plain",
			echoCommands: true,
			expectedEcho: testFirstCommandConstant + "\n" + testSecondCommandConstant + "\n",
		},
		{
			name:         "styled",
			echoCommands: true,
			styleEcho:    true,
			expectedEcho: "\x1b[1m" + testFirstCommandConstant + "\x1b[0m\n\x1b[1m" + testSecondCommandConstant + "\x1b[0m\n",
		},
		{
			name:         "disabled",
			echoCommands: false,
			expectedEcho: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			echoBuffer := &bytes.Buffer{}
			commandExecutor := &recordingCommandExecutor{}
			executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{
				EchoCommands: testCase.echoCommands,
				StyleEcho:    testCase.styleEcho,
				EchoWriter:   echoBuffer,
			})

			_, runError := executor.Run(context.Background(), testTaskNameConstant, testCommands())
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedEcho, echoBuffer.String())
			require.Len(testInstance, commandExecutor.recordedCommands, 3)
		})
	}
}

func TestExecutorDryRunSpawnsNothing(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	echoBuffer := &bytes.Buffer{}
	commandExecutor := &recordingCommandExecutor{}
	executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{
		DryRun:       true,
		EchoCommands: true,
		OutputWriter: outputBuffer,
		EchoWriter:   echoBuffer,
	})

	result, runError := executor.Run(context.Background(), testTaskNameConstant, testCommands())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, runner.StatusSuccess, result.Status)
	require.Zero(testInstance, result.CommandsRun)
	require.Empty(testInstance, commandExecutor.recordedCommands)
	require.Empty(testInstance, echoBuffer.String())
	require.Equal(testInstance, testFirstCommandConstant+"\n"+testSecondCommandConstant+"\n"+testThirdCommandConstant+"\n", outputBuffer.String())
}

func TestExecutorStopsOnPendingSignal(testInstance *testing.T) {
	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGINT
	commandExecutor := &recordingCommandExecutor{}
	executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{Signals: signals})

	result, runError := executor.Run(context.Background(), testTaskNameConstant, testCommands())
	require.Empty(testInstance, commandExecutor.recordedCommands)
	require.Equal(testInstance, runner.StatusInterrupted, result.Status)
	require.Equal(testInstance, 130, result.ExitCode)

	var interruptedError runner.InterruptedError
	require.True(testInstance, errors.As(runError, &interruptedError))
	require.Equal(testInstance, 130, runner.ExitCode(runError))
	require.Equal(testInstance, runner.StatusInterrupted, runner.StatusForError(runError))
}

func TestExecutorStopsWhenChildWasSignalled(testInstance *testing.T) {
	testCases := []struct {
		name    string
		outcome scriptedOutcome
	}{
		{
			name: "child_killed",
			outcome: scriptedOutcome{
				result: execshell.ExecutionResult{ExitCode: 143, Signal: syscall.SIGTERM},
				err: execshell.CommandFailedError{
					Command: execshell.ShellCommand{Script: testFirstCommandConstant},
					Result:  execshell.ExecutionResult{ExitCode: 143, Signal: syscall.SIGTERM},
				},
			},
		},
		{
			name:    "child_exited_cleanly",
			outcome: scriptedOutcome{result: execshell.ExecutionResult{ExitCode: 0, Signal: syscall.SIGTERM}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commandExecutor := &recordingCommandExecutor{
				outcomes: map[string]scriptedOutcome{testFirstCommandConstant: testCase.outcome},
			}
			executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{})

			result, runError := executor.Run(context.Background(), testTaskNameConstant, testCommands())
			require.Equal(testInstance, []string{testFirstCommandConstant}, commandExecutor.scripts())
			require.Equal(testInstance, runner.StatusInterrupted, result.Status)
			require.Equal(testInstance, 143, result.ExitCode)
			require.EqualError(testInstance, runError, `task "build-macos" interrupted by SIGTERM`)
		})
	}
}

func TestExecutorReportsUnstartableShell(testInstance *testing.T) {
	executionError := execshell.CommandExecutionError{
		Command: execshell.ShellCommand{Script: testFirstCommandConstant},
		Cause:   errors.New("exec: \"sh\": executable file not found in $PATH"),
	}
	commandExecutor := &recordingCommandExecutor{
		outcomes: map[string]scriptedOutcome{
			testFirstCommandConstant: {result: execshell.ExecutionResult{ExitCode: execshell.ShellNotStartableExitCode}, err: executionError},
		},
	}
	executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{})

	result, runError := executor.Run(context.Background(), testTaskNameConstant, testCommands())
	require.Len(testInstance, commandExecutor.recordedCommands, 1)
	require.Equal(testInstance, runner.StatusRunnerError, result.Status)
	require.Equal(testInstance, execshell.ShellNotStartableExitCode, result.ExitCode)
	require.ErrorIs(testInstance, runError, executionError.Cause)
}

func TestExecutorRunsEmptyTask(testInstance *testing.T) {
	commandExecutor := &recordingCommandExecutor{}
	executor := newTestExecutor(testInstance, commandExecutor, runner.Configuration{})

	result, runError := executor.Run(context.Background(), "noop", nil)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, runner.StatusSuccess, result.Status)
	require.Empty(testInstance, commandExecutor.recordedCommands)
}
