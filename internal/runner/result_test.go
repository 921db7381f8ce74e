package runner_test

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskr/internal/execshell"
	"github.com/tyemirov/taskr/internal/resolver"
	"github.com/tyemirov/taskr/internal/runner"
	"github.com/tyemirov/taskr/internal/taskfile"
)

func TestExitCodeAndStatusForError(testInstance *testing.T) {
	testCases := []struct {
		name             string
		err              error
		expectedStatus   runner.Status
		expectedExitCode int
	}{
		{name: "nil", err: nil, expectedStatus: runner.StatusSuccess, expectedExitCode: 0},
		{
			name:             "not_found",
			err:              taskfile.NotFoundError{TaskName: "publish"},
			expectedStatus:   runner.StatusNotFound,
			expectedExitCode: runner.ExitCodeNotFound,
		},
		{
			name:             "arity",
			err:              resolver.ArityError{TaskName: "test-specific", Parameters: []string{"TEST"}, Received: 0},
			expectedStatus:   runner.StatusMalformedArguments,
			expectedExitCode: runner.ExitCodeArity,
		},
		{
			name:             "parse",
			err:              taskfile.ParseError{Source: "Taskrfile", Line: 4, Reason: "command line outside of a task"},
			expectedStatus:   runner.StatusParseError,
			expectedExitCode: runner.ExitCodeParse,
		},
		{
			name:             "definition_missing",
			err:              fmt.Errorf("locate: %w", taskfile.ErrDefinitionNotFound),
			expectedStatus:   runner.StatusParseError,
			expectedExitCode: runner.ExitCodeParse,
		},
		{
			name:             "child_failure",
			err:              runner.ChildFailureError{TaskName: "build", Command: "make", ExitCode: 42},
			expectedStatus:   runner.StatusFailure,
			expectedExitCode: 42,
		},
		{
			name:             "interrupted",
			err:              runner.InterruptedError{TaskName: "build", Signal: syscall.SIGINT},
			expectedStatus:   runner.StatusInterrupted,
			expectedExitCode: 130,
		},
		{
			name:             "shell_not_startable",
			err:              execshell.CommandExecutionError{Command: execshell.ShellCommand{Script: "make"}, Cause: errors.New("no such file")},
			expectedStatus:   runner.StatusRunnerError,
			expectedExitCode: execshell.ShellNotStartableExitCode,
		},
		{
			name:             "usage",
			err:              runner.UsageError{Cause: errors.New("unsupported --list-format value \"xml\"")},
			expectedStatus:   runner.StatusRunnerError,
			expectedExitCode: runner.ExitCodeUsage,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedStatus, runner.StatusForError(testCase.err))
			require.Equal(testInstance, testCase.expectedExitCode, runner.ExitCode(testCase.err))
		})
	}
}

func TestErrorMessages(testInstance *testing.T) {
	require.EqualError(testInstance,
		runner.ChildFailureError{TaskName: "build-linux", Command: "./build-linux-x86_64.sh", ExitCode: 2},
		"task \"build-linux\" failed: command \"./build-linux-x86_64.sh\" exited with code 2",
	)
	require.EqualError(testInstance,
		runner.InterruptedError{TaskName: "build-linux", Signal: syscall.SIGTERM},
		"task \"build-linux\" interrupted by SIGTERM",
	)
}
