package execshell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	gopsutilprocess "github.com/shirou/gopsutil/v3/process"
)

const (
	// DefaultShell is the interpreter used when none is configured.
	DefaultShell = "sh"
	// DefaultTerminationGracePeriod bounds how long a signalled child may keep running.
	DefaultTerminationGracePeriod = 10 * time.Second
	// ShellNotStartableExitCode is reported when the shell itself could not be started.
	ShellNotStartableExitCode = 127

	signalExitCodeBaseConstant   = 128
	environmentSeparatorConstant = "="
)

// DefaultShellArguments precede the command line: run it and treat unset variables as errors.
var DefaultShellArguments = []string{"-cu"}

// ProcessRunnerConfiguration describes how commands are spawned.
type ProcessRunnerConfiguration struct {
	Shell                  string
	ShellArguments         []string
	StandardInput          io.Reader
	StandardOutput         io.Writer
	StandardError          io.Writer
	Signals                <-chan os.Signal
	TerminationGracePeriod time.Duration
}

// ProcessRunner runs command lines through the shell with pass-through streams.
// Signals received while a child runs are forwarded to it and its descendants;
// a child that outlives the grace period is killed together with its
// descendants, and signalled descendants still running once the shell exits
// are killed.
type ProcessRunner struct {
	shell                  string
	shellArguments         []string
	standardInput          io.Reader
	standardOutput         io.Writer
	standardError          io.Writer
	signals                <-chan os.Signal
	terminationGracePeriod time.Duration
}

// NewProcessRunner applies defaults to the configuration.
func NewProcessRunner(configuration ProcessRunnerConfiguration) *ProcessRunner {
	runner := &ProcessRunner{
		shell:                  configuration.Shell,
		shellArguments:         append([]string(nil), configuration.ShellArguments...),
		standardInput:          configuration.StandardInput,
		standardOutput:         configuration.StandardOutput,
		standardError:          configuration.StandardError,
		signals:                configuration.Signals,
		terminationGracePeriod: configuration.TerminationGracePeriod,
	}
	if len(runner.shell) == 0 {
		runner.shell = DefaultShell
		if len(runner.shellArguments) == 0 {
			runner.shellArguments = append([]string(nil), DefaultShellArguments...)
		}
	}
	if runner.standardInput == nil {
		runner.standardInput = os.Stdin
	}
	if runner.standardOutput == nil {
		runner.standardOutput = os.Stdout
	}
	if runner.standardError == nil {
		runner.standardError = os.Stderr
	}
	if runner.terminationGracePeriod <= 0 {
		runner.terminationGracePeriod = DefaultTerminationGracePeriod
	}
	return runner
}

// Run executes the command and waits for it. The returned error is non-nil
// only when the shell could not be started; a non-zero exit is reported
// through the result.
func (runner *ProcessRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	arguments := append(append([]string(nil), runner.shellArguments...), command.Script)
	childProcess := exec.Command(runner.shell, arguments...)
	childProcess.Dir = command.Details.WorkingDirectory
	childProcess.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	childProcess.Stdin = runner.standardInput
	childProcess.Stdout = runner.standardOutput
	childProcess.Stderr = runner.standardError
	childProcess.WaitDelay = runner.terminationGracePeriod

	if startError := childProcess.Start(); startError != nil {
		return ExecutionResult{ExitCode: ShellNotStartableExitCode}, startError
	}

	waitResults := make(chan error, 1)
	go func() {
		waitResults <- childProcess.Wait()
	}()

	var (
		receivedSignal       os.Signal
		signalledDescendants []*gopsutilprocess.Process
		killTimer            *time.Timer
		killDeadline         <-chan time.Time
	)
	contextDone := executionContext.Done()
	for {
		select {
		case waitError := <-waitResults:
			if killTimer != nil {
				killTimer.Stop()
			}
			killSurvivors(signalledDescendants)
			return buildExecutionResult(childProcess, waitError, receivedSignal)
		case incomingSignal := <-runner.signals:
			receivedSignal = incomingSignal
			signalledDescendants = append(signalledDescendants, forwardSignalToTree(childProcess.Process, incomingSignal)...)
			if killTimer == nil {
				killTimer = time.NewTimer(runner.terminationGracePeriod)
				killDeadline = killTimer.C
			}
		case <-killDeadline:
			killDeadline = nil
			_ = killProcessTree(childProcess.Process.Pid)
		case <-contextDone:
			contextDone = nil
			_ = killProcessTree(childProcess.Process.Pid)
		}
	}
}

func buildExecutionResult(childProcess *exec.Cmd, waitError error, receivedSignal os.Signal) (ExecutionResult, error) {
	result := ExecutionResult{Signal: receivedSignal}
	if waitError == nil || errors.Is(waitError, exec.ErrWaitDelay) {
		return result, nil
	}

	var exitError *exec.ExitError
	if !errors.As(waitError, &exitError) {
		result.ExitCode = ShellNotStartableExitCode
		return result, waitError
	}

	if signalExitCode, signaled := signaledExitCode(childProcess.ProcessState); signaled {
		result.ExitCode = signalExitCode
		return result, nil
	}
	result.ExitCode = exitError.ExitCode()
	return result, nil
}

// ExitCodeForSignal maps a signal to the conventional 128+n status.
func ExitCodeForSignal(receivedSignal os.Signal) int {
	if systemSignal, isSystemSignal := receivedSignal.(syscall.Signal); isSystemSignal {
		return signalExitCodeBaseConstant + int(systemSignal)
	}
	return signalExitCodeBaseConstant
}

func killProcessTree(processIdentifier int) error {
	rootProcess, lookupError := gopsutilprocess.NewProcess(int32(processIdentifier))
	if lookupError != nil {
		return lookupError
	}
	descendants := collectDescendants(rootProcess.Pid)
	killError := rootProcess.Kill()
	for _, descendant := range descendants {
		_ = descendant.Kill()
	}
	return killError
}

// forwardSignalToTree signals the child and every descendant found at the
// moment of the signal, and returns those descendants.
func forwardSignalToTree(childProcess *os.Process, forwardedSignal os.Signal) []*gopsutilprocess.Process {
	descendants := collectDescendants(int32(childProcess.Pid))
	_ = childProcess.Signal(forwardedSignal)
	systemSignal, isSystemSignal := forwardedSignal.(syscall.Signal)
	if !isSystemSignal {
		return descendants
	}
	for _, descendant := range descendants {
		_ = descendant.SendSignal(systemSignal)
	}
	return descendants
}

func killSurvivors(descendants []*gopsutilprocess.Process) {
	for _, descendant := range descendants {
		if running, runningError := descendant.IsRunning(); runningError != nil || !running {
			continue
		}
		_ = descendant.Kill()
	}
}

// collectDescendants snapshots the process table and walks it from the root
// before anything is signalled, since orphans are reparented and no longer
// reachable from the root.
func collectDescendants(rootProcessIdentifier int32) []*gopsutilprocess.Process {
	allProcesses, listError := gopsutilprocess.Processes()
	if listError != nil {
		return nil
	}
	childrenByParent := make(map[int32][]*gopsutilprocess.Process, len(allProcesses))
	for _, candidateProcess := range allProcesses {
		parentIdentifier, parentError := candidateProcess.Ppid()
		if parentError != nil {
			continue
		}
		childrenByParent[parentIdentifier] = append(childrenByParent[parentIdentifier], candidateProcess)
	}

	visited := map[int32]struct{}{rootProcessIdentifier: {}}
	pending := []int32{rootProcessIdentifier}
	descendants := make([]*gopsutilprocess.Process, 0)
	for len(pending) > 0 {
		parentIdentifier := pending[0]
		pending = pending[1:]
		for _, childProcess := range childrenByParent[parentIdentifier] {
			if _, seen := visited[childProcess.Pid]; seen {
				continue
			}
			visited[childProcess.Pid] = struct{}{}
			descendants = append(descendants, childProcess)
			pending = append(pending, childProcess.Pid)
		}
	}
	return descendants
}

func mergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	merged := append([]string(nil), baseEnvironment...)
	overrideNames := make([]string, 0, len(overrides))
	for overrideName := range overrides {
		overrideNames = append(overrideNames, overrideName)
	}
	sort.Strings(overrideNames)
	for _, overrideName := range overrideNames {
		merged = append(merged, overrideName+environmentSeparatorConstant+overrides[overrideName])
	}
	return merged
}
