package taskrunner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/taskr/internal/execshell"
	"github.com/tyemirov/taskr/internal/resolver"
	"github.com/tyemirov/taskr/internal/runner"
)

// Executor runs the resolved commands of one task.
type Executor interface {
	Run(ctx context.Context, taskName string, commands []resolver.Command) (runner.Result, error)
}

// Factory constructs an Executor given resolved dependencies.
type Factory func(Dependencies) (Executor, error)

// Dependencies carries everything needed to spawn commands for one task.
type Dependencies struct {
	Logger                 *zap.Logger
	HumanReadableLogging   bool
	Shell                  string
	ShellArguments         []string
	TerminationGracePeriod time.Duration
	Input                  io.Reader
	Output                 io.Writer
	Errors                 io.Writer
	Signals                <-chan os.Signal
	Execution              runner.Configuration
	Summary                bool
	Clock                  func() time.Time
}

// Resolve returns either the provided factory result or the default process
// executor, wrapped so a summary line is printed when requested.
func Resolve(factory Factory, dependencies Dependencies) (Executor, error) {
	var base Executor
	if factory != nil {
		built, buildError := factory(dependencies)
		if buildError != nil {
			return nil, buildError
		}
		base = built
	}
	if base == nil {
		built, buildError := newProcessExecutor(dependencies)
		if buildError != nil {
			return nil, buildError
		}
		base = built
	}
	return summaryExecutor{
		delegate:     base,
		dependencies: dependencies,
	}, nil
}

func newProcessExecutor(dependencies Dependencies) (*runner.Executor, error) {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	processRunner := execshell.NewProcessRunner(execshell.ProcessRunnerConfiguration{
		Shell:                  dependencies.Shell,
		ShellArguments:         dependencies.ShellArguments,
		StandardInput:          dependencies.Input,
		StandardOutput:         dependencies.Output,
		StandardError:          dependencies.Errors,
		Signals:                dependencies.Signals,
		TerminationGracePeriod: dependencies.TerminationGracePeriod,
	})

	shellExecutor, shellExecutorError := execshell.NewShellExecutor(logger, processRunner, dependencies.HumanReadableLogging)
	if shellExecutorError != nil {
		return nil, shellExecutorError
	}

	configuration := dependencies.Execution
	if configuration.EchoWriter == nil {
		configuration.EchoWriter = dependencies.Errors
	}
	if configuration.OutputWriter == nil {
		configuration.OutputWriter = dependencies.Output
	}
	if configuration.Signals == nil {
		configuration.Signals = dependencies.Signals
	}

	return runner.NewExecutor(shellExecutor, logger, configuration)
}

type summaryExecutor struct {
	delegate     Executor
	dependencies Dependencies
}

func (executor summaryExecutor) Run(ctx context.Context, taskName string, commands []resolver.Command) (runner.Result, error) {
	startedAt := executor.now()
	result, err := executor.delegate.Run(ctx, taskName, commands)
	executor.printSummary(result, executor.now().Sub(startedAt))
	return result, err
}

func (executor summaryExecutor) printSummary(result runner.Result, elapsed time.Duration) {
	if !executor.dependencies.Summary {
		return
	}
	writer := executor.summaryWriter()
	if writer == nil {
		return
	}

	summary := RenderSummaryLine(SummaryData{
		TaskName:    result.TaskName,
		Status:      result.Status,
		ExitCode:    result.ExitCode,
		CommandsRun: result.CommandsRun,
		Duration:    elapsed,
	})
	if len(summary) == 0 {
		return
	}
	fmt.Fprintln(writer, summary)
}

func (executor summaryExecutor) summaryWriter() io.Writer {
	if executor.dependencies.Errors != nil {
		return executor.dependencies.Errors
	}
	if executor.dependencies.Output != nil {
		return executor.dependencies.Output
	}
	return nil
}

func (executor summaryExecutor) now() time.Time {
	if executor.dependencies.Clock != nil {
		return executor.dependencies.Clock()
	}
	return time.Now()
}
