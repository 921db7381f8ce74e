package taskrunner

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/taskr/internal/runner"
)

const signalBufferSize = 4

// DependenciesConfig captures providers and shell settings shared by every task run.
type DependenciesConfig struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	Shell                        string
	ShellArguments               []string
	TerminationGracePeriod       time.Duration
}

// DependenciesOptions allows per-command overrides when resolving dependencies.
type DependenciesOptions struct {
	Command   *cobra.Command
	Input     io.Reader
	Output    io.Writer
	Errors    io.Writer
	Signals   <-chan os.Signal
	Execution runner.Configuration
	Summary   bool
}

// BuildDependencies resolves the logger, streams and shell settings for one task run.
// Streams fall back to the command's streams and then to the process streams;
// an empty shell is left for the process runner to default.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) Dependencies {
	humanReadable := false
	if config.HumanReadableLoggingProvider != nil {
		humanReadable = config.HumanReadableLoggingProvider()
	}

	return Dependencies{
		Logger:                 resolveLogger(config.LoggerProvider),
		HumanReadableLogging:   humanReadable,
		Shell:                  config.Shell,
		ShellArguments:         append([]string(nil), config.ShellArguments...),
		TerminationGracePeriod: config.TerminationGracePeriod,
		Input:                  resolveReader(options.Input, options.Command),
		Output:                 resolveWriter(options.Output, options.Command, true),
		Errors:                 resolveWriter(options.Errors, options.Command, false),
		Signals:                options.Signals,
		Execution:              options.Execution,
		Summary:                options.Summary,
	}
}

// NotifyTerminationSignals subscribes a buffered channel to SIGINT and SIGTERM.
// The returned stop function unsubscribes it.
func NotifyTerminationSignals() (<-chan os.Signal, func()) {
	signals := make(chan os.Signal, signalBufferSize)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	return signals, func() { signal.Stop(signals) }
}

func resolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveReader(provided io.Reader, command *cobra.Command) io.Reader {
	if provided != nil {
		return provided
	}
	if command != nil {
		return command.InOrStdin()
	}
	return os.Stdin
}

func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command != nil {
		if useStdout {
			if writer := command.OutOrStdout(); writer != nil && writer != io.Discard {
				return writer
			}
		} else {
			if writer := command.ErrOrStderr(); writer != nil && writer != io.Discard {
				return writer
			}
		}
	}
	if useStdout {
		return os.Stdout
	}
	return os.Stderr
}
