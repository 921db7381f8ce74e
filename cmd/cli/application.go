// Package cli wires the taskr command line: configuration, logging, flag
// handling and the run, list and show behaviours.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tyemirov/taskr/internal/listing"
	"github.com/tyemirov/taskr/internal/resolver"
	"github.com/tyemirov/taskr/internal/runner"
	"github.com/tyemirov/taskr/internal/taskfile"
	"github.com/tyemirov/taskr/internal/utils"
	flagutils "github.com/tyemirov/taskr/internal/utils/flags"
	"github.com/tyemirov/taskr/internal/version"
	"github.com/tyemirov/taskr/pkg/taskrunner"
)

const (
	applicationNameConstant                                          = "taskr"
	applicationUseConstant                                           = applicationNameConstant + " [flags] [task] [arguments...]"
	applicationShortDescriptionConstant                              = "Run named shell tasks from a Taskrfile"
	applicationLongDescriptionConstant                               = "taskr looks up a task in the nearest Taskrfile, binds its parameters to the given arguments and runs its commands in order, stopping at the first failure. Without a task it lists the available tasks."
	taskFileFlagNameConstant                                         = "file"
	taskFileFlagShorthandConstant                                    = "f"
	taskFileFlagUsageConstant                                        = "Use this definition file instead of searching for one."
	workingDirectoryFlagNameConstant                                 = "working-directory"
	workingDirectoryFlagShorthandConstant                            = "d"
	workingDirectoryFlagUsageConstant                                = "Run commands in this directory instead of the definition file's directory."
	listFlagNameConstant                                             = "list"
	listFlagShorthandConstant                                        = "l"
	listFlagUsageConstant                                            = "List the available tasks and exit."
	listFormatFlagNameConstant                                       = "list-format"
	listFormatFlagUsageConstant                                      = "Format used by --list and --show."
	showFlagNameConstant                                             = "show"
	showFlagUsageConstant                                            = "Print the definition of one task and exit."
	shellFlagNameConstant                                            = "shell"
	shellFlagUsageConstant                                           = "Shell used to run each command."
	configFileFlagNameConstant                                       = "config"
	configFileFlagUsageConstant                                      = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                                         = "log-level"
	logLevelFlagUsageConstant                                        = "Override the configured log level."
	logFormatFlagNameConstant                                        = "log-format"
	logFormatFlagUsageConstant                                       = "Override the configured log format."
	configurationInitializationFlagNameConstant                      = "init"
	configurationInitializationFlagUsageConstant                     = "Write the embedded default configuration to LOCAL (./config.yaml) or USER ($XDG_CONFIG_HOME/taskr/config.yaml, falling back to $HOME/.taskr/config.yaml)."
	configurationInitializationDefaultScopeConstant                  = "local"
	configurationInitializationForceFlagNameConstant                 = "force"
	configurationInitializationForceFlagUsageConstant                = "Overwrite an existing configuration file when initializing."
	configurationInitializationScopeLocalConstant                    = "local"
	configurationInitializationScopeUserConstant                     = "user"
	configurationInitializationUnsupportedScopeTemplateConstant      = "unsupported initialization scope %q"
	configurationInitializationWorkingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	configurationInitializationHomeDirectoryErrorTemplateConstant    = "unable to determine user home directory: %w"
	configurationInitializationHomeDirectoryEmptyErrorConstant       = "user home directory is empty"
	configurationInitializationContentUnavailableErrorConstant       = "embedded configuration content is unavailable"
	configurationInitializationInvalidContentTemplateConstant        = "embedded configuration is not valid YAML: %w"
	configurationInitializationDirectoryErrorTemplateConstant        = "unable to ensure configuration directory %s: %w"
	configurationInitializationExistingFileTemplateConstant          = "configuration file already exists at %s (use --force to overwrite)"
	configurationInitializationExistingDirectoryTemplateConstant     = "configuration path %s is a directory"
	configurationInitializationDirectoryConflictTemplateConstant     = "configuration directory path %s is not a directory"
	configurationInitializationWriteErrorTemplateConstant            = "unable to write configuration file %s: %w"
	configurationInitializationSuccessMessageConstant                = "configuration file created"
	commonConfigurationKeyConstant                                   = "common"
	commonLogLevelConfigKeyConstant                                  = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                                 = commonConfigurationKeyConstant + ".log_format"
	runnerConfigurationKeyConstant                                   = "runner"
	runnerFileNamesConfigKeyConstant                                 = runnerConfigurationKeyConstant + ".file_names"
	runnerShellConfigKeyConstant                                     = runnerConfigurationKeyConstant + ".shell"
	runnerShellArgumentsConfigKeyConstant                            = runnerConfigurationKeyConstant + ".shell_arguments"
	runnerEchoCommandsConfigKeyConstant                              = runnerConfigurationKeyConstant + ".echo_commands"
	runnerListFormatConfigKeyConstant                                = runnerConfigurationKeyConstant + ".list_format"
	runnerTerminationGracePeriodConfigKeyConstant                    = runnerConfigurationKeyConstant + ".termination_grace_period"
	runnerEnvironmentConfigKeyConstant                               = runnerConfigurationKeyConstant + ".environment"
	environmentPrefixConstant                                        = "TASKR"
	configurationNameConstant                                        = "config"
	configurationTypeConstant                                        = "yaml"
	configurationFileNameConstant                                    = configurationNameConstant + "." + configurationTypeConstant
	configurationDirectoryPermissionConstant                         = 0o755
	configurationFilePermissionConstant                              = 0o600
	configurationInitializedMessageConstant                          = "configuration initialized"
	configurationLogLevelFieldConstant                               = "log_level"
	configurationLogFormatFieldConstant                              = "log_format"
	configurationFileFieldConstant                                   = "config_file"
	xdgConfigHomeEnvironmentVariableConstant                         = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant                           = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                              = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                                  = "unable to flush logger: %w"
	negativeGracePeriodTemplateConstant                              = "runner.termination_grace_period must not be negative, got %s"
	invalidEnvironmentEntryTemplateConstant                          = "runner.environment entry %q is not NAME=value"
	environmentEntrySeparatorConstant                                = "="
	configurationInitializedConsoleTemplateConstant                  = "%s | log level=%s | log format=%s | config file=%s"
	definitionNotFoundTemplateConstant                               = "%w in %s or any parent directory (looked for %s)"
	workingDirectoryErrorTemplateConstant                            = "unable to determine working directory: %w"
	rootCommandDebugMessageConstant                                  = "taskr invoked"
	definitionFileLogFieldConstant                                   = "definition_file"
	logFieldTaskConstant                                             = "task"
	logFieldArgumentsConstant                                        = "arguments"
	loggerNotInitializedMessageConstant                              = "logger not initialized"
	defaultConfigurationSearchPathConstant                           = "."
	userConfigurationDirectoryNameConstant                           = ".taskr"
	configurationSearchPathEnvironmentVariableConstant               = "TASKR_CONFIG_SEARCH_PATH"
	versionFlagNameConstant                                          = "version"
	versionFlagUsageConstant                                         = "Print the application version and exit"
	versionOutputTemplateConstant                                    = "taskr version: %s\n"
	summaryFlagNameConstant                                          = "summary"
	summaryFlagUsageConstant                                         = "Print a one-line summary to stderr after the task ends."
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(logLevel utils.LogLevel, logFormat utils.LogFormat) (utils.LoggerOutputs, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                       *cobra.Command
	configurationLoader               *utils.ConfigurationLoader
	loggerFactory                     loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	taskFilePath                      string
	workingDirectory                  string
	listRequested                     bool
	listFormat                        string
	showTaskName                      string
	shell                             string
	summaryRequested                  bool
	executorFactory                   taskrunner.Factory
	commandContextAccessor            utils.CommandContextAccessor
	configurationInitializationScope  string
	configurationInitializationForced bool
	versionFlag                       bool
	versionResolver                   func() string
	arguments                         []string
	invocationResult                  runner.Result
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		versionResolver:        version.Detect,
		arguments:              os.Args[1:],
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(command); initializationError != nil {
				return runner.UsageError{Cause: initializationError}
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.Flags().SetInterspersed(false)
	cobraCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return runner.UsageError{Cause: flagError}
	})

	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVarP(&application.taskFilePath, taskFileFlagNameConstant, taskFileFlagShorthandConstant, "", taskFileFlagUsageConstant)
	persistentFlags.StringVarP(&application.workingDirectory, workingDirectoryFlagNameConstant, workingDirectoryFlagShorthandConstant, "", workingDirectoryFlagUsageConstant)
	persistentFlags.BoolVarP(&application.listRequested, listFlagNameConstant, listFlagShorthandConstant, false, listFlagUsageConstant)
	persistentFlags.StringVar(&application.listFormat, listFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(listFormatFlagUsageConstant, listing.Formats()))
	persistentFlags.StringVar(&application.showTaskName, showFlagNameConstant, "", showFlagUsageConstant)
	persistentFlags.StringVar(&application.shell, shellFlagNameConstant, "", shellFlagUsageConstant)
	persistentFlags.BoolVar(&application.summaryRequested, summaryFlagNameConstant, false, summaryFlagUsageConstant)
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(logLevelFlagUsageConstant, []string{
		string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError),
	}))
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(logFormatFlagUsageConstant, []string{
		string(utils.LogFormatConsole), string(utils.LogFormatStructured),
	}))
	persistentFlags.StringVar(
		&application.configurationInitializationScope,
		configurationInitializationFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(configurationInitializationFlagUsageConstant, []string{
			configurationInitializationScopeLocalConstant,
			configurationInitializationScopeUserConstant,
		}),
	)
	if initializationFlag := persistentFlags.Lookup(configurationInitializationFlagNameConstant); initializationFlag != nil {
		initializationFlag.NoOptDefVal = configurationInitializationDefaultScopeConstant
	}
	persistentFlags.BoolVar(
		&application.configurationInitializationForced,
		configurationInitializationForceFlagNameConstant,
		false,
		configurationInitializationForceFlagUsageConstant,
	)

	flagutils.BindExecutionFlags(
		cobraCommand,
		flagutils.ExecutionDefaults{},
		flagutils.ExecutionFlagDefinitions{
			DryRun: flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Shorthand: flagutils.DryRunFlagShorthand, Enabled: true},
			Quiet:  flagutils.ExecutionFlagDefinition{Name: flagutils.QuietFlagName, Usage: flagutils.QuietFlagUsage, Shorthand: flagutils.QuietFlagShorthand, Enabled: true},
		},
	)

	persistentFlags.BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// SetArguments replaces the command-line arguments, which default to os.Args[1:].
func (application *Application) SetArguments(arguments []string) {
	application.arguments = append([]string(nil), arguments...)
}

// RootCommand exposes the Cobra command so callers can redirect its streams.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Result returns the terminal result of the last invocation.
func (application *Application) Result() runner.Result {
	return application.invocationResult
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(application.arguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	return runner.ExitCode(err)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, configurationDefaults(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if validationError := validateRunnerConfiguration(application.configuration.Runner); validationError != nil {
		return validationError
	}

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithExecutionFlags(command.Context(), flagutils.CollectExecutionFlags(command))

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// InitializeForCommand prepares application state without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	command.SetContext(context.Background())
	return application.initializeConfiguration(command)
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

// Configuration returns the configuration resolved during initialization.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Info(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	if application.persistentFlagChanged(command, configurationInitializationFlagNameConstant) {
		return application.handleConfigurationInitialization(arguments)
	}

	if application.versionFlag {
		fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, application.versionResolver())
		return nil
	}

	invocation := runner.NewInvocation(application.logger)
	invocation.Logger().Debug(rootCommandDebugMessageConstant, zap.Strings(logFieldArgumentsConstant, arguments))

	var runError error
	application.invocationResult, runError = application.runInvocation(command, invocation, arguments)
	return runError
}

func (application *Application) runInvocation(command *cobra.Command, invocation *runner.Invocation, arguments []string) (runner.Result, error) {
	listFormat, formatError := application.resolveListFormat()
	if formatError != nil {
		return invocation.Finish(runner.StatusSuccess, runner.UsageError{Cause: formatError})
	}

	var definitionPath string
	registry, loadError := invocation.Load(func() (taskfile.Registry, error) {
		locatedPath, locateError := application.locateDefinition()
		if locateError != nil {
			return taskfile.Registry{}, locateError
		}
		definitionPath = locatedPath
		return taskfile.LoadFile(locatedPath)
	})
	if loadError != nil {
		return invocation.Result(), loadError
	}
	invocation.Logger().Debug(rootCommandDebugMessageConstant, zap.String(definitionFileLogFieldConstant, definitionPath))

	if len(strings.TrimSpace(application.showTaskName)) > 0 {
		return invocation.Finish(runner.StatusListed, application.showTask(command, registry, listFormat))
	}
	if application.listRequested || len(arguments) == 0 {
		return invocation.Finish(runner.StatusListed, application.listTasks(command, registry, listFormat))
	}

	request := resolver.Request{TaskName: arguments[0], Arguments: arguments[1:]}
	plan, resolveError := invocation.Resolve(registry, request)
	if resolveError != nil {
		return invocation.Result(), resolveError
	}
	invocation.Logger().Debug(rootCommandDebugMessageConstant, zap.String(logFieldTaskConstant, plan.Definition.Name))

	signals, stopSignals := taskrunner.NotifyTerminationSignals()
	defer stopSignals()

	executor, executorError := application.buildExecutor(command, invocation, definitionPath, signals)
	if executorError != nil {
		return invocation.Finish(runner.StatusSuccess, executorError)
	}

	return invocation.Execute(command.Context(), executor, plan)
}

func (application *Application) buildExecutor(command *cobra.Command, invocation *runner.Invocation, definitionPath string, signals <-chan os.Signal) (taskrunner.Executor, error) {
	runnerConfiguration := application.configuration.Runner
	shell := runnerConfiguration.Shell
	if shellOverride, shellChanged, shellFlagError := flagutils.StringFlag(command, shellFlagNameConstant); shellFlagError == nil && shellChanged {
		shell = shellOverride
	}

	workingDirectory := strings.TrimSpace(application.workingDirectory)
	if len(workingDirectory) == 0 {
		workingDirectory = filepath.Dir(definitionPath)
	}

	executionFlags, _ := flagutils.ResolveExecutionFlags(command)
	echoCommands := runnerConfiguration.EchoCommands
	if executionFlags.QuietSet {
		echoCommands = !executionFlags.Quiet
	}

	dependencies := taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{
			LoggerProvider:               invocation.Logger,
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			Shell:                        shell,
			ShellArguments:               runnerConfiguration.ShellArguments,
			TerminationGracePeriod:       runnerConfiguration.TerminationGracePeriod,
		},
		taskrunner.DependenciesOptions{
			Command: command,
			Signals: signals,
			Execution: runner.Configuration{
				WorkingDirectory: workingDirectory,
				Environment:      runnerConfiguration.Environment,
				EchoCommands:     echoCommands,
				StyleEcho:        runner.IsTerminal(command.ErrOrStderr()),
				DryRun:           executionFlags.DryRun,
			},
			Summary: application.summaryRequested,
		},
	)

	return taskrunner.Resolve(application.executorFactory, dependencies)
}

func (application *Application) resolveListFormat() (listing.Format, error) {
	formatValue := application.configuration.Runner.ListFormat
	if len(strings.TrimSpace(application.listFormat)) > 0 {
		formatValue = application.listFormat
	}
	normalizedFormat, choiceError := flagutils.NormalizeChoice(listFormatFlagNameConstant, formatValue, listing.Formats())
	if choiceError != nil {
		return "", choiceError
	}
	return listing.Format(normalizedFormat), nil
}

func (application *Application) locateDefinition() (string, error) {
	if explicitPath := strings.TrimSpace(application.taskFilePath); len(explicitPath) > 0 {
		return filepath.Abs(explicitPath)
	}

	currentDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	fileNames := application.configuration.Runner.FileNames
	if len(fileNames) == 0 {
		fileNames = taskfile.DefaultFileNames
	}

	definitionPath, locateError := taskfile.Locate(currentDirectory, fileNames)
	if locateError != nil {
		return "", fmt.Errorf(definitionNotFoundTemplateConstant, locateError, currentDirectory, strings.Join(fileNames, ", "))
	}
	return definitionPath, nil
}

func (application *Application) listTasks(command *cobra.Command, registry taskfile.Registry, format listing.Format) error {
	renderer, rendererError := listing.NewRenderer(format)
	if rendererError != nil {
		return runner.UsageError{Cause: rendererError}
	}
	return renderer.RenderList(command.OutOrStdout(), registry)
}

func (application *Application) showTask(command *cobra.Command, registry taskfile.Registry, format listing.Format) error {
	definition, lookupError := registry.Lookup(strings.TrimSpace(application.showTaskName))
	if lookupError != nil {
		return lookupError
	}
	renderer, rendererError := listing.NewRenderer(format)
	if rendererError != nil {
		return runner.UsageError{Cause: rendererError}
	}
	return renderer.RenderTask(command.OutOrStdout(), definition)
}

func (application *Application) handleConfigurationInitialization(arguments []string) error {
	initializationScope := strings.TrimSpace(application.configurationInitializationScope)
	if len(arguments) == 1 && initializationScope == configurationInitializationDefaultScopeConstant {
		initializationScope = arguments[0]
	}

	initializationPlan, planError := application.resolveConfigurationInitializationPlan(initializationScope)
	if planError != nil {
		return runner.UsageError{Cause: planError}
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if writeError := application.writeConfigurationFile(initializationPlan, configurationContent); writeError != nil {
		return runner.UsageError{Cause: writeError}
	}

	application.logger.Info(
		configurationInitializationSuccessMessageConstant,
		zap.String(configurationFileFieldConstant, initializationPlan.FilePath),
	)

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}

	return application.syncLoggerInstance(application.consoleLogger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.Flags(),
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
