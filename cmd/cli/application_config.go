package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tyemirov/taskr/internal/execshell"
	"github.com/tyemirov/taskr/internal/listing"
	"github.com/tyemirov/taskr/internal/taskfile"
	"github.com/tyemirov/taskr/internal/utils"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Runner ApplicationRunnerConfiguration `mapstructure:"runner"`
}

// ApplicationCommonConfiguration stores logging defaults.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationRunnerConfiguration controls task discovery and command execution.
type ApplicationRunnerConfiguration struct {
	FileNames              []string      `mapstructure:"file_names"`
	Shell                  string        `mapstructure:"shell"`
	ShellArguments         []string      `mapstructure:"shell_arguments"`
	EchoCommands           bool          `mapstructure:"echo_commands"`
	ListFormat             string        `mapstructure:"list_format"`
	TerminationGracePeriod time.Duration `mapstructure:"termination_grace_period"`
	Environment            []string      `mapstructure:"environment"`
}

type configurationInitializationPlan struct {
	DirectoryPath string
	FilePath      string
}

func configurationDefaults() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:               string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:              string(utils.LogFormatConsole),
		runnerFileNamesConfigKeyConstant:              append([]string(nil), taskfile.DefaultFileNames...),
		runnerShellConfigKeyConstant:                  execshell.DefaultShell,
		runnerShellArgumentsConfigKeyConstant:         append([]string(nil), execshell.DefaultShellArguments...),
		runnerEchoCommandsConfigKeyConstant:           true,
		runnerListFormatConfigKeyConstant:             string(listing.FormatText),
		runnerTerminationGracePeriodConfigKeyConstant: execshell.DefaultTerminationGracePeriod,
		runnerEnvironmentConfigKeyConstant:            []string{},
	}
}

func validateRunnerConfiguration(configuration ApplicationRunnerConfiguration) error {
	if configuration.TerminationGracePeriod < 0 {
		return fmt.Errorf(negativeGracePeriodTemplateConstant, configuration.TerminationGracePeriod)
	}
	for _, entry := range configuration.Environment {
		name, _, found := strings.Cut(entry, environmentEntrySeparatorConstant)
		if !found || len(strings.TrimSpace(name)) == 0 {
			return fmt.Errorf(invalidEnvironmentEntryTemplateConstant, entry)
		}
	}
	return nil
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		defaultSearchPaths := []string{defaultConfigurationSearchPathConstant}
		return append(defaultSearchPaths, application.resolveUserConfigurationDirectoryPaths()...)
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(candidateDirectoryPath string) {
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}
		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	if xdgConfigHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableConstant)); len(xdgConfigHome) > 0 {
		appendConfigurationDirectory(filepath.Join(xdgConfigHome, applicationNameConstant))
	}

	if userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir(); userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(filepath.Join(userConfigurationBaseDirectoryPath, applicationNameConstant))
	}

	if userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir(); userHomeDirectoryError == nil && len(strings.TrimSpace(userHomeDirectoryPath)) > 0 {
		appendConfigurationDirectory(filepath.Join(userHomeDirectoryPath, userConfigurationDirectoryNameConstant))
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) resolveConfigurationInitializationPlan(initializationScope string) (configurationInitializationPlan, error) {
	switch strings.ToLower(strings.TrimSpace(initializationScope)) {
	case "", configurationInitializationScopeLocalConstant:
		workingDirectoryPath, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationWorkingDirectoryErrorTemplateConstant, workingDirectoryError)
		}

		return configurationInitializationPlan{
			DirectoryPath: workingDirectoryPath,
			FilePath:      filepath.Join(workingDirectoryPath, configurationFileNameConstant),
		}, nil
	case configurationInitializationScopeUserConstant:
		configurationDirectoryPath, directoryError := application.userConfigurationDirectory()
		if directoryError != nil {
			return configurationInitializationPlan{}, directoryError
		}

		return configurationInitializationPlan{
			DirectoryPath: configurationDirectoryPath,
			FilePath:      filepath.Join(configurationDirectoryPath, configurationFileNameConstant),
		}, nil
	default:
		return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationUnsupportedScopeTemplateConstant, strings.TrimSpace(initializationScope))
	}
}

// userConfigurationDirectory prefers $XDG_CONFIG_HOME/taskr and falls back to $HOME/.taskr.
func (application *Application) userConfigurationDirectory() (string, error) {
	if xdgConfigHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableConstant)); len(xdgConfigHome) > 0 {
		return filepath.Join(xdgConfigHome, applicationNameConstant), nil
	}

	userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir()
	if userHomeDirectoryError != nil {
		return "", fmt.Errorf(configurationInitializationHomeDirectoryErrorTemplateConstant, userHomeDirectoryError)
	}

	trimmedHomeDirectoryPath := strings.TrimSpace(userHomeDirectoryPath)
	if len(trimmedHomeDirectoryPath) == 0 {
		return "", fmt.Errorf(
			configurationInitializationHomeDirectoryErrorTemplateConstant,
			errors.New(configurationInitializationHomeDirectoryEmptyErrorConstant),
		)
	}

	return filepath.Join(trimmedHomeDirectoryPath, userConfigurationDirectoryNameConstant), nil
}

func (application *Application) writeConfigurationFile(initializationPlan configurationInitializationPlan, configurationContent []byte) error {
	if len(configurationContent) == 0 {
		return errors.New(configurationInitializationContentUnavailableErrorConstant)
	}

	var parsedContent map[string]any
	if parseError := yaml.Unmarshal(configurationContent, &parsedContent); parseError != nil {
		return fmt.Errorf(configurationInitializationInvalidContentTemplateConstant, parseError)
	}

	directoryPath := initializationPlan.DirectoryPath
	directoryInfo, directoryStatError := os.Stat(directoryPath)
	switch {
	case directoryStatError == nil:
		if !directoryInfo.IsDir() {
			return fmt.Errorf(configurationInitializationDirectoryConflictTemplateConstant, directoryPath)
		}
	case errors.Is(directoryStatError, os.ErrNotExist):
		if createError := os.MkdirAll(directoryPath, configurationDirectoryPermissionConstant); createError != nil {
			return fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, directoryPath, createError)
		}
	default:
		return fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, directoryPath, directoryStatError)
	}

	fileInfo, fileStatError := os.Stat(initializationPlan.FilePath)
	switch {
	case fileStatError == nil:
		if fileInfo.IsDir() {
			return fmt.Errorf(configurationInitializationExistingDirectoryTemplateConstant, initializationPlan.FilePath)
		}
		if !application.configurationInitializationForced {
			return fmt.Errorf(configurationInitializationExistingFileTemplateConstant, initializationPlan.FilePath)
		}
	case errors.Is(fileStatError, os.ErrNotExist):
	default:
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, fileStatError)
	}

	if writeError := os.WriteFile(initializationPlan.FilePath, configurationContent, configurationFilePermissionConstant); writeError != nil {
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, writeError)
	}

	return nil
}
