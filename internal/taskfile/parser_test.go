package taskfile_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskr/internal/taskfile"
)

const (
	testSourceNameConstant           = "Taskrfile"
	testParseSubtestTemplateConstant = "%d_%s"
)

const testAndroidDefinitionSourceConstant = `# Build the Linux native library.
build-linux:
    ./build-linux-x86_64.sh

build-macos:
    ./build-macos-aarch64.sh
    ./build-macos-x86_64.sh

# Remove build outputs.
clean:
    rm -rf ../bdk-ffi/target/
    @rm -rf ./build/

publish-local:
    ./gradlew publishToMavenLocal --exclude-task signMavenPublication

test-specific TEST:
    # filter comes from the caller
    ./gradlew test --tests {{TEST}}

noop:
`

func TestLoadParsesTasksInDeclarationOrder(testInstance *testing.T) {
	registry, loadError := taskfile.Load(strings.NewReader(testAndroidDefinitionSourceConstant), testSourceNameConstant)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, testSourceNameConstant, registry.Source())
	require.Equal(testInstance, []string{"build-linux", "build-macos", "clean", "publish-local", "test-specific", "noop"}, registry.Names())
	require.Equal(testInstance, 6, registry.Len())

	buildLinux, lookupError := registry.Lookup("build-linux")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, "Build the Linux native library.", buildLinux.Description)
	require.Equal(testInstance, 2, buildLinux.Line)
	require.Equal(testInstance, []string{"./build-linux-x86_64.sh"}, buildLinux.CommandTexts())

	buildMacOS, lookupError := registry.Lookup("build-macos")
	require.NoError(testInstance, lookupError)
	require.Empty(testInstance, buildMacOS.Description)
	require.Equal(testInstance, []string{"./build-macos-aarch64.sh", "./build-macos-x86_64.sh"}, buildMacOS.CommandTexts())

	clean, lookupError := registry.Lookup("clean")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, "Remove build outputs.", clean.Description)
	require.Len(testInstance, clean.Commands, 2)
	require.False(testInstance, clean.Commands[0].Quiet)
	require.True(testInstance, clean.Commands[1].Quiet)
	require.Equal(testInstance, "rm -rf ./build/", clean.Commands[1].Text)
	require.Equal(testInstance, 12, clean.Commands[1].Line)

	testSpecific, lookupError := registry.Lookup("test-specific")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, []string{"TEST"}, testSpecific.Parameters)
	require.Equal(testInstance, []string{"./gradlew test --tests {{TEST}}"}, testSpecific.CommandTexts())

	noop, lookupError := registry.Lookup("noop")
	require.NoError(testInstance, lookupError)
	require.Empty(testInstance, noop.Commands)
}

func TestLoadAcceptsTabsAndCarriageReturns(testInstance *testing.T) {
	source := "build:\r\n\techo one\r\n\t\techo nested\r\n"
	registry, loadError := taskfile.Load(strings.NewReader(source), testSourceNameConstant)
	require.NoError(testInstance, loadError)

	build, lookupError := registry.Lookup("build")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, []string{"echo one", "\techo nested"}, build.CommandTexts())
}

func TestLoadKeepsEscapedBracesVerbatim(testInstance *testing.T) {
	source := "inspect CONTAINER:\n  docker inspect --format '{{{{.Id}}' {{CONTAINER}}\n  awk '{{{{print}}' ids.txt\n"
	registry, loadError := taskfile.Load(strings.NewReader(source), testSourceNameConstant)
	require.NoError(testInstance, loadError)

	inspect, lookupError := registry.Lookup("inspect")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, []string{"CONTAINER"}, inspect.Parameters)
	require.Equal(testInstance, []string{
		"docker inspect --format '{{{{.Id}}' {{CONTAINER}}",
		"awk '{{{{print}}' ids.txt",
	}, inspect.CommandTexts())
}

func TestLoadRejectsMalformedSources(testInstance *testing.T) {
	testCases := []struct {
		name           string
		source         string
		expectedLine   int
		expectedReason string
	}{
		{
			name:           "inconsistent_indentation",
			source:         "build:\n    echo one\n  echo two\n",
			expectedLine:   3,
			expectedReason: "inconsistent indentation",
		},
		{
			name:           "tabs_then_spaces",
			source:         "build:\n\techo one\n    echo two\n",
			expectedLine:   3,
			expectedReason: "inconsistent indentation",
		},
		{
			name:           "mixed_tabs_and_spaces",
			source:         "build:\n \techo one\n",
			expectedLine:   2,
			expectedReason: "mixes tabs and spaces",
		},
		{
			name:           "duplicate_task",
			source:         "build:\n  echo one\nbuild:\n  echo two\n",
			expectedLine:   3,
			expectedReason: `duplicate task "build" (first declared on line 1)`,
		},
		{
			name:           "undeclared_parameter",
			source:         "test-specific TEST:\n  ./gradlew test --tests {{FILTER}}\n",
			expectedLine:   2,
			expectedReason: `undeclared parameter "FILTER"`,
		},
		{
			name:           "unterminated_placeholder",
			source:         "test-specific TEST:\n  ./gradlew test --tests {{TEST\n",
			expectedLine:   2,
			expectedReason: "unterminated placeholder",
		},
		{
			name:           "invalid_placeholder",
			source:         "test-specific TEST:\n  ./gradlew test --tests {{TEST FILTER}}\n",
			expectedLine:   2,
			expectedReason: "invalid placeholder",
		},
		{
			name:           "command_outside_task",
			source:         "    echo orphan\n",
			expectedLine:   1,
			expectedReason: "outside of a task",
		},
		{
			name:           "command_after_top_level_comment",
			source:         "build:\n  echo one\n# note\n  echo two\n",
			expectedLine:   4,
			expectedReason: "outside of a task",
		},
		{
			name:           "missing_terminator",
			source:         "build\n  echo one\n",
			expectedLine:   1,
			expectedReason: "ending in ':'",
		},
		{
			name:           "quoted_top_level_line",
			source:         "\"build\":\n  echo one\n",
			expectedLine:   1,
			expectedReason: "quoted line",
		},
		{
			name:           "reserved_task_name",
			source:         "default:\n  taskr --list\n",
			expectedLine:   1,
			expectedReason: `task name "default" is reserved`,
		},
		{
			name:           "invalid_task_name",
			source:         "build:linux:\n  echo one\n",
			expectedLine:   1,
			expectedReason: "invalid task name",
		},
		{
			name:           "missing_task_name",
			source:         ":\n",
			expectedLine:   1,
			expectedReason: "has no name",
		},
		{
			name:           "empty_quiet_command",
			source:         "build:\n    @\n",
			expectedLine:   2,
			expectedReason: "quiet marker without a command",
		},
		{
			name:           "duplicate_parameter",
			source:         "deploy HOST HOST:\n  echo {{HOST}}\n",
			expectedLine:   1,
			expectedReason: `duplicate parameter "HOST"`,
		},
		{
			name:           "invalid_parameter",
			source:         "deploy 1HOST:\n  echo one\n",
			expectedLine:   1,
			expectedReason: "invalid parameter name",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testParseSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			_, loadError := taskfile.Load(strings.NewReader(testCase.source), testSourceNameConstant)
			require.Error(testInstance, loadError)
			require.True(testInstance, taskfile.IsParseError(loadError))

			var parseError taskfile.ParseError
			require.True(testInstance, errors.As(loadError, &parseError))
			require.Equal(testInstance, testSourceNameConstant, parseError.Source)
			require.Equal(testInstance, testCase.expectedLine, parseError.Line)
			require.Contains(testInstance, parseError.Reason, testCase.expectedReason)
			require.Contains(testInstance, loadError.Error(), fmt.Sprintf("%s:%d: ", testSourceNameConstant, testCase.expectedLine))
		})
	}
}

func TestLoadDescriptionRequiresAdjacentComment(testInstance *testing.T) {
	source := "# detached comment\n\nbuild:\n  echo one\n"
	registry, loadError := taskfile.Load(strings.NewReader(source), testSourceNameConstant)
	require.NoError(testInstance, loadError)

	build, lookupError := registry.Lookup("build")
	require.NoError(testInstance, lookupError)
	require.Empty(testInstance, build.Description)
}

func TestLoadIsDeterministic(testInstance *testing.T) {
	firstRegistry, firstError := taskfile.Load(strings.NewReader(testAndroidDefinitionSourceConstant), testSourceNameConstant)
	require.NoError(testInstance, firstError)
	secondRegistry, secondError := taskfile.Load(strings.NewReader(testAndroidDefinitionSourceConstant), testSourceNameConstant)
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, firstRegistry.Definitions(), secondRegistry.Definitions())
}

func TestLoadFile(testInstance *testing.T) {
	definitionPath := filepath.Join(testInstance.TempDir(), testSourceNameConstant)
	require.NoError(testInstance, os.WriteFile(definitionPath, []byte(testAndroidDefinitionSourceConstant), 0o600))

	registry, loadError := taskfile.LoadFile(definitionPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, definitionPath, registry.Source())
	require.Equal(testInstance, 6, registry.Len())

	_, missingError := taskfile.LoadFile(filepath.Join(testInstance.TempDir(), "missing"))
	require.Error(testInstance, missingError)
	require.True(testInstance, taskfile.IsParseError(missingError))
	require.ErrorIs(testInstance, missingError, os.ErrNotExist)
}
