package resolver_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskr/internal/resolver"
	"github.com/tyemirov/taskr/internal/taskfile"
)

const (
	testSourceNameConstant       = "Taskrfile"
	testAritySubtestTemplate     = "%s_with_%d_arguments"
	testSpecificTaskNameConstant = "test-specific"
	testFilterValueConstant      = "FooBar"
)

const testDefinitionSourceConstant = `build:
    ./build-linux-x86_64.sh

test-specific TEST:
    ./gradlew test --tests {{TEST}}
    @echo "ran {{ TEST }}"

deploy HOST PORT:
    scp ./build/app {{HOST}}:/srv/app
    ssh {{HOST}} -p {{PORT}} restart
`

func loadTestRegistry(testInstance *testing.T) taskfile.Registry {
	testInstance.Helper()
	registry, loadError := taskfile.Load(strings.NewReader(testDefinitionSourceConstant), testSourceNameConstant)
	require.NoError(testInstance, loadError)
	return registry
}

func argumentsOfLength(length int) []string {
	arguments := make([]string, 0, length)
	for argumentIndex := 0; argumentIndex < length; argumentIndex++ {
		arguments = append(arguments, fmt.Sprintf("value%d", argumentIndex))
	}
	return arguments
}

func TestBindSubstitutesLiterally(testInstance *testing.T) {
	registry := loadTestRegistry(testInstance)
	definition, lookupError := registry.Lookup(testSpecificTaskNameConstant)
	require.NoError(testInstance, lookupError)

	commands, bindError := resolver.Bind(definition, []string{testFilterValueConstant})
	require.NoError(testInstance, bindError)
	require.Len(testInstance, commands, 2)

	require.Equal(testInstance, "./gradlew test --tests FooBar", commands[0].Text)
	require.False(testInstance, commands[0].Quiet)
	require.Equal(testInstance, `echo "ran FooBar"`, commands[1].Text)
	require.True(testInstance, commands[1].Quiet)

	template := definition.Commands[0].Text
	placeholderIndex := strings.Index(template, "{{TEST}}")
	require.Equal(testInstance, template[:placeholderIndex], commands[0].Text[:placeholderIndex])
	require.Equal(testInstance, testFilterValueConstant, commands[0].Text[placeholderIndex:])
}

func TestBindDoesNotEscapeOrRescanValues(testInstance *testing.T) {
	registry := loadTestRegistry(testInstance)
	definition, lookupError := registry.Lookup("deploy")
	require.NoError(testInstance, lookupError)

	commands, bindError := resolver.Bind(definition, []string{"host; rm -rf /", "{{HOST}}"})
	require.NoError(testInstance, bindError)
	require.Equal(testInstance, "scp ./build/app host; rm -rf /:/srv/app", commands[0].Text)
	require.Equal(testInstance, "ssh host; rm -rf / -p {{HOST}} restart", commands[1].Text)
}

func TestBindSucceedsForEveryTaskWithCorrectArity(testInstance *testing.T) {
	registry := loadTestRegistry(testInstance)
	for _, definition := range registry.Definitions() {
		testInstance.Run(definition.Name, func(testInstance *testing.T) {
			looked, lookupError := registry.Lookup(definition.Name)
			require.NoError(testInstance, lookupError)

			commands, bindError := resolver.Bind(looked, argumentsOfLength(len(looked.Parameters)))
			require.NoError(testInstance, bindError)
			require.Len(testInstance, commands, len(looked.Commands))
			for _, command := range commands {
				require.NotContains(testInstance, command.Text, "{{")
			}
		})
	}
}

func TestBindRejectsWrongArity(testInstance *testing.T) {
	registry := loadTestRegistry(testInstance)
	for _, definition := range registry.Definitions() {
		declaredCount := len(definition.Parameters)
		candidateCounts := []int{declaredCount + 1}
		if declaredCount > 0 {
			candidateCounts = append(candidateCounts, declaredCount-1)
		}

		for _, argumentCount := range candidateCounts {
			testInstance.Run(fmt.Sprintf(testAritySubtestTemplate, definition.Name, argumentCount), func(testInstance *testing.T) {
				commands, bindError := resolver.Bind(definition, argumentsOfLength(argumentCount))
				require.Nil(testInstance, commands)

				var arityError resolver.ArityError
				require.True(testInstance, errors.As(bindError, &arityError))
				require.Equal(testInstance, definition.Name, arityError.TaskName)
				require.Equal(testInstance, argumentCount, arityError.Received)
				require.Equal(testInstance, strings.Join(definition.Parameters, " "), strings.Join(arityError.Parameters, " "))
			})
		}
	}
}

func TestArityErrorMessages(testInstance *testing.T) {
	require.Equal(testInstance, `task "build" takes no arguments, got 2`, resolver.ArityError{TaskName: "build", Received: 2}.Error())
	require.Equal(testInstance, `task "test-specific" expects 1 argument (TEST), got 0`, resolver.ArityError{TaskName: "test-specific", Parameters: []string{"TEST"}}.Error())
	require.Equal(testInstance, `task "deploy" expects 2 arguments (HOST PORT), got 3`, resolver.ArityError{TaskName: "deploy", Parameters: []string{"HOST", "PORT"}, Received: 3}.Error())
}

func TestResolve(testInstance *testing.T) {
	registry := loadTestRegistry(testInstance)

	plan, resolveError := resolver.Resolve(registry, resolver.Request{TaskName: testSpecificTaskNameConstant, Arguments: []string{testFilterValueConstant}})
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, testSpecificTaskNameConstant, plan.Definition.Name)
	require.Equal(testInstance, []string{testFilterValueConstant}, plan.Arguments)
	require.Equal(testInstance, []string{"./gradlew test --tests FooBar", `echo "ran FooBar"`}, plan.Strings())

	_, missingError := resolver.Resolve(registry, resolver.Request{TaskName: "publish"})
	var notFoundError taskfile.NotFoundError
	require.True(testInstance, errors.As(missingError, &notFoundError))

	_, arityError := resolver.Resolve(registry, resolver.Request{TaskName: "build", Arguments: []string{"extra"}})
	require.IsType(testInstance, resolver.ArityError{}, arityError)
}

func TestResolveIsDeterministicAcrossLoads(testInstance *testing.T) {
	request := resolver.Request{TaskName: "deploy", Arguments: []string{"example.org", "2222"}}

	firstPlan, firstError := resolver.Resolve(loadTestRegistry(testInstance), request)
	require.NoError(testInstance, firstError)
	secondPlan, secondError := resolver.Resolve(loadTestRegistry(testInstance), request)
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, firstPlan.Strings(), secondPlan.Strings())
}
