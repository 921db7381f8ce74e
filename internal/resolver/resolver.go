// Package resolver binds caller-supplied argument values to a task's
// parameters and produces the command strings handed to the executor.
package resolver

import (
	"fmt"
	"strings"

	"github.com/tyemirov/taskr/internal/taskfile"
)

const (
	arityErrorTemplateConstant     = "task %q expects %d %s (%s), got %d"
	arityErrorNoParametersTemplate = "task %q takes no arguments, got %d"
	singularArgumentWordConstant   = "argument"
	pluralArgumentWordConstant     = "arguments"
	parameterListSeparatorConstant = " "
)

// Request names a task and carries the positional argument values for it.
type Request struct {
	TaskName  string
	Arguments []string
}

// Command is one fully substituted command line.
type Command struct {
	Text  string
	Quiet bool
	Line  int
}

// Plan is a resolved request: the definition plus its bound commands.
type Plan struct {
	Definition taskfile.Definition
	Arguments  []string
	Commands   []Command
}

// Strings returns the substituted command strings in execution order.
func (plan Plan) Strings() []string {
	texts := make([]string, 0, len(plan.Commands))
	for commandIndex := range plan.Commands {
		texts = append(texts, plan.Commands[commandIndex].Text)
	}
	return texts
}

// ArityError reports an argument count that differs from the declared parameters.
type ArityError struct {
	TaskName   string
	Parameters []string
	Received   int
}

// Error describes the expected and received argument counts.
func (arityError ArityError) Error() string {
	if len(arityError.Parameters) == 0 {
		return fmt.Sprintf(arityErrorNoParametersTemplate, arityError.TaskName, arityError.Received)
	}
	argumentWord := pluralArgumentWordConstant
	if len(arityError.Parameters) == 1 {
		argumentWord = singularArgumentWordConstant
	}
	return fmt.Sprintf(
		arityErrorTemplateConstant,
		arityError.TaskName,
		len(arityError.Parameters),
		argumentWord,
		strings.Join(arityError.Parameters, parameterListSeparatorConstant),
		arityError.Received,
	)
}

// Bind substitutes argumentValues positionally into the definition's command
// templates. The substitution is literal; no quoting or escaping is applied.
func Bind(definition taskfile.Definition, argumentValues []string) ([]Command, error) {
	if len(argumentValues) != len(definition.Parameters) {
		return nil, ArityError{
			TaskName:   definition.Name,
			Parameters: append([]string(nil), definition.Parameters...),
			Received:   len(argumentValues),
		}
	}

	values := make(map[string]string, len(definition.Parameters))
	for parameterIndex, parameterName := range definition.Parameters {
		values[parameterName] = argumentValues[parameterIndex]
	}

	commands := make([]Command, 0, len(definition.Commands))
	for _, commandLine := range definition.Commands {
		commands = append(commands, Command{
			Text:  taskfile.Expand(commandLine.Text, values),
			Quiet: commandLine.Quiet,
			Line:  commandLine.Line,
		})
	}
	return commands, nil
}

// Resolve looks up the requested task and binds its arguments. It returns a
// taskfile.NotFoundError for unknown tasks and an ArityError for count mismatches.
func Resolve(registry taskfile.Registry, request Request) (Plan, error) {
	definition, lookupError := registry.Lookup(request.TaskName)
	if lookupError != nil {
		return Plan{}, lookupError
	}

	commands, bindError := Bind(definition, request.Arguments)
	if bindError != nil {
		return Plan{}, bindError
	}

	return Plan{
		Definition: definition,
		Arguments:  append([]string(nil), request.Arguments...),
		Commands:   commands,
	}, nil
}
