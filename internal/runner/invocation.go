package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tyemirov/taskr/internal/resolver"
	"github.com/tyemirov/taskr/internal/taskfile"
)

// State is a stage in the life of one invocation.
type State string

// Invocation states, in order.
const (
	StateIdle       State = "idle"
	StateParsed     State = "parsed"
	StateResolved   State = "resolved"
	StateExecuting  State = "executing"
	StateTerminated State = "terminated"
)

const (
	// InvocationIdentifierLogField carries the per-invocation correlation id.
	InvocationIdentifierLogField = "invocation_id"

	invalidTransitionTemplate = "invalid invocation transition from %s to %s"
	stateChangedLogMessage    = "invocation state changed"
	invocationEndedLogMessage = "invocation terminated"
	fromStateLogField         = "from"
	toStateLogField           = "to"
	statusLogField            = "status"
	exitCodeLogField          = "exit_code"
)

var allowedTransitions = map[State][]State{
	StateIdle:      {StateParsed, StateTerminated},
	StateParsed:    {StateResolved, StateTerminated},
	StateResolved:  {StateExecuting, StateTerminated},
	StateExecuting: {StateTerminated},
}

// TransitionError reports a state change the invocation does not allow.
type TransitionError struct {
	From State
	To   State
}

func (transitionError TransitionError) Error() string {
	return fmt.Sprintf(invalidTransitionTemplate, transitionError.From, transitionError.To)
}

// RegistryLoader produces the registry for an invocation.
type RegistryLoader func() (taskfile.Registry, error)

// TaskExecutor runs a resolved command sequence; *Executor satisfies it.
type TaskExecutor interface {
	Run(executionContext context.Context, taskName string, commands []resolver.Command) (Result, error)
}

// Invocation drives one CLI call through Idle, Parsed, Resolved, Executing
// and Terminated. Parse, lookup and arity failures terminate without ever
// reaching Executing.
type Invocation struct {
	identifier string
	logger     *zap.Logger
	state      State
	history    []State
	result     Result
}

// NewInvocation starts an invocation in the Idle state with a fresh identifier.
func NewInvocation(logger *zap.Logger) *Invocation {
	if logger == nil {
		logger = zap.NewNop()
	}
	identifier := uuid.NewString()
	return &Invocation{
		identifier: identifier,
		logger:     logger.With(zap.String(InvocationIdentifierLogField, identifier)),
		state:      StateIdle,
		history:    []State{StateIdle},
	}
}

// Identifier returns the invocation's correlation id.
func (invocation *Invocation) Identifier() string {
	return invocation.identifier
}

// Logger returns the logger annotated with the invocation id.
func (invocation *Invocation) Logger() *zap.Logger {
	return invocation.logger
}

// State returns the current state.
func (invocation *Invocation) State() State {
	return invocation.state
}

// History returns every state entered so far, starting with Idle.
func (invocation *Invocation) History() []State {
	return append([]State(nil), invocation.history...)
}

// Result returns the terminal result; it is meaningful once Terminated.
func (invocation *Invocation) Result() Result {
	return invocation.result
}

// Load moves Idle to Parsed, or terminates with a parse-error result.
func (invocation *Invocation) Load(loader RegistryLoader) (taskfile.Registry, error) {
	registry, loadError := loader()
	if loadError != nil {
		return taskfile.Registry{}, invocation.fail(Result{}, loadError)
	}
	if transitionError := invocation.advance(StateParsed); transitionError != nil {
		return taskfile.Registry{}, transitionError
	}
	return registry, nil
}

// Resolve moves Parsed to Resolved, or terminates with not-found or malformed-arguments.
func (invocation *Invocation) Resolve(registry taskfile.Registry, request resolver.Request) (resolver.Plan, error) {
	plan, resolveError := resolver.Resolve(registry, request)
	if resolveError != nil {
		return resolver.Plan{}, invocation.fail(Result{TaskName: request.TaskName}, resolveError)
	}
	if transitionError := invocation.advance(StateResolved); transitionError != nil {
		return resolver.Plan{}, transitionError
	}
	return plan, nil
}

// Execute moves Resolved to Executing, runs the plan and terminates.
func (invocation *Invocation) Execute(executionContext context.Context, executor TaskExecutor, plan resolver.Plan) (Result, error) {
	if transitionError := invocation.advance(StateExecuting); transitionError != nil {
		return Result{}, transitionError
	}
	result, executionError := executor.Run(executionContext, plan.Definition.Name, plan.Commands)
	if terminateError := invocation.terminate(result); terminateError != nil {
		return result, terminateError
	}
	return result, executionError
}

// Finish terminates the invocation with an outcome produced outside Execute,
// such as listing tasks or a configuration failure. A non-nil err overrides
// status with the status derived from err.
func (invocation *Invocation) Finish(status Status, err error) (Result, error) {
	result := Result{Status: status, ExitCode: ExitCode(err)}
	if err != nil {
		result.Status = StatusForError(err)
	}
	if terminateError := invocation.terminate(result); terminateError != nil {
		return result, terminateError
	}
	return result, err
}

func (invocation *Invocation) fail(result Result, cause error) error {
	result.Status = StatusForError(cause)
	result.ExitCode = ExitCode(cause)
	if terminateError := invocation.terminate(result); terminateError != nil {
		return terminateError
	}
	return cause
}

func (invocation *Invocation) terminate(result Result) error {
	if transitionError := invocation.advance(StateTerminated); transitionError != nil {
		return transitionError
	}
	invocation.result = result
	invocation.logger.Debug(invocationEndedLogMessage,
		zap.String(statusLogField, string(result.Status)),
		zap.Int(exitCodeLogField, result.ExitCode),
	)
	return nil
}

func (invocation *Invocation) advance(nextState State) error {
	for _, allowedState := range allowedTransitions[invocation.state] {
		if allowedState != nextState {
			continue
		}
		invocation.logger.Debug(stateChangedLogMessage,
			zap.String(fromStateLogField, string(invocation.state)),
			zap.String(toStateLogField, string(nextState)),
		)
		invocation.state = nextState
		invocation.history = append(invocation.history, nextState)
		return nil
	}
	return TransitionError{From: invocation.state, To: nextState}
}
