// Package taskrunner hosts the shared abstractions for running a resolved
// taskr task. It exposes the `Executor` interface plus helpers (`Factory`,
// `Resolve`, `BuildDependencies`) so the CLI wires shells, streams and signals
// once and obtains an executor, while unit tests can swap in fakes. Every
// resolved executor can report a one-line summary when the task ends.
package taskrunner
