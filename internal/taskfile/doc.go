// Package taskfile parses task definition files into an immutable Registry.
//
// A definition file maps task names to shell command lines:
//
//	# Build the native library.
//	build:
//	    ./build-linux-x86_64.sh
//
//	test-specific TEST:
//	    ./gradlew test --tests {{TEST}}
//
// Unindented lines ending in ':' are headers (task name followed by parameter
// names). Indented lines are the task's commands. Load rejects malformed
// sources with a ParseError that names the source and line.
package taskfile
