//go:build unix

package execshell

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// SignalName returns the conventional name of a signal, such as SIGINT.
func SignalName(receivedSignal os.Signal) string {
	if receivedSignal == nil {
		return ""
	}
	if systemSignal, isSystemSignal := receivedSignal.(syscall.Signal); isSystemSignal {
		if signalName := unix.SignalName(systemSignal); len(signalName) > 0 {
			return signalName
		}
	}
	return receivedSignal.String()
}

func signaledExitCode(processState *os.ProcessState) (int, bool) {
	if processState == nil {
		return 0, false
	}
	waitStatus, isWaitStatus := processState.Sys().(syscall.WaitStatus)
	if !isWaitStatus || !waitStatus.Signaled() {
		return 0, false
	}
	return ExitCodeForSignal(waitStatus.Signal()), true
}
