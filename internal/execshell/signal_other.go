//go:build !unix

package execshell

import "os"

// SignalName returns the platform description of a signal.
func SignalName(receivedSignal os.Signal) string {
	if receivedSignal == nil {
		return ""
	}
	return receivedSignal.String()
}

func signaledExitCode(processState *os.ProcessState) (int, bool) {
	return 0, false
}
