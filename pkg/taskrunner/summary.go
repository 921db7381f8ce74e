package taskrunner

import (
	"fmt"
	"strings"
	"time"

	"github.com/tyemirov/taskr/internal/runner"
)

// SummaryData is what the summary line reports about a finished task.
type SummaryData struct {
	TaskName    string
	Status      runner.Status
	ExitCode    int
	CommandsRun int
	Duration    time.Duration
}

// RenderSummaryLine returns the summary line printed after a task, or an
// empty string when no task name is known.
func RenderSummaryLine(data SummaryData) string {
	taskName := strings.TrimSpace(data.TaskName)
	if len(taskName) == 0 {
		return ""
	}

	status := data.Status
	if len(status) == 0 {
		status = runner.StatusSuccess
	}

	duration := data.Duration
	if duration < 0 {
		duration = 0
	}
	durationHuman := duration.Round(time.Millisecond).String()

	parts := []string{
		fmt.Sprintf("Summary: task=%s", taskName),
		fmt.Sprintf("status=%s", status),
		fmt.Sprintf("exit_code=%d", data.ExitCode),
		fmt.Sprintf("commands=%d", data.CommandsRun),
		fmt.Sprintf("duration_human=%s", durationHuman),
		fmt.Sprintf("duration_ms=%d", duration.Milliseconds()),
	}
	return strings.Join(parts, " ")
}
