package taskfile

// CommandLine is one shell command of a task, as written in the source.
type CommandLine struct {
	// Text is the command template with the quiet marker removed.
	Text string
	// Quiet marks lines prefixed with '@'; they are not echoed before running.
	Quiet bool
	// Line is the 1-based source line.
	Line int
}

// Definition describes one named task.
type Definition struct {
	Name        string
	Parameters  []string
	Commands    []CommandLine
	Description string
	Line        int
}

// CommandTexts returns the command templates in declaration order.
func (definition Definition) CommandTexts() []string {
	texts := make([]string, 0, len(definition.Commands))
	for commandIndex := range definition.Commands {
		texts = append(texts, definition.Commands[commandIndex].Text)
	}
	return texts
}

func (definition Definition) clone() Definition {
	cloned := definition
	if definition.Parameters != nil {
		cloned.Parameters = append([]string(nil), definition.Parameters...)
	}
	if definition.Commands != nil {
		cloned.Commands = append([]CommandLine(nil), definition.Commands...)
	}
	return cloned
}
