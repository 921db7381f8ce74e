package runner

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	boldEchoTemplate  = "\x1b[1m%s\x1b[0m\n"
	plainEchoTemplate = "%s\n"
)

// IsTerminal reports whether writer is a terminal, which enables styled echo.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

type echoFormatter struct {
	styled bool
}

func (formatter echoFormatter) write(writer io.Writer, commandText string) {
	template := plainEchoTemplate
	if formatter.styled {
		template = boldEchoTemplate
	}
	_, _ = fmt.Fprintf(writer, template, commandText)
}
