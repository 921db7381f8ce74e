// Package listing renders task registries for humans and for tools.
package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tyemirov/taskr/internal/taskfile"
)

// Format selects how tasks are rendered.
type Format string

// Supported formats.
const (
	FormatText  Format = "text"
	FormatNames Format = "names"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

const (
	textListHeaderConstant       = "Available tasks:"
	textListIndentConstant       = "    "
	textDescriptionMarker        = "# "
	textDescriptionGapConstant   = 1
	textCommandIndentConstant    = "    "
	taskHeaderTerminatorConstant = ":"
	quietMarkerConstant          = "@"
	jsonIndentConstant           = "  "
	yamlIndentConstant           = 2
	unsupportedFormatTemplate    = "unsupported list format %q"
)

// Formats returns the supported format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatNames), string(FormatYAML), string(FormatJSON)}
}

// Renderer writes a whole registry or a single task.
type Renderer interface {
	RenderList(writer io.Writer, registry taskfile.Registry) error
	RenderTask(writer io.Writer, definition taskfile.Definition) error
}

// NewRenderer returns the renderer for format.
func NewRenderer(format Format) (Renderer, error) {
	switch Format(strings.ToLower(strings.TrimSpace(string(format)))) {
	case FormatText:
		return textRenderer{}, nil
	case FormatNames:
		return namesRenderer{}, nil
	case FormatYAML:
		return yamlRenderer{}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf(unsupportedFormatTemplate, format)
	}
}

// TaskDocument is the serialized shape of one task.
type TaskDocument struct {
	Name        string            `yaml:"name" json:"name"`
	Parameters  []string          `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Line        int               `yaml:"line" json:"line"`
	Commands    []CommandDocument `yaml:"commands" json:"commands"`
}

// CommandDocument is the serialized shape of one command line.
type CommandDocument struct {
	Text  string `yaml:"text" json:"text"`
	Quiet bool   `yaml:"quiet,omitempty" json:"quiet,omitempty"`
	Line  int    `yaml:"line" json:"line"`
}

// NewTaskDocument converts a definition into its serialized shape.
func NewTaskDocument(definition taskfile.Definition) TaskDocument {
	document := TaskDocument{
		Name:        definition.Name,
		Parameters:  definition.Parameters,
		Description: definition.Description,
		Line:        definition.Line,
		Commands:    make([]CommandDocument, 0, len(definition.Commands)),
	}
	for _, command := range definition.Commands {
		document.Commands = append(document.Commands, CommandDocument{Text: command.Text, Quiet: command.Quiet, Line: command.Line})
	}
	return document
}

func taskDocuments(registry taskfile.Registry) []TaskDocument {
	definitions := registry.Definitions()
	documents := make([]TaskDocument, 0, len(definitions))
	for _, definition := range definitions {
		documents = append(documents, NewTaskDocument(definition))
	}
	return documents
}

func signature(definition taskfile.Definition) string {
	return strings.Join(append([]string{definition.Name}, definition.Parameters...), " ")
}

type textRenderer struct{}

func (textRenderer) RenderList(writer io.Writer, registry taskfile.Registry) error {
	definitions := registry.Definitions()
	signatureWidth := 0
	for _, definition := range definitions {
		if width := len(signature(definition)); width > signatureWidth {
			signatureWidth = width
		}
	}

	var builder strings.Builder
	builder.WriteString(textListHeaderConstant)
	builder.WriteString("\n")
	for _, definition := range definitions {
		builder.WriteString(textListIndentConstant)
		if len(definition.Description) == 0 {
			builder.WriteString(signature(definition))
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("%-*s", signatureWidth+textDescriptionGapConstant, signature(definition)))
		builder.WriteString(textDescriptionMarker)
		builder.WriteString(definition.Description)
		builder.WriteString("\n")
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

// RenderTask prints the task the way it is written in a definition file.
func (textRenderer) RenderTask(writer io.Writer, definition taskfile.Definition) error {
	var builder strings.Builder
	if len(definition.Description) > 0 {
		builder.WriteString(textDescriptionMarker)
		builder.WriteString(definition.Description)
		builder.WriteString("\n")
	}
	builder.WriteString(signature(definition))
	builder.WriteString(taskHeaderTerminatorConstant)
	builder.WriteString("\n")
	for _, command := range definition.Commands {
		builder.WriteString(textCommandIndentConstant)
		if command.Quiet {
			builder.WriteString(quietMarkerConstant)
		}
		builder.WriteString(command.Text)
		builder.WriteString("\n")
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

type namesRenderer struct{}

func (namesRenderer) RenderList(writer io.Writer, registry taskfile.Registry) error {
	for _, taskName := range registry.Names() {
		if _, writeError := fmt.Fprintln(writer, taskName); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (namesRenderer) RenderTask(writer io.Writer, definition taskfile.Definition) error {
	_, writeError := fmt.Fprintln(writer, signature(definition))
	return writeError
}

type yamlRenderer struct{}

func (yamlRenderer) RenderList(writer io.Writer, registry taskfile.Registry) error {
	return encodeYAML(writer, taskDocuments(registry))
}

func (yamlRenderer) RenderTask(writer io.Writer, definition taskfile.Definition) error {
	return encodeYAML(writer, NewTaskDocument(definition))
}

func encodeYAML(writer io.Writer, value any) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

type jsonRenderer struct{}

func (jsonRenderer) RenderList(writer io.Writer, registry taskfile.Registry) error {
	return encodeJSON(writer, taskDocuments(registry))
}

func (jsonRenderer) RenderTask(writer io.Writer, definition taskfile.Definition) error {
	return encodeJSON(writer, NewTaskDocument(definition))
}

func encodeJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndentConstant)
	return encoder.Encode(value)
}
