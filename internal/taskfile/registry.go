package taskfile

// Registry holds the tasks of one definition source in declaration order.
// It is never modified after Load; accessors hand out copies.
type Registry struct {
	source      string
	order       []string
	definitions map[string]Definition
}

func newRegistry(source string, definitions []Definition) Registry {
	registry := Registry{
		source:      source,
		order:       make([]string, 0, len(definitions)),
		definitions: make(map[string]Definition, len(definitions)),
	}
	for definitionIndex := range definitions {
		definition := definitions[definitionIndex]
		registry.order = append(registry.order, definition.Name)
		registry.definitions[definition.Name] = definition
	}
	return registry
}

// Source names the definition source the registry was loaded from.
func (registry Registry) Source() string {
	return registry.source
}

// Len reports the number of tasks.
func (registry Registry) Len() int {
	return len(registry.order)
}

// Names returns task names in declaration order.
func (registry Registry) Names() []string {
	return append([]string(nil), registry.order...)
}

// Definitions returns copies of all definitions in declaration order.
func (registry Registry) Definitions() []Definition {
	definitions := make([]Definition, 0, len(registry.order))
	for _, taskName := range registry.order {
		definitions = append(definitions, registry.definitions[taskName].clone())
	}
	return definitions
}

// Lookup returns the named definition or a NotFoundError.
func (registry Registry) Lookup(taskName string) (Definition, error) {
	definition, exists := registry.definitions[taskName]
	if !exists {
		return Definition{}, NotFoundError{TaskName: taskName}
	}
	return definition.clone(), nil
}
