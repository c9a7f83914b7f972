// ABOUTME: Model table for the langchain target: model name to chat-model constructor expression.
// ABOUTME: Unknown models are an error rather than a silent default.
package creator

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownModel is returned for models missing from the model table.
var ErrUnknownModel = errors.New("model not found")

// ModelConfig describes how generated code constructs a chat model.
type ModelConfig struct {
	Provider string
	Class    string
	Args     string
}

// Expression is the Python constructor call, e.g. ChatOpenAI(**{"model": "gpt-4o"}).
func (m ModelConfig) Expression() string {
	return m.Class + "(**" + m.Args + ")"
}

var models = map[string]ModelConfig{
	"gpt-4o-mini": {Provider: "openai", Class: "ChatOpenAI", Args: `{"model": "gpt-4o-mini"}`},
	"gpt-4o":      {Provider: "openai", Class: "ChatOpenAI", Args: `{"model": "gpt-4o"}`},
	"claude-2":    {Provider: "anthropic", Class: "ChatAnthropic", Args: `{"model": "claude-2"}`},
}

// LookupModel returns the table entry for name.
func LookupModel(name string) (ModelConfig, error) {
	m, ok := models[name]
	if !ok {
		return ModelConfig{}, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return m, nil
}

// Models returns the known model names, sorted.
func Models() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
