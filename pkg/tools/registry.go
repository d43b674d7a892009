package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// Parameter defines a parameter for a tool.
type Parameter struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
}

// Definition defines a tool's metadata and handler. Name and
// Description are consumed by the model's tool-selection policy, so
// the description must state when the tool should be used. Handlers
// must tolerate being called zero or more times per request; the
// model, not this layer, decides the invocation count.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Handler     Handler     `json:"-"`
}

// Handler is the function signature for tool execution.
type Handler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Result represents the result of a tool execution.
type Result struct {
	Success bool        `json:"success"`
	Output  interface{} `json:"output,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Registry holds the closed set of tools available to the agent.
// Tools are registered once at startup and never mutated afterwards.
type Registry struct {
	tools   map[string]*Definition
	schemas map[string]*gojsonschema.Schema
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		tools:   make(map[string]*Definition),
		schemas: make(map[string]*gojsonschema.Schema),
		logger:  logger,
	}
}

// Register adds a tool definition and compiles its input schema.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(InputSchema(def)))
	if err != nil {
		return fmt.Errorf("tool %s: failed to compile schema: %w", def.Name, err)
	}

	r.tools[def.Name] = &def
	r.schemas[def.Name] = schema

	r.logger.Debug().Str("tool", def.Name).Msg("Tool registered")
	return nil
}

// Get returns a tool definition by name, or nil when unknown.
func (r *Registry) Get(name string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns all registered tool definitions, sorted by name.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.tools))
	for _, def := range r.tools {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute validates the arguments against the tool's schema and runs
// the handler. Validation happens here because argument shape is
// controlled by the model, not by trusted code.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]interface{}) Result {
	r.mu.RLock()
	def := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()

	if def == nil {
		return Result{Error: fmt.Sprintf("tool not found: %s", name)}
	}

	if params == nil {
		params = map[string]interface{}{}
	}

	validation, err := schema.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return Result{Error: fmt.Sprintf("tool %s: argument validation failed: %v", name, err)}
	}
	if !validation.Valid() {
		msg := fmt.Sprintf("tool %s: invalid arguments", name)
		for _, desc := range validation.Errors() {
			msg = fmt.Sprintf("%s; %s", msg, desc.String())
		}
		return Result{Error: msg}
	}

	applyParameterDefaults(def, params)

	output, err := def.Handler(ctx, params)
	if err != nil {
		r.logger.Warn().Str("tool", name).Err(err).Msg("Tool execution failed")
		return Result{Error: err.Error()}
	}

	return Result{Success: true, Output: output}
}

// InputSchema builds the JSON schema advertised to the model for a
// tool definition.
func InputSchema(def Definition) map[string]interface{} {
	properties := map[string]interface{}{}
	required := []string{}

	for _, param := range def.Parameters {
		properties[param.Name] = map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func applyParameterDefaults(def *Definition, params map[string]interface{}) {
	for _, param := range def.Parameters {
		if param.Default == nil {
			continue
		}
		if _, ok := params[param.Name]; !ok {
			params[param.Name] = param.Default
		}
	}
}
