// Package tools provides the declarative tool registry exposed to the
// agent. Each tool carries a name, usage guidance for the model's
// tool-selection policy, and a schema-validated input contract.
package tools
