// Package agent composes model bindings, system prompts, tools, and
// optional session memory into per-invocation agents. Reasoning and
// tool selection are delegated to the model provider; this package
// only assembles the pieces and executes the tool loop.
package agent
