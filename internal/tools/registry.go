// Package tools provides the tool registry and the fixed built-in tool
// set exposed to the model.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openclaw/skillbench/internal/logging"
	"github.com/openclaw/skillbench/internal/workspace"
)

// Tool represents an executable tool.
type Tool interface {
	// Name returns the tool name.
	Name() string
	// Description returns a description for the LLM.
	Description() string
	// Parameters returns the JSON schema for parameters.
	Parameters() map[string]interface{}
	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]interface{}) *Result
}

// ToolDefinition is the LLM-facing tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Registry is a closed handler table: the tool set is fixed at
// construction and dispatch never raises. Unknown names produce a
// sentinel result the model can see.
type Registry struct {
	order  []string
	tools  map[string]Tool
	logger *logging.Logger
}

// NewRegistry creates a registry with the built-in tools bound to the
// given sandbox.
func NewRegistry(sb *workspace.Sandbox, logger *logging.Logger) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool),
		logger: logger.WithComponent("tools"),
	}
	r.register(&readFileTool{sb: sb})
	r.register(&writeFileTool{sb: sb})
	r.register(&runShellTool{sb: sb})
	return r
}

func (r *Registry) register(t Tool) {
	r.order = append(r.order, t.Name())
	r.tools[t.Name()] = t
}

// Definitions returns LLM-facing definitions in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Execute dispatches one call. Every call gets exactly one result; an
// unrecognized name yields the "Unknown tool" sentinel rather than
// dropping the call.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) *Result {
	t, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown_tool", map[string]interface{}{"tool": name})
		return TextResult(fmt.Sprintf("Unknown tool: %s", name))
	}

	r.logger.ToolCall(name, args)
	start := time.Now()
	res := t.Execute(ctx, args)
	var err error
	if res.IsError {
		err = fmt.Errorf("%s", res.ForLLM)
	}
	r.logger.ToolResult(name, time.Since(start), err)
	return res
}

// stringArg extracts a required string argument.
func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

// --- Built-in tools ---

type readFileTool struct {
	sb *workspace.Sandbox
}

func (t *readFileTool) Name() string { return "read_file" }

func (t *readFileTool) Description() string {
	return "Read a UTF-8 text file from the workspace by relative path."
}

func (t *readFileTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the file to read, relative to the workspace root",
			},
		},
		"required":             []string{"path"},
		"additionalProperties": false,
	}
}

func (t *readFileTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	path, ok := stringArg(args, "path")
	if !ok {
		return ErrorResult("read_file: path is required")
	}
	content, err := t.sb.Read(path)
	if err != nil {
		return ErrorResult(fmt.Sprintf("read_file: %v", err))
	}
	return TextResult(content)
}

type writeFileTool struct {
	sb *workspace.Sandbox
}

func (t *writeFileTool) Name() string { return "write_file" }

func (t *writeFileTool) Description() string {
	return "Write a UTF-8 text file to the workspace by relative path."
}

func (t *writeFileTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the file to write, relative to the workspace root",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Full content to write",
			},
		},
		"required":             []string{"path", "content"},
		"additionalProperties": false,
	}
}

func (t *writeFileTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	path, ok := stringArg(args, "path")
	if !ok {
		return ErrorResult("write_file: path is required")
	}
	content, ok := stringArg(args, "content")
	if !ok {
		return ErrorResult("write_file: content is required")
	}
	n, err := t.sb.Write(path, content)
	if err != nil {
		return ErrorResult(fmt.Sprintf("write_file: %v", err))
	}
	return TextResult(fmt.Sprintf("Wrote %d bytes to %s", n, path))
}

type runShellTool struct {
	sb *workspace.Sandbox
}

func (t *runShellTool) Name() string { return "run_shell" }

func (t *runShellTool) Description() string {
	return "Run a shell command in the workspace. Return stdout/stderr and exit code."
}

func (t *runShellTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"command": map[string]interface{}{
				"type":        "string",
				"description": "Shell command to execute",
			},
		},
		"required":             []string{"command"},
		"additionalProperties": false,
	}
}

func (t *runShellTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	command, ok := stringArg(args, "command")
	if !ok {
		return ErrorResult("run_shell: command is required")
	}
	res, err := t.sb.Run(ctx, command)
	if err != nil {
		return ErrorResult(fmt.Sprintf("run_shell: %v", err))
	}
	encoded, err := json.Marshal(res)
	if err != nil {
		return ErrorResult(fmt.Sprintf("run_shell: %v", err))
	}
	return TextResult(string(encoded))
}
