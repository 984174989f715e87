package agent

import "github.com/openclaw/skillbench/internal/llm"

// ToolCallRecord is one entry in a run's trace. Type is "read",
// "write", "shell", or "unknown"; the eval checks key off Type plus the
// Path and Command fields.
type ToolCallRecord struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	CallID  string `json:"call_id,omitempty"`
	Path    string `json:"path,omitempty"`
	Command string `json:"command,omitempty"`
}

// RunResult is the sole contract crossing the process boundary between
// an agent run and the eval harness.
type RunResult struct {
	WorkspaceDir string           `json:"workspace_dir"`
	FinalText    string           `json:"final_text"`
	ToolCalls    []ToolCallRecord `json:"tool_calls"`
}

// recordFor classifies a tool call for the trace.
func recordFor(tc llm.ToolCallResponse) ToolCallRecord {
	rec := ToolCallRecord{Name: tc.Name, CallID: tc.ID}
	switch tc.Name {
	case "read_file":
		rec.Type = "read"
		rec.Path, _ = tc.Args["path"].(string)
	case "write_file":
		rec.Type = "write"
		rec.Path, _ = tc.Args["path"].(string)
	case "run_shell":
		rec.Type = "shell"
		rec.Command, _ = tc.Args["command"].(string)
	default:
		rec.Type = "unknown"
	}
	return rec
}
