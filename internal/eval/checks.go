package eval

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/openclaw/skillbench/internal/agent"
)

// Check is one named pass/fail assertion with its diagnostic fields.
type Check struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Got     *bool  `json:"got,omitempty"`
	Want    *bool  `json:"want,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	File    string `json:"file,omitempty"`
	Error   string `json:"error,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

// skillUsed is the routing heuristic: a read of a path naming a skill
// manifest, or a shell command referencing a scripts directory. It is
// intentionally approximate.
func skillUsed(res *agent.RunResult) bool {
	for _, tc := range res.ToolCalls {
		if tc.Type == "read" && strings.Contains(strings.ToLower(tc.Path), "skill.md") {
			return true
		}
		if tc.Type == "shell" && strings.Contains(tc.Command, "scripts/") {
			return true
		}
	}
	return false
}

// shellCommands collects the command field of every shell-type entry.
func shellCommands(res *agent.RunResult) []string {
	var cmds []string
	for _, tc := range res.ToolCalls {
		if tc.Type == "shell" {
			cmds = append(cmds, tc.Command)
		}
	}
	return cmds
}

// applyChecks scores one run against the case expectations, in fixed
// category order: routing, process, outcome. Patterns are literal
// substrings, not regular expressions.
func applyChecks(expect Expect, res *agent.RunResult) []Check {
	var checks []Check

	if expect.SkillUsed != nil {
		got := skillUsed(res)
		want := *expect.SkillUsed
		checks = append(checks, Check{
			Name:   "routing.skill_used",
			Passed: got == want,
			Got:    boolPtr(got),
			Want:   boolPtr(want),
		})
	}

	cmds := shellCommands(res)
	for _, pat := range expect.MustRun {
		found := false
		for _, cmd := range cmds {
			if strings.Contains(cmd, pat) {
				found = true
				break
			}
		}
		checks = append(checks, Check{
			Name:    "process.must_run",
			Passed:  found,
			Pattern: pat,
		})
	}
	for _, pat := range expect.MustNotRun {
		found := false
		for _, cmd := range cmds {
			if strings.Contains(cmd, pat) {
				found = true
				break
			}
		}
		checks = append(checks, Check{
			Name:    "process.must_not_run",
			Passed:  !found,
			Pattern: pat,
		})
	}

	for _, rel := range expect.Files {
		_, err := os.Stat(filepath.Join(res.WorkspaceDir, rel))
		checks = append(checks, Check{
			Name:   "outcome.file_exists",
			Passed: err == nil,
			File:   rel,
		})
	}

	return checks
}
