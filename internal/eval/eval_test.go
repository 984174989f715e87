package eval

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openclaw/skillbench/internal/agent"
	"github.com/openclaw/skillbench/internal/logging"
)

// fakeRunner returns canned results keyed by prompt.
type fakeRunner struct {
	results map[string]*agent.RunResult
	errs    map[string]error
}

func (r *fakeRunner) Run(ctx context.Context, prompt string) (*agent.RunResult, error) {
	if err, ok := r.errs[prompt]; ok {
		return nil, err
	}
	if res, ok := r.results[prompt]; ok {
		return res, nil
	}
	return &agent.RunResult{ToolCalls: []agent.ToolCallRecord{}}, nil
}

func quietLogger() *logging.Logger {
	l := logging.New()
	l.SetOutput(io.Discard)
	return l
}

func writeCases(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCases(t *testing.T) {
	path := writeCases(t,
		`{"id": "t1", "prompt": "do it", "expect": {"files": ["hello.txt"]}}`,
		``,
		`{"id": "t2", "prompt": "other", "expect": {"skill_used": true, "must_run": ["pytest"]}}`,
	)

	cases, err := LoadCases(path)
	if err != nil {
		t.Fatalf("LoadCases failed: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].ID != "t1" || len(cases[0].Expect.Files) != 1 {
		t.Errorf("unexpected first case: %+v", cases[0])
	}
	if cases[1].Expect.SkillUsed == nil || !*cases[1].Expect.SkillUsed {
		t.Errorf("skill_used not parsed: %+v", cases[1].Expect)
	}
}

func TestLoadCasesMalformedLine(t *testing.T) {
	path := writeCases(t,
		`{"id": "ok", "prompt": "p", "expect": {}}`,
		`{not json`,
	)

	_, err := LoadCases(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error must carry the line number, got %v", err)
	}
}

func TestSkillUsedHeuristic(t *testing.T) {
	tests := []struct {
		name  string
		calls []agent.ToolCallRecord
		want  bool
	}{
		{"manifest read", []agent.ToolCallRecord{
			{Type: "read", Name: "read_file", Path: "skills/foo/SKILL.md"},
		}, true},
		{"manifest read mixed case", []agent.ToolCallRecord{
			{Type: "read", Name: "read_file", Path: "skills/foo/Skill.MD"},
		}, true},
		{"scripts shell", []agent.ToolCallRecord{
			{Type: "shell", Name: "run_shell", Command: "python scripts/convert.py in.csv"},
		}, true},
		{"plain read", []agent.ToolCallRecord{
			{Type: "read", Name: "read_file", Path: "data.csv"},
		}, false},
		{"plain shell", []agent.ToolCallRecord{
			{Type: "shell", Name: "run_shell", Command: "ls -la"},
		}, false},
		{"no calls", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &agent.RunResult{ToolCalls: tt.calls}
			if got := skillUsed(res); got != tt.want {
				t.Errorf("skillUsed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustRunPatternsAreLiteral(t *testing.T) {
	res := &agent.RunResult{ToolCalls: []agent.ToolCallRecord{
		{Type: "shell", Name: "run_shell", Command: "axb"},
	}}

	// "a.b" would match "axb" as a regex; as a literal it must not.
	checks := applyChecks(Expect{MustRun: []string{"a.b"}}, res)
	if len(checks) != 1 || checks[0].Passed {
		t.Errorf("regex metacharacters must be literal, got %+v", checks)
	}

	checks = applyChecks(Expect{MustRun: []string{"axb"}}, res)
	if !checks[0].Passed {
		t.Errorf("exact substring must match, got %+v", checks)
	}
}

func TestApplyChecksOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "out.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := &agent.RunResult{
		WorkspaceDir: dir,
		ToolCalls: []agent.ToolCallRecord{
			{Type: "shell", Name: "run_shell", Command: "python scripts/run.py"},
		},
	}
	expect := Expect{
		SkillUsed:  boolPtr(true),
		MustRun:    []string{"scripts/run.py"},
		MustNotRun: []string{"rm -rf"},
		Files:      []string{"out.txt"},
	}

	checks := applyChecks(expect, res)
	wantNames := []string{
		"routing.skill_used",
		"process.must_run",
		"process.must_not_run",
		"outcome.file_exists",
	}
	if len(checks) != len(wantNames) {
		t.Fatalf("expected %d checks, got %d", len(wantNames), len(checks))
	}
	for i, w := range wantNames {
		if checks[i].Name != w {
			t.Errorf("check %d: expected %q, got %q", i, w, checks[i].Name)
		}
		if !checks[i].Passed {
			t.Errorf("check %q should pass: %+v", w, checks[i])
		}
	}
}

func TestEvaluateFilePresencePasses(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{results: map[string]*agent.RunResult{
		"Create hello.txt containing hi": {
			WorkspaceDir: dir,
			FinalText:    "Created the file.",
			ToolCalls: []agent.ToolCallRecord{
				{Type: "write", Name: "write_file", CallID: "c1", Path: "hello.txt"},
			},
		},
	}}

	cases := []Case{{
		ID:     "t1",
		Prompt: "Create hello.txt containing hi",
		Expect: Expect{Files: []string{"hello.txt"}},
	}}

	report := NewHarness(runner, quietLogger(), 0).Evaluate(context.Background(), cases)
	if report.Passed != 1 || report.Total != 1 {
		t.Fatalf("expected 1/1, got %d/%d", report.Passed, report.Total)
	}
	if !report.OK() {
		t.Error("report must be OK when all cases pass")
	}
	r := report.Results[0]
	if !r.Passed || r.ID != "t1" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.FinalTextExcerpt != "Created the file." {
		t.Errorf("unexpected excerpt: %q", r.FinalTextExcerpt)
	}
}

func TestEvaluateForbiddenCommandFails(t *testing.T) {
	runner := &fakeRunner{results: map[string]*agent.RunResult{
		"clean up": {
			WorkspaceDir: t.TempDir(),
			ToolCalls: []agent.ToolCallRecord{
				{Type: "shell", Name: "run_shell", CallID: "c1", Command: "rm -rf /tmp/x"},
			},
		},
	}}

	cases := []Case{{
		ID:     "t2",
		Prompt: "clean up",
		Expect: Expect{MustNotRun: []string{"rm -rf"}},
	}}

	report := NewHarness(runner, quietLogger(), 0).Evaluate(context.Background(), cases)
	if report.Passed != 0 {
		t.Fatalf("expected 0 passed, got %d", report.Passed)
	}
	r := report.Results[0]
	if r.Passed {
		t.Error("case must fail")
	}
	if len(r.Checks) != 1 || r.Checks[0].Name != "process.must_not_run" || r.Checks[0].Passed {
		t.Errorf("expected failing must_not_run check, got %+v", r.Checks)
	}
	if r.Checks[0].Pattern != "rm -rf" {
		t.Errorf("check must carry the pattern, got %q", r.Checks[0].Pattern)
	}
}

func TestEvaluateContinuesPastRunnerCrash(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ok.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{
		errs: map[string]error{
			"crash": fmt.Errorf("runner failed: exit status 1: API key missing"),
		},
		results: map[string]*agent.RunResult{
			"fine": {WorkspaceDir: dir},
		},
	}

	cases := []Case{
		{ID: "c1", Prompt: "crash", Expect: Expect{Files: []string{"anything.txt"}}},
		{ID: "c2", Prompt: "fine", Expect: Expect{Files: []string{"ok.txt"}}},
	}

	report := NewHarness(runner, quietLogger(), 0).Evaluate(context.Background(), cases)
	if report.Total != 2 || report.Passed != 1 {
		t.Fatalf("expected 1/2, got %d/%d", report.Passed, report.Total)
	}

	crashed := report.Results[0]
	if crashed.Passed {
		t.Error("crashed case must fail")
	}
	if len(crashed.Checks) != 1 || crashed.Checks[0].Name != "runner.completed" {
		t.Fatalf("expected runner.completed check, got %+v", crashed.Checks)
	}
	if !strings.Contains(crashed.Checks[0].Error, "API key missing") {
		t.Errorf("check must carry the runner error, got %q", crashed.Checks[0].Error)
	}
	if !report.Results[1].Passed {
		t.Error("batch must continue to the next case")
	}
}

func TestExcerptTruncation(t *testing.T) {
	long := strings.Repeat("é", 500)
	runner := &fakeRunner{results: map[string]*agent.RunResult{
		"talk": {WorkspaceDir: t.TempDir(), FinalText: long},
	}}

	report := NewHarness(runner, quietLogger(), 400).Evaluate(context.Background(),
		[]Case{{ID: "t", Prompt: "talk"}})

	got := report.Results[0].FinalTextExcerpt
	if len([]rune(got)) != 400 {
		t.Errorf("expected 400-rune excerpt, got %d runes", len([]rune(got)))
	}
	if !strings.HasPrefix(long, got) {
		t.Error("excerpt must be a prefix of the final text")
	}
}

func TestEmptyExpectPasses(t *testing.T) {
	runner := &fakeRunner{}
	report := NewHarness(runner, quietLogger(), 0).Evaluate(context.Background(),
		[]Case{{ID: "noop", Prompt: "anything"}})
	if !report.OK() {
		t.Errorf("a case with no expectations must pass, got %+v", report.Results)
	}
}
