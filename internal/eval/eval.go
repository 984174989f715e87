// Package eval scores black-box agent runs against declarative
// expectations. Runs cross a process boundary: the runner emits one
// RunResult JSON document on stdout.
package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/openclaw/skillbench/internal/agent"
	"github.com/openclaw/skillbench/internal/logging"
)

// Runner executes one agent run for a prompt and returns its trace.
type Runner interface {
	Run(ctx context.Context, prompt string) (*agent.RunResult, error)
}

// SubprocessRunner invokes the run subcommand of a runner binary and
// parses the RunResult JSON from its stdout. Stderr is captured for
// diagnostics only.
type SubprocessRunner struct {
	Bin        string // runner binary, typically the current executable
	Workdir    string // template tree the runner clones per run
	SkillsDir  string // skills root relative to the workspace
	ConfigPath string // optional explicit config file
}

// Run executes the runner process. A non-zero exit or malformed stdout
// is an error; the harness records it as a failed case.
func (r *SubprocessRunner) Run(ctx context.Context, prompt string) (*agent.RunResult, error) {
	args := []string{"run", "--workdir", r.Workdir, "--skills-dir", r.SkillsDir, "--prompt", prompt}
	if r.ConfigPath != "" {
		args = append(args, "--config", r.ConfigPath)
	}

	cmd := exec.CommandContext(ctx, r.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("runner failed: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("runner failed: %w", err)
	}

	var res agent.RunResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return nil, fmt.Errorf("runner produced malformed output: %w", err)
	}
	return &res, nil
}

// Result is one scored case.
type Result struct {
	ID               string  `json:"id"`
	Passed           bool    `json:"passed"`
	Checks           []Check `json:"checks"`
	FinalTextExcerpt string  `json:"final_text_excerpt"`
}

// Report is the aggregate output. Success means Passed == Total.
type Report struct {
	Passed  int      `json:"passed"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

// OK reports overall success.
func (r *Report) OK() bool {
	return r.Passed == r.Total
}

// Harness runs cases in isolation and aggregates their results.
type Harness struct {
	runner     Runner
	logger     *logging.Logger
	excerptLen int
}

// NewHarness creates a harness. excerptLen <= 0 selects the default of
// 400 characters.
func NewHarness(runner Runner, logger *logging.Logger, excerptLen int) *Harness {
	if excerptLen <= 0 {
		excerptLen = 400
	}
	return &Harness{
		runner:     runner,
		logger:     logger.WithComponent("eval"),
		excerptLen: excerptLen,
	}
}

// Evaluate scores every case. A runner boundary failure is recorded as
// a failed result and the batch continues.
func (h *Harness) Evaluate(ctx context.Context, cases []Case) *Report {
	report := &Report{Total: len(cases)}

	for _, c := range cases {
		start := time.Now()
		result := h.evaluateCase(ctx, c)
		if result.Passed {
			report.Passed++
		}
		report.Results = append(report.Results, result)
		h.logger.EvalCaseResult(c.ID, result.Passed, time.Since(start))
	}

	return report
}

func (h *Harness) evaluateCase(ctx context.Context, c Case) Result {
	res, err := h.runner.Run(ctx, c.Prompt)
	if err != nil {
		return Result{
			ID:     c.ID,
			Passed: false,
			Checks: []Check{{
				Name:   "runner.completed",
				Passed: false,
				Error:  err.Error(),
			}},
		}
	}

	checks := applyChecks(c.Expect, res)
	passed := true
	for _, ch := range checks {
		if !ch.Passed {
			passed = false
			break
		}
	}

	return Result{
		ID:               c.ID,
		Passed:           passed,
		Checks:           checks,
		FinalTextExcerpt: excerpt(res.FinalText, h.excerptLen),
	}
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
