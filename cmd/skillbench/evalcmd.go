package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openclaw/skillbench/internal/eval"
	"github.com/openclaw/skillbench/internal/session"
)

// Run implements the eval command. The aggregate report goes to stdout;
// the exit code is 0 only when every case passed.
func (c *EvalCmd) Run(app *appContext) error {
	ctx := context.Background()

	casesPath := c.Cases
	if casesPath == "" {
		casesPath = app.cfg.Eval.Cases
	}
	if casesPath == "" {
		return fmt.Errorf("no case file: pass one as an argument or set eval.cases in the config")
	}

	cases, err := eval.LoadCases(casesPath)
	if err != nil {
		return err
	}

	bin := c.Runner
	if bin == "" {
		bin = app.cfg.Eval.RunnerBin
	}
	if bin == "" {
		bin, err = os.Executable()
		if err != nil {
			return fmt.Errorf("locate runner binary: %w", err)
		}
	}

	runner := &eval.SubprocessRunner{
		Bin:        bin,
		Workdir:    c.Workdir,
		SkillsDir:  c.SkillsDir,
		ConfigPath: app.cfgPath,
	}
	harness := eval.NewHarness(runner, app.logger, app.cfg.Eval.ExcerptLen)

	var sess *session.Session
	if app.sessions != nil {
		sess, _ = app.sessions.Create(session.KindEval, casesPath, c.Workdir)
	}

	app.telem.LogEvent(ctx, "eval_start", map[string]interface{}{"cases": len(cases)})
	report := harness.Evaluate(ctx, cases)
	app.telem.LogEvent(ctx, "eval_complete", map[string]interface{}{
		"passed": report.Passed,
		"total":  report.Total,
	})
	app.telem.Close(ctx)

	if sess != nil {
		app.sessions.Complete(sess.ID, fmt.Sprintf("passed %d/%d", report.Passed, report.Total))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if !report.OK() {
		os.Exit(1)
	}
	return nil
}
