package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openclaw/skillbench/internal/agent"
	"github.com/openclaw/skillbench/internal/session"
	"github.com/openclaw/skillbench/internal/tools"
)

// Run implements the run command: one headless turn against a fresh
// workspace clone. The RunResult JSON is the only thing written to
// stdout; a returned error surfaces as a non-zero exit with the message
// on stderr.
func (c *RunCmd) Run(app *appContext) error {
	ctx := context.Background()
	logger := app.logger.WithComponent("run")

	sb, err := prepareWorkspace(c.Workdir)
	if err != nil {
		return err
	}

	var sess *session.Session
	if app.sessions != nil {
		sess, _ = app.sessions.Create(session.KindRun, c.Prompt, sb.Root())
	}
	if sess != nil {
		logger = logger.WithRunID(sess.ID)
	}
	logger.Info("workspace ready", map[string]interface{}{"dir": sb.Root()})

	budget := c.Budget
	if budget <= 0 {
		budget = app.cfg.Agent.ContextBudget
	}
	maxSteps := c.MaxSteps
	if maxSteps <= 0 {
		maxSteps = app.cfg.Agent.MaxSteps
	}

	preamble, skillsMeta := buildPreamble(sb, c.SkillsDir, app.cfg.Agent.ContextFiles, app.cfg.Agent.PersonaFiles, budget, logger)
	logger.Info("skills loaded", map[string]interface{}{"count": len(skillsMeta)})

	provider, err := app.newProvider()
	if err != nil {
		return err
	}

	registry := tools.NewRegistry(sb, logger)
	loop := agent.New(provider, registry, preamble, maxSteps, logger)

	if sess != nil {
		loop.SetHooks(agent.Hooks{
			OnToolCall: func(name string, args map[string]interface{}) {
				app.sessions.AddEvent(sess.ID, session.Event{Type: session.EventToolCall, Tool: name, Args: args})
			},
			OnToolResult: func(name string, output string, isError bool) {
				ev := session.Event{Type: session.EventToolResult, Tool: name, Content: output}
				if isError {
					ev.Error = output
				}
				app.sessions.AddEvent(sess.ID, ev)
			},
		})
	}

	app.telem.LogEvent(ctx, "run_start", map[string]interface{}{"workspace": sb.Root()})

	tr, err := loop.Run(ctx, c.Prompt)
	if err != nil {
		if sess != nil {
			app.sessions.Fail(sess.ID, err.Error())
		}
		return fmt.Errorf("agent run: %w", err)
	}

	app.telem.LogEvent(ctx, "run_complete", map[string]interface{}{
		"steps":      tr.Steps,
		"bounded":    tr.Bounded,
		"tool_calls": len(tr.Trace),
	})
	defer app.telem.Close(ctx)

	if sess != nil {
		app.sessions.Complete(sess.ID, tr.FinalText)
	}

	result := agent.RunResult{
		WorkspaceDir: sb.Root(),
		FinalText:    tr.FinalText,
		ToolCalls:    tr.Trace,
	}
	if result.ToolCalls == nil {
		result.ToolCalls = []agent.ToolCallRecord{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
