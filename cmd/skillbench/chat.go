package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/openclaw/skillbench/internal/agent"
	"github.com/openclaw/skillbench/internal/contextkit"
	"github.com/openclaw/skillbench/internal/session"
	"github.com/openclaw/skillbench/internal/tools"
)

const (
	toolOutputTruncate = 200
	chatWrapWidth      = 100
)

var (
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Run implements the chat command: a line-oriented REPL over one
// isolated workspace. 'clear' resets the conversation to the system
// preamble (rebuilding skills if the watcher saw changes); 'exit' or
// 'quit' ends the session.
func (c *ChatCmd) Run(app *appContext) error {
	ctx := context.Background()
	logger := app.logger.WithComponent("chat")

	sb, err := prepareWorkspace(c.Workdir)
	if err != nil {
		return err
	}

	budget := c.Budget
	if budget <= 0 {
		budget = app.cfg.Agent.ContextBudget
	}
	maxSteps := c.MaxSteps
	if maxSteps <= 0 {
		maxSteps = app.cfg.Agent.MaxSteps
	}
	contextFiles := c.ContextFiles
	if len(contextFiles) == 0 {
		contextFiles = app.cfg.Agent.ContextFiles
	}
	personaFiles := c.PersonaFiles
	if len(personaFiles) == 0 {
		personaFiles = app.cfg.Agent.PersonaFiles
	}

	preamble, skillsMeta := buildPreamble(sb, c.SkillsDir, contextFiles, personaFiles, budget, logger)

	provider, err := app.newProvider()
	if err != nil {
		return err
	}

	registry := tools.NewRegistry(sb, app.logger)
	loop := agent.New(provider, registry, preamble, maxSteps, app.logger)

	var sess *session.Session
	if app.sessions != nil {
		sess, _ = app.sessions.Create(session.KindChat, "", sb.Root())
	}
	loop.SetHooks(chatHooks(app, sess))

	watcher, err := contextkit.NewWatcher(filepath.Join(sb.Root(), c.SkillsDir), app.logger)
	if err != nil {
		watcher = nil
	} else if startErr := watcher.Start(ctx); startErr != nil {
		watcher.Stop()
		watcher = nil
	} else {
		defer watcher.Stop()
	}

	fmt.Printf("Interactive session started. Workspace: %s\n", sb.Root())
	printSkillsSummary(skillsMeta)
	fmt.Println("Type 'exit' or 'quit' to end the session, 'clear' to clear conversation history.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			if sess != nil {
				app.sessions.Complete(sess.ID, "")
			}
			return nil
		case "clear":
			if watcher != nil && watcher.Dirty() {
				preamble, skillsMeta = buildPreamble(sb, c.SkillsDir, contextFiles, personaFiles, budget, logger)
				loop.ReplacePreamble(preamble)
				watcher.ClearDirty()
				printSkillsSummary(skillsMeta)
			} else {
				loop.Reset()
			}
			if sess != nil {
				app.sessions.AddEvent(sess.ID, session.Event{Type: session.EventClear})
			}
			fmt.Println("Conversation cleared.")
			continue
		}

		if sess != nil {
			app.sessions.AddEvent(sess.ID, session.Event{Type: session.EventUser, Content: input})
		}

		tr, err := loop.Run(ctx, input)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("error: %v", err)))
			continue
		}
		if sess != nil {
			app.sessions.AddEvent(sess.ID, session.Event{Type: session.EventAssistant, Content: tr.FinalText})
		}

		fmt.Println()
		fmt.Println(assistantStyle.Render("Assistant: ") + wordwrap.String(tr.FinalText, chatWrapWidth))
		fmt.Println()
	}

	if sess != nil {
		app.sessions.Complete(sess.ID, "")
	}
	return scanner.Err()
}

func chatHooks(app *appContext, sess *session.Session) agent.Hooks {
	return agent.Hooks{
		OnToolCall: func(name string, args map[string]interface{}) {
			fmt.Println()
			fmt.Println(toolStyle.Render(fmt.Sprintf("[Calling %s: %s]", name, describeArgs(name, args))))
			if sess != nil {
				app.sessions.AddEvent(sess.ID, session.Event{Type: session.EventToolCall, Tool: name, Args: args})
			}
		},
		OnToolResult: func(name string, output string, isError bool) {
			line := fmt.Sprintf("[Output: %s]", truncate(output, toolOutputTruncate))
			if isError {
				fmt.Println(errorStyle.Render(line))
			} else {
				fmt.Println(toolStyle.Render(line))
			}
			if sess != nil {
				ev := session.Event{Type: session.EventToolResult, Tool: name, Content: output}
				if isError {
					ev.Error = output
				}
				app.sessions.AddEvent(sess.ID, ev)
			}
		},
	}
}

func describeArgs(name string, args map[string]interface{}) string {
	switch name {
	case "read_file", "write_file":
		s, _ := args["path"].(string)
		return s
	case "run_shell":
		s, _ := args["command"].(string)
		return s
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func printSkillsSummary(meta []contextkit.Meta) {
	names := make([]string, 0, len(meta))
	for _, m := range meta {
		if m.Name != "" {
			names = append(names, m.Name)
		} else {
			names = append(names, m.Path)
		}
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("Loaded %d skill(s): %s", len(meta), strings.Join(names, ", "))))
}
