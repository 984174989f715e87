// Package agent drives the bounded tool-calling conversation loop.
package agent

import (
	"context"
	"time"

	"github.com/openclaw/skillbench/internal/llm"
	"github.com/openclaw/skillbench/internal/logging"
	"github.com/openclaw/skillbench/internal/tools"
)

// DefaultMaxSteps bounds one user turn.
const DefaultMaxSteps = 20

// Hooks are optional observers for interactive output. All fields are
// nil-safe.
type Hooks struct {
	OnToolCall   func(name string, args map[string]interface{})
	OnToolResult func(name string, output string, isError bool)
	OnText       func(text string)
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	FinalText string
	Steps     int
	// Bounded is true when the turn exited at the step limit instead
	// of a model response without tool calls.
	Bounded bool
	Trace   []ToolCallRecord
}

// Loop holds the conversation state for a sequence of user turns
// against one workspace. Conversation items are append-only; Reset
// truncates back to the system preamble.
type Loop struct {
	provider llm.Provider
	registry *tools.Registry
	preamble []llm.Message
	messages []llm.Message
	maxSteps int
	logger   *logging.Logger
	hooks    Hooks
	trace    []ToolCallRecord
}

// New creates a Loop. The preamble (assembled context plus skill
// bundle) survives Reset; maxSteps <= 0 selects the default.
func New(provider llm.Provider, registry *tools.Registry, preamble []llm.Message, maxSteps int, logger *logging.Logger) *Loop {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	l := &Loop{
		provider: provider,
		registry: registry,
		preamble: append([]llm.Message(nil), preamble...),
		maxSteps: maxSteps,
		logger:   logger.WithComponent("agent"),
	}
	l.messages = append([]llm.Message(nil), l.preamble...)
	return l
}

// SetHooks installs interactive observers.
func (l *Loop) SetHooks(h Hooks) {
	l.hooks = h
}

// Trace returns every tool call recorded since construction or the
// last Reset.
func (l *Loop) Trace() []ToolCallRecord {
	return l.trace
}

// Reset drops all turn history, returning the conversation to the
// system preamble.
func (l *Loop) Reset() {
	l.messages = append([]llm.Message(nil), l.preamble...)
	l.trace = nil
}

// ReplacePreamble swaps the system preamble and resets the
// conversation. Used when the skill bundle went stale.
func (l *Loop) ReplacePreamble(preamble []llm.Message) {
	l.preamble = append([]llm.Message(nil), preamble...)
	l.Reset()
}

func (l *Loop) toolDefs() []llm.ToolDef {
	defs := l.registry.Definitions()
	out := make([]llm.ToolDef, 0, len(defs))
	for _, d := range defs {
		out = append(out, llm.ToolDef{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return out
}

// Run executes one user turn. Each step sends the full conversation
// plus tool schema to the model; tool calls are executed sequentially
// in the order received, with exactly one result appended per call.
// The step limit is a soft cap: reaching it surfaces whatever partial
// final text exists rather than failing.
func (l *Loop) Run(ctx context.Context, userInput string) (*TurnResult, error) {
	l.logger.TurnStart(userInput)
	start := time.Now()

	l.messages = append(l.messages, llm.Message{Role: "user", Content: userInput})
	traceStart := len(l.trace)

	var finalText string
	for step := 0; step < l.maxSteps; step++ {
		resp, err := l.provider.Chat(ctx, llm.ChatRequest{
			Messages: l.messages,
			Tools:    l.toolDefs(),
		})
		if err != nil {
			return nil, err
		}

		if resp.Content != "" {
			finalText = resp.Content
			if l.hooks.OnText != nil {
				l.hooks.OnText(resp.Content)
			}
		}

		if len(resp.ToolCalls) == 0 {
			l.logger.TurnComplete(step+1, time.Since(start))
			return &TurnResult{
				FinalText: finalText,
				Steps:     step + 1,
				Trace:     l.trace[traceStart:],
			}, nil
		}

		// The model's own tool-call records stay visible to it.
		l.messages = append(l.messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			if l.hooks.OnToolCall != nil {
				l.hooks.OnToolCall(tc.Name, tc.Args)
			}
			res := l.registry.Execute(ctx, tc.Name, tc.Args)
			if l.hooks.OnToolResult != nil {
				l.hooks.OnToolResult(tc.Name, res.ForLLM, res.IsError)
			}
			l.trace = append(l.trace, recordFor(tc))
			l.messages = append(l.messages, llm.Message{
				Role:       "tool",
				Content:    res.ForLLM,
				ToolCallID: tc.ID,
			})
		}
	}

	l.logger.StepBound(l.maxSteps)
	l.logger.TurnComplete(l.maxSteps, time.Since(start))
	return &TurnResult{
		FinalText: finalText,
		Steps:     l.maxSteps,
		Bounded:   true,
		Trace:     l.trace[traceStart:],
	}, nil
}
