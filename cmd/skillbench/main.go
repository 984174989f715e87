// Package main is the entry point for the skillbench CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/openclaw/skillbench/internal/config"
	"github.com/openclaw/skillbench/internal/contextkit"
	"github.com/openclaw/skillbench/internal/credentials"
	"github.com/openclaw/skillbench/internal/llm"
	"github.com/openclaw/skillbench/internal/logging"
	"github.com/openclaw/skillbench/internal/session"
	"github.com/openclaw/skillbench/internal/telemetry"
	"github.com/openclaw/skillbench/internal/workspace"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// credentials.toml fills env vars the config layer reads; .env covers
	// anything else.
	if creds, _, err := credentials.Load(); err == nil && creds != nil {
		creds.Apply()
	}
	_ = godotenv.Load()
}

// appContext carries shared dependencies into command Run methods.
type appContext struct {
	cfg      *config.Config
	cfgPath  string
	logger   *logging.Logger
	telem    telemetry.Exporter
	sessions *session.Manager
}

func main() {
	var cli CLI
	parser := kong.Parse(&cli,
		kong.Name("skillbench"),
		kong.Description("Run tool-using agents against isolated workspaces and score their traces."),
		kong.UsageOnError(),
		kongVars(),
	)

	logger := logging.New()
	if cli.Verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	cfg, err := config.Resolve(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	app := &appContext{
		cfg:     cfg,
		cfgPath: cli.Config,
		logger:  logger,
		telem:   initTelemetry(cfg, logger),
	}
	if cfg.Storage.PersistSessions {
		app.sessions = session.NewManager(session.NewFileStore(filepath.Join(cfg.StoragePath(), "sessions")))
	}

	err = parser.Run(app)
	parser.FatalIfErrorf(err)
}

func initTelemetry(cfg *config.Config, logger *logging.Logger) telemetry.Exporter {
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint == "" {
		return telemetry.NewNoop()
	}
	exp, err := telemetry.New(context.Background(), telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		Protocol:    cfg.Telemetry.Protocol,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Headers:     cfg.Telemetry.Headers,
	})
	if err != nil {
		logger.Warn("telemetry disabled", map[string]interface{}{"error": err.Error()})
		return telemetry.NewNoop()
	}
	return exp
}

// newProvider builds the model provider from config.
func (a *appContext) newProvider() (llm.Provider, error) {
	retry := llm.RetryConfig{MaxRetries: a.cfg.LLM.MaxRetries}
	if a.cfg.LLM.RetryBackoff != "" {
		if d, err := time.ParseDuration(a.cfg.LLM.RetryBackoff); err == nil {
			retry.MaxBackoff = d
		}
	}
	return llm.NewProvider(llm.ProviderConfig{
		Provider:  a.cfg.LLM.Provider,
		Model:     a.cfg.LLM.Model,
		APIKey:    a.cfg.GetAPIKey(),
		BaseURL:   a.cfg.LLM.BaseURL,
		MaxTokens: a.cfg.LLM.MaxTokens,
		Retry:     retry,
	})
}

// prepareWorkspace clones the template tree into a fresh run directory
// with an explicit environment snapshot.
func prepareWorkspace(workdir string) (*workspace.Sandbox, error) {
	abs, err := filepath.Abs(workdir)
	if err != nil {
		return nil, fmt.Errorf("resolve workdir: %w", err)
	}
	return workspace.Clone(abs, os.Environ())
}

// buildPreamble assembles the system messages injected ahead of every
// turn: generic context, persona, then skills.
func buildPreamble(sb *workspace.Sandbox, skillsDir string, contextFiles, personaFiles []string, budget int, logger *logging.Logger) ([]llm.Message, []contextkit.Meta) {
	var preamble []llm.Message

	contextText, contextMeta := contextkit.BuildFiles(sb.Root(), contextFiles, budget)
	if contextText != "" {
		preamble = append(preamble, llm.Message{Role: "system", Content: contextText})
	}
	logger.ContextBuilt(contextkit.LabelContext, len(contextMeta), len(contextText))

	personaText, personaMeta := contextkit.BuildPersona(sb.Root(), personaFiles, budget)
	if personaText != "" {
		preamble = append(preamble, llm.Message{Role: "system", Content: personaText})
	}
	logger.ContextBuilt(contextkit.LabelPersonality, len(personaMeta), len(personaText))

	skillsText, skillsMeta := contextkit.BuildSkills(sb.Root(), skillsDir, budget)
	if skillsText != "" {
		preamble = append(preamble, llm.Message{Role: "system", Content: skillsText})
	}
	logger.ContextBuilt(contextkit.LabelSkill, len(skillsMeta), len(skillsText))

	return preamble, skillsMeta
}

// Run implements the version command.
func (c *VersionCmd) Run(app *appContext) error {
	fmt.Printf("skillbench version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
