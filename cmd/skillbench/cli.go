// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Config  string `help:"Config file path" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Chat     ChatCmd     `cmd:"" help:"Interactive chat session against an isolated workspace"`
	Run      RunCmd      `cmd:"" help:"Run one headless agent turn and emit its trace as JSON"`
	Eval     EvalCmd     `cmd:"" help:"Score eval cases and print the aggregate report"`
	Skills   SkillsCmd   `cmd:"" help:"Skill utilities"`
	Sessions SessionsCmd `cmd:"" help:"Session audit utilities"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// ChatCmd starts an interactive session.
type ChatCmd struct {
	Workdir      string   `required:"" help:"Repo root to copy into an isolated workspace"`
	SkillsDir    string   `name:"skills-dir" default:"skills" help:"Skills directory, relative to the workspace"`
	ContextFiles []string `name:"context-files" help:"Context files to inject (workspace-relative, order preserved)"`
	PersonaFiles []string `name:"persona-files" help:"Persona files to inject (workspace-relative, order preserved)"`
	MaxSteps     int      `name:"max-steps" help:"Max tool-loop iterations per turn"`
	Budget       int      `help:"Max total characters of injected context"`
}

// RunCmd runs one headless turn. This is the process boundary the eval
// harness drives: the RunResult JSON goes to stdout, everything else to
// stderr.
type RunCmd struct {
	Workdir   string `required:"" help:"Repo root to copy into an isolated workspace"`
	SkillsDir string `name:"skills-dir" default:"skills" help:"Skills directory, relative to the workspace"`
	Prompt    string `required:"" help:"User prompt for the turn"`
	MaxSteps  int    `name:"max-steps" help:"Max tool-loop iterations"`
	Budget    int    `help:"Max total characters of injected context"`
}

// EvalCmd scores a batch of cases.
type EvalCmd struct {
	Cases     string `arg:"" optional:"" help:"JSONL case file (default from config)"`
	Workdir   string `required:"" help:"Repo root each case copies into its own workspace"`
	SkillsDir string `name:"skills-dir" default:"skills" help:"Skills directory, relative to the workspace"`
	Runner    string `help:"Runner binary (default: this executable)"`
}

// SkillsCmd groups skill utilities.
type SkillsCmd struct {
	List SkillsListCmd `cmd:"" help:"List discovered skills"`
}

// SkillsListCmd enumerates skill manifests under a root.
type SkillsListCmd struct {
	Workdir   string `default:"." help:"Root to search under"`
	SkillsDir string `name:"skills-dir" default:"skills" help:"Skills directory, relative to the root"`
}

// SessionsCmd groups session audit utilities.
type SessionsCmd struct {
	Show SessionsShowCmd `cmd:"" help:"Print one recorded session as JSON"`
}

// SessionsShowCmd loads a session audit file by ID.
type SessionsShowCmd struct {
	ID string `arg:"" help:"Session ID"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
