package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/openclaw/skillbench/internal/contextkit"
)

// Run implements skills list: enumerate every SKILL.md manifest under
// the skills root with its extracted name.
func (c *SkillsListCmd) Run(app *appContext) error {
	root, err := filepath.Abs(c.Workdir)
	if err != nil {
		return err
	}

	// A zero budget keeps the bundle empty; metadata still covers
	// every discovered manifest.
	_, meta := contextkit.BuildSkills(root, c.SkillsDir, 0)

	if len(meta) == 0 {
		fmt.Printf("No skills found under %s\n", filepath.Join(root, c.SkillsDir))
		return nil
	}

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	for _, m := range meta {
		name := m.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s  %s\n", nameStyle.Render(name), pathStyle.Render(m.Path))
		if m.Description != "" {
			fmt.Printf("    %s\n", descStyle.Render(m.Description))
		}
	}
	fmt.Printf("\n%d skill(s)\n", len(meta))
	return nil
}
