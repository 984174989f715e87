// Package contextkit assembles budget-bounded instruction bundles from
// skill manifests, generic context files, and persona files. All entry
// points share one assembly algorithm so behavior never depends on how
// the bundle was requested.
package contextkit

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Labels for the marker blocks wrapping each emitted chunk.
const (
	LabelSkill       = "SKILL"
	LabelContext     = "CONTEXT"
	LabelPersonality = "PERSONALITY"
)

// Meta describes one discovered source file. For skills the metadata
// list covers every discovered manifest, including those whose text was
// dropped at the budget cutoff.
type Meta struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type candidate struct {
	name    string
	display string
	text    string
}

// header and footer wrap a chunk; both count against the budget.
func header(label, name, display string) string {
	return "\n\n===== " + label + " START: " + name + " | " + display + " =====\n"
}

func footer(label, name, display string) string {
	return "\n===== " + label + " END: " + name + " | " + display + " =====\n"
}

// assemble emits candidates in order until the next whole chunk would
// cross the budget. Chunks are never truncated; once one is dropped,
// everything after it is dropped too. Returns the bundle text and the
// number of chunks emitted.
func assemble(label string, candidates []candidate, budget int) (string, int) {
	var b strings.Builder
	used := 0
	emitted := 0
	for _, c := range candidates {
		block := header(label, c.name, c.display) + c.text + footer(label, c.name, c.display)
		if used+len(block) > budget {
			break
		}
		b.WriteString(block)
		used += len(block)
		emitted++
	}
	return b.String(), emitted
}

// BuildSkills walks skillsDir under root collecting SKILL.md manifests
// (case-insensitive), sorted lexicographically by their display path.
// Unreadable files are skipped. The metadata list covers every readable
// manifest discovered, even past the budget cutoff; the bundle text
// stops at the cutoff.
func BuildSkills(root, skillsDir string, budget int) (string, []Meta) {
	skillsRoot := filepath.Join(root, skillsDir)

	var paths []string
	filepath.WalkDir(skillsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), "SKILL.md") {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)

	var candidates []candidate
	var meta []Meta
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		text := string(data)

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		display := filepath.ToSlash(rel)

		md := ParseMetadata(text)
		meta = append(meta, Meta{Path: display, Name: md.Name, Description: md.Description})
		name := md.Name
		if name == "" {
			name = "(unnamed)"
		}
		candidates = append(candidates, candidate{name: name, display: display, text: text})
	}

	text, _ := assemble(LabelSkill, candidates, budget)
	return text, meta
}

// BuildFiles assembles an explicit ordered list of context files,
// resolved against root when relative. Order is preserved; unreadable
// files are skipped. Metadata covers emitted chunks only.
func BuildFiles(root string, paths []string, budget int) (string, []Meta) {
	return buildList(LabelContext, root, paths, budget)
}

// BuildPersona is BuildFiles with PERSONALITY markers.
func BuildPersona(root string, paths []string, budget int) (string, []Meta) {
	return buildList(LabelPersonality, root, paths, budget)
}

func buildList(label, root string, paths []string, budget int) (string, []Meta) {
	var candidates []candidate
	for _, path := range paths {
		resolved := path
		if root != "" && !filepath.IsAbs(path) {
			resolved = filepath.Join(root, path)
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			name:    filepath.Base(path),
			display: filepath.ToSlash(path),
			text:    string(data),
		})
	}

	text, emitted := assemble(label, candidates, budget)
	var meta []Meta
	for _, c := range candidates[:emitted] {
		meta = append(meta, Meta{Path: c.display, Name: c.name})
	}
	return text, meta
}
