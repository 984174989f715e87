package contextkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSkill(t *testing.T, root, dir, content string) {
	t.Helper()
	full := filepath.Join(root, "skills", dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(full, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSkillsMarkers(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "foo", "---\nname: \"Foo Skill\"\n---\nUse the foo script.")

	text, meta := BuildSkills(root, "skills", 1<<20)

	wantStart := "===== SKILL START: Foo Skill | skills/foo/SKILL.md ====="
	wantEnd := "===== SKILL END: Foo Skill | skills/foo/SKILL.md ====="
	if !strings.Contains(text, wantStart) {
		t.Errorf("bundle missing start marker %q in:\n%s", wantStart, text)
	}
	if !strings.Contains(text, wantEnd) {
		t.Errorf("bundle missing end marker %q in:\n%s", wantEnd, text)
	}
	if !strings.Contains(text, "Use the foo script.") {
		t.Error("bundle missing manifest body")
	}

	if len(meta) != 1 {
		t.Fatalf("expected 1 metadata entry, got %d", len(meta))
	}
	if meta[0].Path != "skills/foo/SKILL.md" {
		t.Errorf("expected path %q, got %q", "skills/foo/SKILL.md", meta[0].Path)
	}
	if meta[0].Name != "Foo Skill" {
		t.Errorf("expected name %q, got %q", "Foo Skill", meta[0].Name)
	}
}

func TestBuildSkillsMetadataDescription(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "conv", "---\nname: converter\ndescription: Converts CSV files to JSON\n---\nbody")
	writeSkill(t, root, "odd", "---\nname: odd\nbroken: [unclosed\n---\nbody")

	_, meta := BuildSkills(root, "skills", 1<<20)
	if len(meta) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(meta))
	}
	if meta[0].Name != "converter" || meta[0].Description != "Converts CSV files to JSON" {
		t.Errorf("frontmatter description not extracted: %+v", meta[0])
	}
	// Malformed YAML still yields the line-scan name, no description.
	if meta[1].Name != "odd" || meta[1].Description != "" {
		t.Errorf("unexpected metadata for malformed frontmatter: %+v", meta[1])
	}
}

func TestBuildSkillsUnnamedFallback(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "bare", "Just text, no frontmatter.")

	text, meta := BuildSkills(root, "skills", 1<<20)

	if !strings.Contains(text, "===== SKILL START: (unnamed) | skills/bare/SKILL.md =====") {
		t.Errorf("expected (unnamed) marker, got:\n%s", text)
	}
	if len(meta) != 1 || meta[0].Name != "" {
		t.Errorf("metadata name must stay empty for unnamed skills, got %+v", meta)
	}
}

func TestBuildSkillsOrdering(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "zeta", "---\nname: zeta\n---\nz")
	writeSkill(t, root, "alpha", "---\nname: alpha\n---\na")
	writeSkill(t, root, "mid", "---\nname: mid\n---\nm")

	_, meta := BuildSkills(root, "skills", 1<<20)

	if len(meta) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(meta))
	}
	want := []string{"skills/alpha/SKILL.md", "skills/mid/SKILL.md", "skills/zeta/SKILL.md"}
	for i, w := range want {
		if meta[i].Path != w {
			t.Errorf("position %d: expected %q, got %q", i, w, meta[i].Path)
		}
	}
}

func TestBuildSkillsBudgetCutoff(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "a", "---\nname: a\n---\n"+strings.Repeat("x", 100))
	writeSkill(t, root, "b", "---\nname: b\n---\n"+strings.Repeat("y", 100))
	writeSkill(t, root, "c", "---\nname: c\n---\n"+strings.Repeat("z", 100))

	full, _ := BuildSkills(root, "skills", 1<<20)
	firstEnd := strings.Index(full, "===== SKILL END: a | skills/a/SKILL.md =====\n")
	if firstEnd < 0 {
		t.Fatal("first chunk missing from unbounded bundle")
	}
	oneChunk := firstEnd + len("===== SKILL END: a | skills/a/SKILL.md =====\n")

	// Budget covers the first chunk but not the second.
	text, meta := BuildSkills(root, "skills", oneChunk+10)

	if !strings.Contains(text, "SKILL START: a") {
		t.Error("first chunk should fit the budget")
	}
	if strings.Contains(text, "SKILL START: b") || strings.Contains(text, "SKILL START: c") {
		t.Errorf("chunks past the cutoff must be dropped whole:\n%s", text)
	}
	if strings.Contains(text, "yyy") || strings.Contains(text, "zzz") {
		t.Error("dropped chunks must not be truncated into the bundle")
	}
	if len(text) > oneChunk+10 {
		t.Errorf("bundle length %d exceeds budget %d", len(text), oneChunk+10)
	}

	// Metadata still lists every readable manifest.
	if len(meta) != 3 {
		t.Errorf("metadata must cover all manifests past the cutoff, got %d", len(meta))
	}
}

func TestBuildSkillsBudgetPrefixProperty(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "a", "---\nname: a\n---\naaa")
	writeSkill(t, root, "b", "---\nname: b\n---\nbbb")
	writeSkill(t, root, "c", "---\nname: c\n---\nccc")

	full, _ := BuildSkills(root, "skills", 1<<20)

	// For every budget, the bundle is a prefix of the unbounded bundle
	// and never exceeds the budget.
	for budget := 0; budget <= len(full)+5; budget += 7 {
		text, _ := BuildSkills(root, "skills", budget)
		if len(text) > budget {
			t.Fatalf("budget %d: bundle length %d exceeds budget", budget, len(text))
		}
		if !strings.HasPrefix(full, text) {
			t.Fatalf("budget %d: bundle is not a prefix of the unbounded bundle", budget)
		}
	}
}

func TestBuildSkillsZeroBudget(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "foo", "---\nname: foo\n---\nbody")

	text, meta := BuildSkills(root, "skills", 0)
	if text != "" {
		t.Errorf("zero budget must produce an empty bundle, got %q", text)
	}
	if len(meta) != 1 {
		t.Errorf("zero budget must still list metadata, got %d entries", len(meta))
	}
}

func TestBuildSkillsMissingDir(t *testing.T) {
	root := t.TempDir()
	text, meta := BuildSkills(root, "no-such-dir", 1<<20)
	if text != "" || len(meta) != 0 {
		t.Errorf("missing skills dir must yield empty results, got %q / %+v", text, meta)
	}
}

func TestBuildSkillsCaseInsensitiveManifest(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "skills", "low")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skill.md"), []byte("---\nname: low\n---\nx"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, meta := BuildSkills(root, "skills", 1<<20)
	if len(meta) != 1 || meta[0].Name != "low" {
		t.Errorf("lowercase skill.md must be discovered, got %+v", meta)
	}
}

func TestBuildFilesOrderAndMeta(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "b.md"), []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.md"), []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, meta := BuildFiles(root, []string{"b.md", "a.md"}, 1<<20)

	// Caller order wins over lexical order.
	if strings.Index(text, "second") > strings.Index(text, "first") {
		t.Error("context files must keep caller order")
	}
	if !strings.Contains(text, "===== CONTEXT START: b.md | b.md =====") {
		t.Errorf("missing context marker:\n%s", text)
	}
	if len(meta) != 2 || meta[0].Path != "b.md" || meta[1].Path != "a.md" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestBuildFilesMetaOnlyCoversEmitted(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.md"), []byte("aaa"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.md"), []byte(strings.Repeat("b", 500)), 0o644); err != nil {
		t.Fatal(err)
	}

	full, _ := BuildFiles(root, []string{"a.md"}, 1<<20)

	_, meta := BuildFiles(root, []string{"a.md", "b.md"}, len(full))
	if len(meta) != 1 || meta[0].Path != "a.md" {
		t.Errorf("metadata must cover emitted chunks only, got %+v", meta)
	}
}

func TestBuildFilesSkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "ok.md"), []byte("fine"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, meta := BuildFiles(root, []string{"missing.md", "ok.md"}, 1<<20)
	if !strings.Contains(text, "fine") {
		t.Error("readable file must survive an unreadable sibling")
	}
	if len(meta) != 1 || meta[0].Path != "ok.md" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestBuildPersonaLabel(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "persona.md"), []byte("Be terse."), 0o644); err != nil {
		t.Fatal(err)
	}

	text, _ := BuildPersona(root, []string{"persona.md"}, 1<<20)
	if !strings.Contains(text, "===== PERSONALITY START: persona.md | persona.md =====") {
		t.Errorf("expected PERSONALITY marker:\n%s", text)
	}
}
