package contextkit

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterScanWindow bounds how far the closing delimiter may be
// from the top of the file.
const frontmatterScanWindow = 2000

// Metadata is the recognized frontmatter content of a skill manifest.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// splitFrontmatter returns the frontmatter block (without delimiters)
// and whether one was found. The first line must be exactly "---" after
// trimming; the closing "---" must appear within the scan window.
func splitFrontmatter(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", false
	}
	limit := len(lines)
	if limit > frontmatterScanWindow {
		limit = frontmatterScanWindow
	}
	for i := 1; i < limit; i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), true
		}
	}
	return "", false
}

// ExtractName pulls the skill name from an optional frontmatter block.
// The first line beginning with "name:" (case-insensitive) wins, with
// surrounding quotes stripped. Missing delimiters or key yield "".
func ExtractName(text string) string {
	block, ok := splitFrontmatter(text)
	if !ok {
		return ""
	}
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= 5 && strings.EqualFold(trimmed[:5], "name:") {
			value := strings.TrimSpace(trimmed[5:])
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

// ParseMetadata decodes the full frontmatter block. YAML errors are not
// fatal: the line-scan name is used as a fallback so a malformed block
// with a recognizable name: line still yields the name.
func ParseMetadata(text string) Metadata {
	var md Metadata
	if block, ok := splitFrontmatter(text); ok {
		yaml.Unmarshal([]byte(block), &md)
	}
	if md.Name == "" {
		md.Name = ExtractName(text)
	}
	return md
}
