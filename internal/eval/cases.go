package eval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Case is one declarative eval case, one JSON object per line in the
// case file.
type Case struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Expect Expect `json:"expect"`
}

// Expect holds the recognized expectation options. Absent options are
// simply not checked.
type Expect struct {
	SkillUsed  *bool    `json:"skill_used,omitempty"`
	MustRun    []string `json:"must_run,omitempty"`
	MustNotRun []string `json:"must_not_run,omitempty"`
	Files      []string `json:"files,omitempty"`
}

// LoadCases reads newline-delimited JSON cases. Blank lines are
// ignored; a malformed line fails the load with its line number.
func LoadCases(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cases: %w", err)
	}
	defer f.Close()

	var cases []Case
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c Case
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("parse case at line %d: %w", lineNo, err)
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	return cases, nil
}
