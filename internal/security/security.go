// Package security runs a fixed battery of independent pattern detectors
// over one canonical trace and produces a weighted score out of 16. The
// detectors are order-independent and data-driven (see rules.go): each
// either passes or deducts its fixed weight exactly once.
package security

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/traceval/internal/analyze"
	"github.com/crimson-sun/traceval/internal/model"
)

// corpora is the derived text the detectors scan: shell-style commands,
// file paths, and concatenated message text.
type corpora struct {
	byKind map[corpus][]string
}

// Analyze derives the corpora from the trace and runs the battery.
func Analyze(events []model.TraceEvent) model.SecurityResult {
	return Evaluate(events, nil, nil)
}

// Evaluate runs the battery. Commands and messages may be pre-extracted by
// a caller that already has them; nil means derive them here. Score starts
// at MaxScore, each failing detector deducts once, and the result is
// floored at zero.
func Evaluate(events []model.TraceEvent, commands []model.CommandRecord, messages []string) model.SecurityResult {
	if commands == nil {
		commands = analyze.Commands(events)
	}
	if messages == nil {
		messages = messageTexts(events)
	}
	c := buildCorpora(events, commands, messages)

	score := MaxScore
	findings := make([]model.SecurityFinding, 0, len(rules))
	for _, r := range rules {
		finding := applyRule(r, c)
		if !finding.Pass {
			score -= r.deduction
		}
		findings = append(findings, finding)
	}
	if score < 0 {
		score = 0
	}
	return model.SecurityResult{
		Score:      score,
		MaxScore:   MaxScore,
		Percentage: int(math.Round(float64(score) / MaxScore * 100)),
		Findings:   findings,
	}
}

func applyRule(r rule, c corpora) model.SecurityFinding {
	var examples []string
	for _, kind := range r.corpora {
		for _, entry := range c.byKind[kind] {
			for _, pat := range r.patterns {
				if m := pat.FindString(entry); m != "" {
					if len(examples) < maxExamples {
						examples = append(examples, snippet(m))
					}
					break
				}
			}
			if len(examples) >= maxExamples {
				break
			}
		}
	}
	if len(examples) == 0 {
		return model.SecurityFinding{
			ID:       r.id,
			Name:     r.name,
			Pass:     true,
			Severity: model.SeverityInfo,
			Notes:    r.passNote,
		}
	}
	return model.SecurityFinding{
		ID:       r.id,
		Name:     r.name,
		Pass:     false,
		Severity: r.severity,
		Notes:    r.failNote,
		Examples: examples,
	}
}

func buildCorpora(events []model.TraceEvent, commands []model.CommandRecord, messages []string) corpora {
	var cmds []string
	for _, ev := range events {
		if ev.Type != model.TypeToolCall || !shellTool(ev.Tool) {
			continue
		}
		if text := analyze.CommandText(ev.Input); text != "" {
			cmds = append(cmds, text)
		}
	}
	// Pre-extracted records cover tool vocabularies the shell filter
	// misses; dedup keeps the corpus small.
	seen := map[string]bool{}
	for _, c := range cmds {
		seen[c] = true
	}
	for _, rec := range commands {
		if !seen[rec.Command] {
			seen[rec.Command] = true
			cmds = append(cmds, rec.Command)
		}
	}

	paths := filePaths(events)
	for _, c := range cmds {
		paths = append(paths, pathTokens(c)...)
	}

	// NFKC folding keeps homoglyph variants from slipping past the
	// message patterns.
	var msg []string
	for _, m := range messages {
		if m != "" {
			msg = append(msg, norm.NFKC.String(m))
		}
	}

	return corpora{byKind: map[corpus][]string{
		corpusCommands: cmds,
		corpusPaths:    paths,
		corpusMessages: msg,
	}}
}

// messageTexts collects agent output: message content plus tool_result
// output echoed into the conversation.
func messageTexts(events []model.TraceEvent) []string {
	var out []string
	for _, ev := range events {
		switch ev.Type {
		case model.TypeMessage:
			if ev.Content != "" {
				out = append(out, ev.Content)
			}
		case model.TypeToolResult:
			if ev.Output != "" {
				out = append(out, ev.Output)
			}
		}
	}
	return out
}

var shellToolNames = []string{"bash", "shell", "exec", "terminal", "run", "cmd", "sh"}

func shellTool(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range shellToolNames {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

var fileInputKeys = []string{"file_path", "path", "filename", "file", "target_file"}

// filePaths pulls path arguments off file-oriented tool calls.
func filePaths(events []model.TraceEvent) []string {
	var paths []string
	for _, ev := range events {
		if ev.Type != model.TypeToolCall || ev.Input == nil {
			continue
		}
		for _, key := range fileInputKeys {
			if p, ok := ev.Input[key].(string); ok && p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// pathTokens extracts path-like tokens from a shell command.
func pathTokens(command string) []string {
	var tokens []string
	for _, field := range strings.Fields(command) {
		field = strings.Trim(field, `"'`)
		if strings.Contains(field, "/") || strings.HasPrefix(field, "~") {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func snippet(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
