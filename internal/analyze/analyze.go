// Package analyze derives behavioral judgments from one canonical trace:
// command sequence, thrashing, token usage, determinism hints, and an
// efficiency score. Everything here is defensive: a malformed event can
// degrade an answer to "unknown" but can never cause a failure.
package analyze

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/crimson-sun/traceval/internal/model"
)

// Thrashing threshold: a maximal run of this many repeats beyond the first
// occurrence (the same command 4+ times in a row) flags thrashing.
// Downstream pass/fail calibration assumes this value; do not tune.
const thrashingStreak = 3

// Fewer commands than this is insufficient data for a thrashing verdict.
const thrashingMinCommands = 4

const efficiencyPenalty = 10

// Analyze produces the full trace report for one test case.
func Analyze(events []model.TraceEvent) model.TraceReport {
	cmds := Commands(events)
	report := model.TraceReport{
		EventCount:          len(events),
		ErrorCount:          errorCount(events),
		DurationMS:          traceDuration(events),
		Commands:            cmds,
		Thrashing:           detectThrashing(cmds),
		Tokens:              ExtractTokens(events),
		DeterminismWarnings: determinismWarnings(events),
		CreatedFiles:        createdFiles(cmds),
	}
	report.EfficiencyScore = 100 - efficiencyPenalty*report.ErrorCount
	if report.EfficiencyScore < 0 {
		report.EfficiencyScore = 0
	}
	return report
}

// Commands extracts the command sequence from tool_call-shaped events.
// A tool call whose input carries no command-like field yields no record.
func Commands(events []model.TraceEvent) []model.CommandRecord {
	results := map[string]model.TraceEvent{}
	for _, ev := range events {
		if ev.Type == model.TypeToolResult && ev.CallID != "" {
			if _, dup := results[ev.CallID]; !dup {
				results[ev.CallID] = ev
			}
		}
	}

	var cmds []model.CommandRecord
	for _, ev := range events {
		tool, input := toolShape(ev)
		if tool == "" && input == nil {
			continue
		}
		text := CommandText(input)
		if text == "" {
			continue
		}
		rec := model.CommandRecord{
			ID:        ev.CallID,
			Timestamp: ev.Timestamp,
			Command:   text,
		}
		if res, ok := results[ev.CallID]; ok && ev.CallID != "" {
			rec.Status = res.Status
			if res.DurationMS > 0 {
				d := res.DurationMS
				rec.DurationMS = &d
			}
		}
		cmds = append(cmds, rec)
	}
	return cmds
}

// toolShape recognizes a tool call either in canonical form or inside a
// passed-through raw record carrying a tool/name field.
func toolShape(ev model.TraceEvent) (string, map[string]any) {
	if ev.Type == model.TypeToolCall {
		return ev.Tool, ev.Input
	}
	if ev.Raw == nil {
		return "", nil
	}
	tool, _ := ev.Raw["tool"].(string)
	if tool == "" {
		tool, _ = ev.Raw["name"].(string)
	}
	if tool == "" {
		return "", nil
	}
	input, _ := ev.Raw["input"].(map[string]any)
	return tool, input
}

// CommandText resolves the command string from a tool input, trying the
// direct fields and the nested args object.
func CommandText(input map[string]any) string {
	if input == nil {
		return ""
	}
	if s, ok := input["command"].(string); ok && s != "" {
		return s
	}
	if s, ok := input["cmd"].(string); ok && s != "" {
		return s
	}
	if args, ok := input["args"].(map[string]any); ok {
		if s, ok := args["command"].(string); ok {
			return s
		}
	}
	return ""
}

// detectThrashing scans for the longest run of immediately consecutive,
// textually identical commands. Single linear pass.
func detectThrashing(cmds []model.CommandRecord) model.Thrashing {
	if len(cmds) < thrashingMinCommands {
		return model.Thrashing{}
	}
	best, bestCmd := 0, ""
	streak := 0
	for i := 1; i < len(cmds); i++ {
		if cmds[i].Command == cmds[i-1].Command {
			streak++
		} else {
			streak = 0
		}
		if streak > best {
			best = streak
			bestCmd = cmds[i].Command
		}
	}
	if best >= thrashingStreak {
		return model.Thrashing{IsThrashing: true, Command: bestCmd, Streak: best}
	}
	return model.Thrashing{}
}

func errorCount(events []model.TraceEvent) int {
	n := 0
	for _, ev := range events {
		if ev.Type == model.TypeError || ev.Type == model.TypeTurnFailed {
			n++
		}
	}
	return n
}

// traceDuration computes wall time between the earliest and latest
// parseable timestamps. Nil when fewer than two events carry one.
func traceDuration(events []model.TraceEvent) *float64 {
	var stamps []time.Time
	for _, ev := range events {
		if t, ok := parseStamp(ev.Timestamp); ok {
			stamps = append(stamps, t)
		}
	}
	if len(stamps) < 2 {
		return nil
	}
	sort.SliceStable(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	d := float64(stamps[len(stamps)-1].Sub(stamps[0]).Milliseconds())
	return &d
}

func parseStamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Determinism hints: substrings in serialized event content that suggest
// randomness or wall-clock dependence. Purely advisory.
var determinismHints = []struct {
	needle  string
	warning string
}{
	{"math.random", "uses Math.random"},
	{"/dev/urandom", "reads /dev/urandom"},
	{"$random", "uses shell $RANDOM"},
	{"uuid", "generates UUIDs"},
	{"shuf", "shuffles input"},
	{"date.now", "depends on wall-clock time"},
	{"time.now", "depends on wall-clock time"},
	{"new date(", "depends on wall-clock time"},
}

func determinismWarnings(events []model.TraceEvent) []string {
	blob, err := json.Marshal(events)
	if err != nil {
		return nil
	}
	text := strings.ToLower(string(blob))
	var warnings []string
	seen := map[string]bool{}
	for _, hint := range determinismHints {
		if strings.Contains(text, hint.needle) && !seen[hint.warning] {
			seen[hint.warning] = true
			warnings = append(warnings, hint.warning)
		}
	}
	return warnings
}

// Create/touch/write/redirect-style command patterns; the first capture
// group is the likely created file.
var createPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btouch\s+(\S+)`),
	regexp.MustCompile(`>>?\s*([^\s&|;>]+)`),
	regexp.MustCompile(`\btee\s+(?:-a\s+)?(\S+)`),
	regexp.MustCompile(`\binstall\s+(?:-\S+\s+)*\S+\s+(\S+)`),
}

// createdFiles is a best-effort list of files the commands likely created.
func createdFiles(cmds []model.CommandRecord) []string {
	var files []string
	seen := map[string]bool{}
	for _, cmd := range cmds {
		for _, pat := range createPatterns {
			for _, m := range pat.FindAllStringSubmatch(cmd.Command, -1) {
				name := m[1]
				if name == "" || name == "/dev/null" || seen[name] {
					continue
				}
				seen[name] = true
				files = append(files, name)
			}
		}
	}
	return files
}
