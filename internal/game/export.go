package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// exportSnapshot is an immutable copy of a scored round, taken under the
// room lock so the file write can happen outside it.
type exportSnapshot struct {
	Code        string
	Round       int
	TotalRounds int
	Scenario    string
	Lines       []exportLine
}

type exportLine struct {
	Name       string
	Role       string
	Answer     string
	RoundScore int
	TotalScore int
}

func newExportSnapshot(r *Room, scores map[string]*RoundScore) exportSnapshot {
	snap := exportSnapshot{
		Code:        r.Code,
		Round:       r.CurrentRound,
		TotalRounds: r.TotalRounds,
		Scenario:    r.CurrentScenario.Title,
	}
	for _, p := range r.Players {
		line := exportLine{
			Name:       p.Name,
			Role:       RoleName(p.Role),
			Answer:     r.Answers[p.ConnID],
			TotalScore: p.Score,
		}
		if s := scores[p.ConnID]; s != nil {
			line.RoundScore = s.Delta
		}
		snap.Lines = append(snap.Lines, line)
	}
	sort.SliceStable(snap.Lines, func(i, j int) bool { return snap.Lines[i].TotalScore > snap.Lines[j].TotalScore })
	return snap
}

// appendTo writes the round's results to the export file in plain text.
func (snap exportSnapshot) appendTo(filename string) error {
	if filename == "" {
		return nil
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	if snap.Round == 1 {
		sb.WriteString(fmt.Sprintf("\nRoom %s — started %s\n", snap.Code, time.Now().Format("2006-01-02 15:04:05")))
		sb.WriteString(strings.Repeat("=", 50) + "\n")
	}
	sb.WriteString(fmt.Sprintf("Round %d/%d: %q\n", snap.Round, snap.TotalRounds, snap.Scenario))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for _, l := range snap.Lines {
		answer := l.Answer
		if answer == "" {
			answer = "(no answer)"
		}
		sb.WriteString(fmt.Sprintf("- %s [%s] %+d => %d: %q\n", l.Name, l.Role, l.RoundScore, l.TotalScore, answer))
	}
	if snap.Round >= snap.TotalRounds {
		sb.WriteString(fmt.Sprintf("Match ended at %s\n", time.Now().Format("2006-01-02 15:04:05")))
	}

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
