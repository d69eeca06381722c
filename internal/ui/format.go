package ui

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/workdeck/internal/projects"
)

// FormatHours formats a weekly hours value as "X h/wk"
func FormatHours(hours int) string {
	return fmt.Sprintf("%d h/wk", hours)
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// FormatFieldResults summarizes a per-field commit in one line. A commit
// stops at the first failed field, so the summary names what landed
// before carrying the failure.
func FormatFieldResults(results []projects.FieldResult) string {
	if len(results) == 0 {
		return "no changes"
	}

	var applied []string
	for _, r := range results {
		if r.Err != nil {
			if len(applied) == 0 {
				return r.Err.Error()
			}
			return fmt.Sprintf("saved %s; %v", strings.Join(applied, ", "), r.Err)
		}
		if r.Applied {
			applied = append(applied, r.Column)
		}
	}
	return "saved " + strings.Join(applied, ", ")
}
