// Package projects holds the project model and the synchronizer that
// mirrors the backend's project list locally.
package projects

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Common errors.
var (
	ErrTitleRequired      = errors.New("project title is required")
	ErrUnknownColumn      = errors.New("unknown project column")
	ErrProjectNotFound    = errors.New("project not found")
	ErrUnexpectedResponse = errors.New("unexpected response from server")
	ErrSyncFailed         = errors.New("weekly sync failed")
)

// Column names accepted by the update endpoint, in the order edits are
// applied.
const (
	ColumnTitle       = "title"
	ColumnDescription = "description"
	ColumnTechStack   = "tech_stack"
	ColumnWeeklyHours = "weekly_hours"
)

// Columns returns the editable columns in apply order.
func Columns() []string {
	return []string{ColumnTitle, ColumnDescription, ColumnTechStack, ColumnWeeklyHours}
}

// ValidColumn reports whether column is accepted by the update endpoint.
func ValidColumn(column string) bool {
	switch column {
	case ColumnTitle, ColumnDescription, ColumnTechStack, ColumnWeeklyHours:
		return true
	}
	return false
}

// Project represents one tracked project row.
//
// The server assigns ID and keeps it stable across edits; the wire
// contract still addresses rows by Title, which the server keeps unique.
type Project struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TechStack   string `json:"tech_stack"`
	WeeklyHours int    `json:"weekly_hours"`
}

// Validate checks if the project has valid fields.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if p.WeeklyHours < 0 {
		return fmt.Errorf("weekly hours must not be negative, got %d", p.WeeklyHours)
	}
	return nil
}

// ParseWeeklyHours converts form input to a weekly hours value. An empty
// string means zero hours.
func ParseWeeklyHours(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	hours, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("weekly hours must be a whole number, got %q", s)
	}
	if hours < 0 {
		return 0, fmt.Errorf("weekly hours must not be negative, got %d", hours)
	}
	return hours, nil
}
