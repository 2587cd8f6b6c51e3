package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eugenenazirov/lesson-condenser/internal/planner"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithHours appends an "Xh Ym" breakdown to each day's total.
func WithHours(enabled bool) Option {
	return func(r *Renderer) {
		r.showHours = enabled
	}
}

// WithTitles prints lesson titles next to their ids.
func WithTitles(enabled bool) Option {
	return func(r *Renderer) {
		r.showTitles = enabled
	}
}

// WithColor styles the output for terminals. Non-terminal writers fall back to plain text.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// WithSummary prints a trailing line with schedule totals.
func WithSummary(enabled bool) Option {
	return func(r *Renderer) {
		r.summary = enabled
	}
}

// Renderer writes a schedule as one line per day.
type Renderer struct {
	w io.Writer

	showHours  bool
	showTitles bool
	color      bool
	summary    bool

	dayStyle      lipgloss.Style
	durationStyle lipgloss.Style
	summaryStyle  lipgloss.Style
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{w: w}
	for _, opt := range opts {
		opt(r)
	}

	lr := lipgloss.NewRenderer(w)
	r.dayStyle = lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	r.durationStyle = lr.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	r.summaryStyle = lr.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888"))

	return r
}

// Render writes every day of the schedule, followed by the summary when enabled.
func (r *Renderer) Render(s planner.Schedule) error {
	for _, day := range s.Days {
		if _, err := fmt.Fprintln(r.w, r.dayLine(day)); err != nil {
			return fmt.Errorf("write day %d: %w", day.Number, err)
		}
	}

	if !r.summary {
		return nil
	}
	if _, err := fmt.Fprintln(r.w, r.summaryLine(s)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func (r *Renderer) dayLine(day planner.Day) string {
	index := fmt.Sprintf("Day %d:", day.Number)
	duration := fmt.Sprintf("%dm", day.Minutes)
	if r.showHours {
		duration += " (" + FormatMinutes(day.Minutes) + ")"
	}

	labels := make([]string, len(day.Lessons))
	for i, l := range day.Lessons {
		labels[i] = l.ID
		if r.showTitles && l.Title != "" {
			labels[i] = l.ID + " " + l.Title
		}
	}

	if r.color {
		index = r.dayStyle.Render(index)
		duration = r.durationStyle.Render(duration)
	}

	return fmt.Sprintf("%s %s - %s", index, duration, strings.Join(labels, ", "))
}

func (r *Renderer) summaryLine(s planner.Schedule) string {
	line := fmt.Sprintf("%d days (requested %d), %d lessons, %dm total, %dm average",
		len(s.Days), s.TotalDays, s.Remaining, s.TotalMinutes, s.Average)
	if r.showHours {
		line = fmt.Sprintf("%d days (requested %d), %d lessons, %s total, %s average",
			len(s.Days), s.TotalDays, s.Remaining, FormatMinutes(s.TotalMinutes), FormatMinutes(s.Average))
	}
	if r.color {
		line = r.summaryStyle.Render(line)
	}
	return line
}

// FormatMinutes splits minutes into hours and minutes, e.g. "1h 35m".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// WriteJSON writes the schedule as indented JSON.
func WriteJSON(w io.Writer, s planner.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	return nil
}
