package kendala

import (
	"fmt"
	"time"
)

// DefaultWindow is the deadline window measured from creation.
const DefaultWindow = 2 * time.Hour

// Placeholder is rendered when a timestamp needed for a deadline text is
// missing.
const Placeholder = "—"

// Engine evaluates kendala lifecycle state and aggregates collections.
// All methods are pure: inputs are never mutated and the current time is
// always an explicit argument, so one captured instant can classify a whole
// collection consistently.
type Engine struct {
	window time.Duration
	loc    *time.Location
}

func NewEngine(window time.Duration, loc *time.Location) *Engine {
	if window <= 0 {
		window = DefaultWindow
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{window: window, loc: loc}
}

// Window returns the configured deadline window.
func (e *Engine) Window() time.Duration {
	return e.window
}

// Deadline is the instant by which resolution evidence is due.
func (e *Engine) Deadline(k *Kendala) time.Time {
	return k.CreatedAt.Add(e.window)
}

// DeriveState classifies a kendala from its timestamps alone and returns the
// state together with the deadline display text.
//
// The four states partition every (completedAt presence, now) combination:
// no completion and now before the deadline is pending, at or past the
// deadline is overdue; a completion at or before the deadline is completed,
// after it is completed-but-overdue.
func (e *Engine) DeriveState(k *Kendala, now time.Time) (State, string) {
	if k == nil || k.CreatedAt.IsZero() {
		if k != nil && k.CompletedAt != nil {
			return StateCompleted, Placeholder
		}
		return StatePending, Placeholder
	}
	deadline := e.Deadline(k)
	if k.CompletedAt != nil {
		state := StateCompleted
		if k.CompletedAt.After(deadline) {
			state = StateCompletedLate
		}
		return state, e.completedText(k, deadline)
	}
	remaining := deadline.Sub(now)
	if remaining > 0 {
		return StatePending, "sisa " + formatJamMenit(remaining)
	}
	return StateOverdue, "lewat " + formatJamMenit(-remaining)
}

// DeadlineText returns only the display text for a kendala.
func (e *Engine) DeadlineText(k *Kendala, now time.Time) string {
	_, text := e.DeriveState(k, now)
	return text
}

func (e *Engine) completedText(k *Kendala, deadline time.Time) string {
	// The store-supplied overdue string is historical truth recorded at
	// submission time and wins over recomputation for display.
	if k.OverdueDuration != "" {
		return k.OverdueDuration
	}
	if !k.CompletedAt.After(deadline) {
		return "Sesuai deadline"
	}
	return "Melewati deadline"
}

// OverdueBy formats the historical overdue duration recorded at submission,
// e.g. "lewat 1 jam 15 menit". It is what the store persists alongside a
// late completion.
func OverdueBy(late time.Duration) string {
	if late < 0 {
		late = -late
	}
	return "lewat " + formatJamMenit(late)
}

func formatJamMenit(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%d jam %d menit", hours, minutes)
}
