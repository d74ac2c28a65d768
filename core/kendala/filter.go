package kendala

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortTitle    SortKey = "title"
	SortStatus   SortKey = "status"
	SortDeadline SortKey = "deadline"
)

// Filter describes the dashboard list query.
type Filter struct {
	// Search matches case-insensitively against title, description,
	// terminal id and lokasi; against pengelola it additionally ignores
	// internal whitespace.
	Search string
	// Status is an effective state value, or "all"/"" for no filtering.
	Status string
	// Month restricts to kendala created in the given 0-indexed month of
	// the current calendar year. Nil means no month filtering.
	Month *int
	Sort  SortKey
}

// FilterAndSort applies the filter against states derived at the single
// captured instant now and returns a new, ordered slice. The input
// collection is left untouched.
func (e *Engine) FilterAndSort(items []Kendala, f Filter, now time.Time) []Kendala {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	searchTight := stripSpace(search)
	status := strings.TrimSpace(f.Status)

	out := make([]Kendala, 0, len(items))
	for _, k := range items {
		if search != "" && !matchesSearch(&k, search, searchTight) {
			continue
		}
		state, _ := e.DeriveState(&k, now)
		if status != "" && status != "all" && string(state) != status {
			continue
		}
		if f.Month != nil {
			created := k.CreatedAt.In(e.loc)
			if created.Year() != now.In(e.loc).Year() || int(created.Month())-1 != *f.Month {
				continue
			}
		}
		out = append(out, k)
	}
	e.sortItems(out, f.Sort, now)
	return out
}

func matchesSearch(k *Kendala, search, searchTight string) bool {
	if strings.Contains(strings.ToLower(k.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(k.Description), search) {
		return true
	}
	if k.Terminal != nil {
		if strings.Contains(strings.ToLower(k.Terminal.TID), search) {
			return true
		}
		if strings.Contains(strings.ToLower(k.Terminal.Lokasi), search) {
			return true
		}
		if strings.Contains(stripSpace(strings.ToLower(k.Terminal.Pengelola)), searchTight) {
			return true
		}
	}
	return false
}

func stripSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (e *Engine) sortItems(items []Kendala, key SortKey, now time.Time) {
	switch key {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	case SortTitle:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Title < items[j].Title
		})
	case SortStatus:
		sort.SliceStable(items, func(i, j int) bool {
			si, _ := e.DeriveState(&items[i], now)
			sj, _ := e.DeriveState(&items[j], now)
			return si < sj
		})
	case SortDeadline:
		sort.SliceStable(items, func(i, j int) bool {
			pi := e.deadlinePriority(&items[i], now)
			pj := e.deadlinePriority(&items[j], now)
			if pi != pj {
				return pi < pj
			}
			return e.Deadline(&items[i]).Before(e.Deadline(&items[j]))
		})
	default: // SortNewest
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
}

// deadlinePriority buckets for the deadline sort: overdue first, then
// pending ordered by time remaining, completed states last.
func (e *Engine) deadlinePriority(k *Kendala, now time.Time) int {
	state, _ := e.DeriveState(k, now)
	switch state {
	case StateOverdue:
		return 1
	case StatePending:
		return 2
	default:
		return 3
	}
}
