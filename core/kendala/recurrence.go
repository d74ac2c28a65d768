package kendala

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultRecurringThreshold: groups must be strictly larger than this to be
// reported.
const DefaultRecurringThreshold = 2

// GroupKey identifies one terminal within one calendar month. A composite
// key avoids the year-boundary parsing bugs of string month keys.
type GroupKey struct {
	TID   string     `json:"tid"`
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// RecurrenceGroup is the set of kendala raised against one terminal within
// one calendar month.
type RecurrenceGroup struct {
	Key         GroupKey  `json:"key"`
	Count       int       `json:"count"`
	MonthLabel  string    `json:"month_label"`
	Lokasi      string    `json:"lokasi"`
	KCSupervisi string    `json:"kc_supervisi"`
	Pengelola   string    `json:"pengelola"`
	Items       []Kendala `json:"items"`
}

// DailyCount is one day-of-month bucket of a recurrence histogram.
type DailyCount struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthLabel renders an Indonesian month-and-year label, e.g. "Maret 2025".
func MonthLabel(year int, month time.Month) string {
	if month < time.January || month > time.December {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// FindRecurring groups the collection by (terminal id, year, month) and
// returns the groups whose member count strictly exceeds threshold, sorted
// by count descending with encounter order preserved among ties. Kendala
// without a terminal ref cannot be grouped and are skipped. The input is
// never mutated and the result is deterministic for an unchanged input.
func (e *Engine) FindRecurring(items []Kendala, threshold int) []RecurrenceGroup {
	if threshold < 0 {
		threshold = DefaultRecurringThreshold
	}
	byKey := map[GroupKey]int{}
	var groups []RecurrenceGroup
	for _, k := range items {
		tid := k.TID()
		if tid == "" {
			continue
		}
		created := k.CreatedAt.In(e.loc)
		key := GroupKey{TID: tid, Year: created.Year(), Month: created.Month()}
		idx, ok := byKey[key]
		if !ok {
			idx = len(groups)
			byKey[key] = idx
			groups = append(groups, RecurrenceGroup{
				Key:        key,
				MonthLabel: MonthLabel(key.Year, key.Month),
			})
		}
		groups[idx].Items = append(groups[idx].Items, k)
		groups[idx].Count++
	}

	result := groups[:0:0]
	for _, g := range groups {
		if g.Count <= threshold {
			continue
		}
		fillGroupInfo(&g)
		result = append(result, g)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// fillGroupInfo derives the display metadata: site and supervising branch
// come from the first member (members of one group share a terminal), the
// pengelola label is the de-duplicated comma join of the assigned operators
// in first-seen order.
func fillGroupInfo(g *RecurrenceGroup) {
	if len(g.Items) == 0 {
		return
	}
	first := g.Items[0]
	if first.Terminal != nil {
		g.Lokasi = first.Terminal.Lokasi
		g.KCSupervisi = first.Terminal.KCSupervisi
	}
	seen := map[string]struct{}{}
	var operators []string
	for _, k := range g.Items {
		if k.Operator == "" {
			continue
		}
		if _, ok := seen[k.Operator]; ok {
			continue
		}
		seen[k.Operator] = struct{}{}
		operators = append(operators, k.Operator)
	}
	g.Pengelola = strings.Join(operators, ", ")
	if g.Lokasi == "" {
		g.Lokasi = Placeholder
	}
	if g.KCSupervisi == "" {
		g.KCSupervisi = Placeholder
	}
	if g.Pengelola == "" {
		g.Pengelola = Placeholder
	}
}

// Histogram counts the group's kendala per day of the group's month. The
// series always has one entry per calendar day of that specific month
// (leap years included); days without occurrences stay at zero.
func (e *Engine) Histogram(g RecurrenceGroup) []DailyCount {
	days := daysInMonth(g.Key.Year, g.Key.Month)
	counts := make([]DailyCount, days)
	for i := range counts {
		counts[i].Day = i + 1
	}
	for _, k := range g.Items {
		day := k.CreatedAt.In(e.loc).Day()
		if day >= 1 && day <= days {
			counts[day-1].Count++
		}
	}
	return counts
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
