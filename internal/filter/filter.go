// Package filter implements text search and categorical tabs over
// already-fetched collections.
package filter

import (
	"sort"
	"strings"
	"unicode"
)

// TabAll matches every item.
const TabAll = "all"

// TabSet maps a logical tab to the normalized backend spellings it accepts.
type TabSet map[string][]string

// StatusTabs are the journal and account status tabs used by the admin panels.
var StatusTabs = TabSet{
	"pending":  {"pending", "pendingapproval", "approvalpending"},
	"disabled": {"disabled", "inactive", "blocked"},
	"active":   {"active", "approved"},
}

// ReadTabs split notifications by read state.
var ReadTabs = TabSet{
	"unread": {"unread"},
	"read":   {"read"},
}

// Key lowercases s and strips all whitespace.
func Key(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Resolve returns the logical tab value belongs to, or "" when none.
func (ts TabSet) Resolve(value string) string {
	key := Key(value)
	for tab, synonyms := range ts {
		for _, synonym := range synonyms {
			if key == synonym {
				return tab
			}
		}
	}
	return ""
}

// Match reports whether value falls under tab. An empty or "all" tab matches
// everything. Tabs missing from the set compare by normalized key.
func (ts TabSet) Match(tab, value string) bool {
	tab = Key(tab)
	if tab == "" || tab == TabAll {
		return true
	}
	synonyms, ok := ts[tab]
	if !ok {
		return Key(value) == tab
	}
	key := Key(value)
	for _, synonym := range synonyms {
		if key == synonym {
			return true
		}
	}
	return false
}

// Tabs returns the logical tab names with TabAll first, the rest sorted.
func (ts TabSet) Tabs() []string {
	names := make([]string, 0, len(ts)+1)
	for name := range ts {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{TabAll}, names...)
}

// MatchesQuery is a case-insensitive substring match of query against any field.
// A blank query matches.
func MatchesQuery(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Options configure Apply.
type Options[T any] struct {
	Query    string
	Fields   func(T) []string
	Tab      string
	TabValue func(T) string
	Tabs     TabSet
}

// Apply returns the ordered subsequence of items matching both the query and
// the tab. The result is never nil.
func Apply[T any](items []T, opts Options[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if opts.Fields != nil && !MatchesQuery(opts.Query, opts.Fields(item)...) {
			continue
		}
		if opts.TabValue != nil && !opts.Tabs.Match(opts.Tab, opts.TabValue(item)) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Counts tallies items per logical tab, including TabAll. Values that belong
// to no tab only count towards TabAll.
func Counts[T any](items []T, value func(T) string, tabs TabSet) map[string]int {
	counts := make(map[string]int, len(tabs)+1)
	for name := range tabs {
		counts[name] = 0
	}
	counts[TabAll] = len(items)
	for _, item := range items {
		if tab := tabs.Resolve(value(item)); tab != "" {
			counts[tab]++
		}
	}
	return counts
}
