package news

import (
	"sort"
	"strings"

	"github.com/deusflow/jpnews/internal/rss"
)

// Item is a selected news entry. Fields are read-only after Select.
type Item struct {
	Title       string
	SummaryHTML string
	Link        string // original link, as published
	SourceName  string // lowercased
}

// Ranked tags an item with its ordering tier: 0 for major outlets, 1 otherwise.
type Ranked struct {
	Item
	Priority int
}

// Rules configures Select. Exclude and Major must be lowercase.
type Rules struct {
	Exclude []string
	Major   []string
	Limit   int
}

// Stats counts what happened to the input during Select.
type Stats struct {
	Fetched    int
	Excluded   int
	Duplicates int
	Selected   int
}

// Select filters, deduplicates and ranks entries. See SelectWithStats.
func Select(entries []rss.Entry, rules Rules) []Item {
	items, _ := SelectWithStats(entries, rules)
	return items
}

// SelectWithStats drops entries whose source or link contains an excluded
// marker, keeps the first entry per case-insensitive link, moves major outlets
// ahead of the rest without reordering within a tier, and truncates to
// rules.Limit.
func SelectWithStats(entries []rss.Entry, rules Rules) ([]Item, Stats) {
	stats := Stats{Fetched: len(entries)}
	seenLinks := map[string]struct{}{}
	var ranked []Ranked

	for _, e := range entries {
		sourceName := strings.ToLower(e.Source)
		link := strings.ToLower(e.Link)

		if isExcluded(sourceName, link, rules.Exclude) {
			stats.Excluded++
			continue
		}

		if _, dup := seenLinks[link]; dup {
			stats.Duplicates++
			continue
		}
		seenLinks[link] = struct{}{}

		priority := 1
		if containsAny(sourceName, rules.Major) {
			priority = 0
		}

		ranked = append(ranked, Ranked{
			Item: Item{
				Title:       e.Title,
				SummaryHTML: e.Summary,
				Link:        e.Link,
				SourceName:  sourceName,
			},
			Priority: priority,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority < ranked[j].Priority
	})

	if rules.Limit > 0 && len(ranked) > rules.Limit {
		ranked = ranked[:rules.Limit]
	}

	items := make([]Item, len(ranked))
	for i, r := range ranked {
		items[i] = r.Item
	}
	stats.Selected = len(items)
	return items, stats
}

func isExcluded(sourceName, link string, exclude []string) bool {
	for _, ex := range exclude {
		if strings.Contains(sourceName, ex) || strings.Contains(link, ex) {
			return true
		}
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
