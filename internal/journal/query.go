package journal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FilterOptions specifies criteria for filtering entries.
type FilterOptions struct {
	Since  time.Duration // Entries newer than now-since (0=all)
	Event  Event         // Exact event match ("" = any)
	Reason string        // Exact reason match ("" = any)
	Search string        // Case-insensitive substring of message or action
	Limit  int           // Maximum results, newest kept (0=unlimited)
}

// Filter returns the entries matching opts, oldest first.
func Filter(entries []Entry, opts FilterOptions) []Entry {
	return filterAt(entries, opts, time.Now())
}

func filterAt(entries []Entry, opts FilterOptions, now time.Time) []Entry {
	search := strings.ToLower(opts.Search)
	result := make([]Entry, 0, len(entries))

	for _, e := range entries {
		if opts.Since > 0 && e.Time().Before(now.Add(-opts.Since)) {
			continue
		}
		if opts.Event != "" && e.Event != opts.Event {
			continue
		}
		if opts.Reason != "" && e.Reason != opts.Reason {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Message), search) &&
			!strings.Contains(strings.ToLower(e.Action), search) {
			continue
		}
		result = append(result, e)
	}

	Sort(result)
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[len(result)-opts.Limit:]
	}
	return result
}

// Sort orders entries oldest first. ULIDs break timestamp ties.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].ID < entries[j].ID
	})
}

// LookupByID finds an entry by ULID or unique ULID prefix.
// Returns nil if not found or ambiguous.
func LookupByID(entries []Entry, id string) *Entry {
	id = strings.ToUpper(id)
	var found *Entry
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
		if id != "" && strings.HasPrefix(entries[i].ID, id) {
			if found != nil {
				return nil
			}
			found = &entries[i]
		}
	}
	return found
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
