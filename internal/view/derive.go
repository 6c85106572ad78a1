// Package view turns the raw record list into the grouped, filtered,
// ordered structure the presentation layer renders. Everything here is a
// pure function of its inputs.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/photocard-tools/cardfolio/internal/models"
)

// GroupBy selects how records are bucketed into display groups.
type GroupBy string

const (
	GroupNone  GroupBy = "none"
	GroupYear  GroupBy = "year"
	GroupEvent GroupBy = "event"
	GroupDate  GroupBy = "date"
	GroupWeek  GroupBy = "week"
	GroupMonth GroupBy = "month"
)

// Sentinel group keys for records missing the grouping field.
const (
	KeyAll     = "all"
	KeyNoYear  = "(unspecified year)"
	KeyNoEvent = "(unspecified event)"
	KeyNoDate  = "(no date)"
	FilterAll  = "all"
)

// Options are the filter and grouping criteria for one derivation.
type Options struct {
	Query       string
	EventFilter string
	YearFilter  string
	GroupBy     GroupBy
}

// Group is one display section: a key and the records under it, in order.
type Group struct {
	Key     string          `json:"key"`
	Records []models.Record `json:"records"`
}

// Derive computes the ordered groups for display. In share mode the overlay
// replaces each record's Have flag (absent means not owned); pass a nil
// overlay outside share mode. Calling Derive twice with identical inputs
// yields identical output.
func Derive(records []models.Record, overlay map[string]bool, opts Options) []Group {
	if opts.EventFilter == "" {
		opts.EventFilter = FilterAll
	}
	if opts.YearFilter == "" {
		opts.YearFilter = FilterAll
	}
	if opts.GroupBy == "" {
		opts.GroupBy = GroupNone
	}

	query := strings.ToLower(strings.TrimSpace(opts.Query))

	var filtered []models.Record
	for _, r := range records {
		if overlay != nil {
			r.Have = overlay[r.ID]
		}
		if !matches(r, query, opts.EventFilter, opts.YearFilter) {
			continue
		}
		filtered = append(filtered, r)
	}

	keys := make([]string, 0)
	buckets := make(map[string][]models.Record)
	for _, r := range filtered {
		key := groupKey(r, opts.GroupBy)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	sortGroupKeys(keys, opts.GroupBy)

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		bucket := buckets[key]
		sortRecords(bucket)
		groups = append(groups, Group{Key: key, Records: bucket})
	}
	return groups
}

// Flatten returns the derived records in display order, for detail-view
// navigation across group boundaries.
func Flatten(groups []Group) []models.Record {
	var flat []models.Record
	for _, g := range groups {
		flat = append(flat, g.Records...)
	}
	return flat
}

func matches(r models.Record, query, eventFilter, yearFilter string) bool {
	if eventFilter != FilterAll && r.Event != eventFilter {
		return false
	}
	if yearFilter != FilterAll && r.Year != yearFilter {
		return false
	}
	if query == "" {
		return true
	}
	hay := strings.ToLower(strings.Join([]string{
		r.Title, r.Event, r.Vendor, r.Year, r.Notes, r.PurchaseDate,
	}, " "))
	hay = strings.ReplaceAll(hay, "\n", " ")
	return strings.Contains(hay, query)
}

func groupKey(r models.Record, mode GroupBy) string {
	switch mode {
	case GroupYear:
		if y := strings.TrimSpace(r.Year); y != "" {
			return y
		}
		return KeyNoYear
	case GroupEvent:
		if e := strings.TrimSpace(r.Event); e != "" {
			return e
		}
		return KeyNoEvent
	case GroupDate:
		if r.PurchaseDate != "" {
			return r.PurchaseDate
		}
		return KeyNoDate
	case GroupWeek:
		return weekKey(r.PurchaseDate)
	case GroupMonth:
		return monthKey(r.PurchaseDate)
	default:
		return KeyAll
	}
}

// weekKey returns the Monday-start week range covering the date, formatted
// as "YYYY-MM-DD~YYYY-MM-DD".
func weekKey(purchaseDate string) string {
	t, err := time.Parse("2006-01-02", purchaseDate)
	if err != nil {
		return KeyNoDate
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	start := t.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start.Format("2006-01-02") + "~" + end.Format("2006-01-02")
}

func monthKey(purchaseDate string) string {
	t, err := time.Parse("2006-01-02", purchaseDate)
	if err != nil {
		return KeyNoDate
	}
	return t.Format("2006-01")
}

// sortRecords orders a bucket by purchase date ascending with dateless
// records last. InsertionIndex breaks ties so records sharing a date keep
// creation order.
func sortRecords(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.PurchaseDate == "" && b.PurchaseDate == "" {
			return a.InsertionIndex < b.InsertionIndex
		}
		if a.PurchaseDate == "" {
			return false
		}
		if b.PurchaseDate == "" {
			return true
		}
		if a.PurchaseDate != b.PurchaseDate {
			return a.PurchaseDate < b.PurchaseDate
		}
		return a.InsertionIndex < b.InsertionIndex
	})
}

func sortGroupKeys(keys []string, mode GroupBy) {
	if mode == GroupYear {
		sort.SliceStable(keys, func(i, j int) bool {
			a, b := models.YearSortValue(keys[i]), models.YearSortValue(keys[j])
			if a != b {
				return a < b
			}
			return keys[i] < keys[j]
		})
		return
	}
	sort.Strings(keys)
}
