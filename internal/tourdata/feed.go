// Package tourdata reads the tour schedule feed: a headered CSV whose
// columns are positional (Band, Show Date, City, ST, Venue, Nights, Type,
// Capacity, Attn, $/Head, then accounting columns the frontend ignores).
package tourdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"merch-forecast/internal/feature"
)

// Show is one tour stop.
type Show struct {
	Band       string
	Genre      string
	Date       time.Time
	City       string
	State      string
	Venue      string
	Attendance int
}

const (
	colBand = iota
	colDate
	colCity
	colState
	colVenue
	_ // nights
	_ // type
	_ // capacity
	colAttendance
)

// Parse reads the feed, skipping the header line and any row without a
// band or a parseable date.
func Parse(r io.Reader) ([]Show, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tour data: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("tour data has no rows")
	}

	var shows []Show
	for _, rec := range records[1:] {
		band := strings.TrimSpace(cell(rec, colBand))
		if band == "" {
			continue
		}
		date, err := feature.ParseShowDate(cell(rec, colDate))
		if err != nil {
			continue
		}
		shows = append(shows, Show{
			Band:       band,
			Date:       date,
			City:       strings.TrimSpace(cell(rec, colCity)),
			State:      strings.TrimSpace(cell(rec, colState)),
			Venue:      strings.TrimSpace(cell(rec, colVenue)),
			Attendance: parseAttendance(cell(rec, colAttendance)),
		})
	}
	return shows, nil
}

// WithGenres fills each show's genre from the band map. Bands without a
// mapping show as "Unknown" so the genre filter still has a bucket for
// them.
func WithGenres(shows []Show, genres map[string]string) []Show {
	out := make([]Show, len(shows))
	for i, show := range shows {
		show.Genre = genres[show.Band]
		if show.Genre == "" {
			show.Genre = "Unknown"
		}
		out[i] = show
	}
	return out
}

// Filter narrows shows by genre, band, and date range. Zero-valued fields
// match everything.
type Filter struct {
	Genre string
	Band  string
	From  time.Time
	To    time.Time
}

func FilterShows(shows []Show, f Filter) []Show {
	var out []Show
	for _, show := range shows {
		if f.Genre != "" && show.Genre != f.Genre {
			continue
		}
		if f.Band != "" && show.Band != f.Band {
			continue
		}
		if !f.From.IsZero() && show.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && show.Date.After(f.To) {
			continue
		}
		out = append(out, show)
	}
	return out
}

// Genres returns the distinct genres present, sorted, for the filter
// dropdown.
func Genres(shows []Show) []string {
	seen := map[string]bool{}
	var out []string
	for _, show := range shows {
		if show.Genre != "" && !seen[show.Genre] {
			seen[show.Genre] = true
			out = append(out, show.Genre)
		}
	}
	sort.Strings(out)
	return out
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseAttendance(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
