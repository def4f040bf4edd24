// Package showinput turns a merchandise inventory export into prediction
// input rows, one per (item, upcoming show). Show city and date ride in
// the inventory's column headers; venue details come from the tour feed.
package showinput

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"merch-forecast/internal/domain"
	"merch-forecast/internal/feature"
	"merch-forecast/internal/tourdata"
)

const defaultSize = "ONE SIZE"

// OutputColumns is the schema of the generated table, in order. Product
// price stays empty: prices are filled in by hand before forecasting.
var OutputColumns = []string{
	"artistName",
	"Genre",
	"showDate",
	"venue name",
	"venue city",
	"venue state",
	"attendance",
	"product size",
	"productType",
	"product price",
	"Item Name",
}

// Show is one upcoming show parsed from an inventory column header.
type Show struct {
	City string
	Date time.Time
}

// BandFromFilename recovers the band name from an inventory file name,
// e.g. "air_supply.csv" becomes "Air Supply".
func BandFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	return cases.Title(language.English).String(base)
}

// ParseShowColumns extracts shows from headers shaped
// "City - MM/DD/YY ($7.00/head)". Headers without the separator are
// inventory columns, not shows.
func ParseShowColumns(columns []string) ([]Show, error) {
	var shows []Show
	for _, col := range columns {
		city, rest, found := strings.Cut(col, " - ")
		if !found {
			continue
		}
		dateText, _, _ := strings.Cut(strings.TrimSpace(rest), " ")
		date, err := feature.ParseShowDate(dateText)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		shows = append(shows, Show{City: strings.TrimSpace(city), Date: date})
	}
	return shows, nil
}

// Build expands the inventory into one row per (item, show). The band
// name derives from the inventory path, the genre from the band map, and
// venue name, state, and attendance from the tour feed joined on city and
// date. Rows without an item name are skipped; a blank size becomes
// "ONE SIZE".
func Build(inventoryPath string, inventory *domain.Table, genres map[string]string, tour []tourdata.Show) (*domain.Table, error) {
	band := BandFromFilename(inventoryPath)

	genre, ok := genres[band]
	if !ok {
		return nil, fmt.Errorf("no genre mapping for band %q", band)
	}

	if !inventory.HasColumn("Item Name") {
		return nil, fmt.Errorf("inventory has no %q column", "Item Name")
	}

	shows, err := ParseShowColumns(inventory.Columns)
	if err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, fmt.Errorf("inventory has no show columns")
	}

	venues := venueLookup(band, tour)

	out := domain.NewTable(OutputColumns)
	for _, row := range inventory.Rows {
		item := strings.TrimSpace(row["Item Name"])
		if item == "" {
			continue
		}

		size := strings.TrimSpace(row["Size"])
		if size == "" {
			size = defaultSize
		}

		for _, show := range shows {
			stop := venues[venueKey(show.City, show.Date)]
			out.Append(domain.Row{
				"artistName":    band,
				"Genre":         genre,
				"showDate":      show.Date.Format("1/2/2006"),
				"venue name":    stop.Venue,
				"venue city":    show.City,
				"venue state":   stop.State,
				"attendance":    strconv.Itoa(stop.Attendance),
				"product size":  size,
				"productType":   row["Product Type"],
				"product price": "",
				"Item Name":     item,
			})
		}
	}
	return out, nil
}

func venueLookup(band string, tour []tourdata.Show) map[string]tourdata.Show {
	venues := make(map[string]tourdata.Show)
	for _, stop := range tour {
		if stop.Band != band {
			continue
		}
		venues[venueKey(stop.City, stop.Date)] = stop
	}
	return venues
}

func venueKey(city string, date time.Time) string {
	return strings.TrimSpace(city) + "|" + date.Format("2006-01-02")
}
