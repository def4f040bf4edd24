package tourdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// LoadGenreMap reads a band→genre CSV. The band column has gone by a few
// names across exports of the sheet, so the first matching header wins.
func LoadGenreMap(r io.Reader) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read genre map: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("genre map is empty")
	}

	bandIdx := headerIndex(records[0], "MH band", "Band Name", "Band")
	genreIdx := headerIndex(records[0], "Genre")
	if bandIdx < 0 || genreIdx < 0 {
		return nil, fmt.Errorf("genre map needs a band column and a Genre column")
	}

	genres := make(map[string]string)
	for _, rec := range records[1:] {
		band := strings.TrimSpace(cell(rec, bandIdx))
		if band == "" {
			continue
		}
		genres[band] = strings.TrimSpace(cell(rec, genreIdx))
	}
	return genres, nil
}

func headerIndex(header []string, names ...string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}
