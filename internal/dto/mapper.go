package dto

import (
	"sort"
	"strconv"
	"time"

	"merch-forecast/internal/domain"
)

const timeFormat = time.RFC3339

func ToPredictResponse(t *domain.Table) PredictResponse {
	data := make([]map[string]string, t.Len())
	for i, row := range t.Rows {
		record := make(map[string]string, len(t.Columns))
		for _, col := range t.Columns {
			record[col] = row[col]
		}
		data[i] = record
	}
	return PredictResponse{
		Status:      "success",
		Columns:     append([]string(nil), t.Columns...),
		Data:        data,
		RecordCount: t.Len(),
	}
}

func ToModelInfoResponse(info *domain.BundleInfo) ModelInfoResponse {
	artifacts := make([]ArtifactInfoResponse, 0, len(info.Artifacts))
	for _, a := range info.Artifacts {
		artifacts = append(artifacts, ArtifactInfoResponse{
			Name:     a.Name,
			URI:      a.URI,
			LoadedAt: a.LoadedAt.Format(timeFormat),
		})
	}
	return ModelInfoResponse{
		Status:              "success",
		Name:                info.Name,
		Version:             info.Version,
		ModelType:           info.ModelType,
		Target:              info.Target,
		NumericalFeatures:   info.NumericalFeatures,
		CategoricalFeatures: info.CategoricalFeatures,
		RequiredColumns:     info.RequiredColumns,
		Artifacts:           artifacts,
		LoadedAt:            info.LoadedAt.Format(timeFormat),
	}
}

// TableFromRecords builds a Table from decoded JSON records. Column order
// follows preferred (for the columns actually present) with any remaining
// keys appended in sorted order, keeping responses deterministic.
func TableFromRecords(records []map[string]any, preferred []string) *domain.Table {
	present := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			present[k] = true
		}
	}

	var columns []string
	used := make(map[string]bool, len(present))
	for _, col := range preferred {
		if present[col] && !used[col] {
			columns = append(columns, col)
			used[col] = true
		}
	}
	var extra []string
	for col := range present {
		if !used[col] {
			extra = append(extra, col)
		}
	}
	sort.Strings(extra)
	columns = append(columns, extra...)

	table := domain.NewTable(columns)
	for _, rec := range records {
		row := make(domain.Row, len(rec))
		for k, v := range rec {
			row[k] = cellString(v)
		}
		table.Append(row)
	}
	return table
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

// TableFromResponse rebuilds a table from a prediction response, keeping
// the column order the API reported.
func TableFromResponse(resp *PredictResponse) *domain.Table {
	table := domain.NewTable(resp.Columns)
	for _, rec := range resp.Data {
		table.Append(domain.Row(rec))
	}
	return table
}
