package export

import "coingecko-exporter/internal/types"

// Project keeps only the selected columns of each record, in the order the
// columns appear in order (never in selection order). An empty selection
// returns records untouched. Keys absent from a record are not added.
func Project(records []types.Record, selected, order []string) []types.Record {
	if len(selected) == 0 {
		return records
	}

	want := make(map[string]bool, len(selected))
	for _, k := range selected {
		want[k] = true
	}
	keep := make([]string, 0, len(selected))
	for _, k := range order {
		if want[k] {
			keep = append(keep, k)
		}
	}

	out := make([]types.Record, len(records))
	for i, rec := range records {
		projected := make(types.Record, 0, len(keep))
		for _, k := range keep {
			if v, ok := rec.Get(k); ok {
				projected = append(projected, types.Field{Key: k, Value: v})
			}
		}
		out[i] = projected
	}
	return out
}
