package extract

import (
	"fmt"
	"sort"

	"github.com/fundops/dealfill/internal/model"
)

// Aggregate merges extractor outputs into the single combined result the
// rest of the system consumes: the union of extracted values plus the
// union of failures as the needs-manual-input set. Extractor vocabularies
// are disjoint by construction, so a duplicate key means a wiring bug and
// panics.
func Aggregate(results ...model.ParseResult) model.CombinedResult {
	data := make(map[model.FieldKey]interface{})
	seen := make(map[model.FieldKey]bool)
	var needs []model.FieldKey

	for _, r := range results {
		for key, value := range r.ExtractedData {
			if _, dup := data[key]; dup {
				panic(fmt.Sprintf("aggregate: duplicate field key %q across parse results", key))
			}
			data[key] = value
		}
		for _, key := range r.FailedToParse {
			if !seen[key] {
				seen[key] = true
				needs = append(needs, key)
			}
		}
	}

	sort.Slice(needs, func(i, j int) bool { return needs[i] < needs[j] })

	return model.CombinedResult{
		Data:             data,
		NeedsManualInput: needs,
	}
}
