package service

import (
	"context"
	"fmt"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	"github.com/akshatyadav31/Lumora-Ai/internal/schema"
)

const maxSuggestions = 4

const fallbackSuggestion = "Show me a summary of the data"

// Suggestions proposes questions for the active dataset from its schema.
// Without an active dataset there are none.
func (s *Service) Suggestions(ctx context.Context) ([]string, error) {
	ds, err := s.ActiveDataset(ctx)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return []string{}, nil
	}
	return suggest(ds.Columns), nil
}

func suggest(columns []domain.ColumnDefinition) []string {
	nums := schema.ColumnsOfType(columns, domain.ColumnTypeNumber)
	dates := schema.ColumnsOfType(columns, domain.ColumnTypeDate)
	strs := schema.ColumnsOfType(columns, domain.ColumnTypeString)

	var out []string
	if len(nums) > 0 && len(strs) > 0 {
		out = append(out,
			fmt.Sprintf("Top 5 %s by %s", strs[0].Name, nums[0].Name),
			fmt.Sprintf("Average %s per %s", nums[0].Name, strs[0].Name))
	}
	if len(nums) > 0 && len(dates) > 0 {
		out = append(out, fmt.Sprintf("Trend of %s over time", nums[0].Name))
	}
	if len(strs) > 0 {
		out = append(out, fmt.Sprintf("Distribution of %s", strs[0].Name))
	}
	if len(nums) > 1 {
		out = append(out, fmt.Sprintf("Compare %s vs %s", nums[0].Name, nums[1].Name))
	}

	if len(out) == 0 {
		return []string{fallbackSuggestion}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
