package repository

import (
	"fmt"

	"github.com/tnqbao/gau-photo-share/entity"
)

var filterColumns = map[string]bool{
	"partition_key": true,
	"row_key":       true,
	"url":           true,
}

var filterOperators = map[string]string{
	"eq": "=",
	"ne": "<>",
	"gt": ">",
	"ge": ">=",
	"lt": "<",
	"le": "<=",
}

// QueryFilter is a single-column comparison. Every query also requires the
// row key to equal Value, so in practice it is a point lookup by key.
type QueryFilter struct {
	Column   string
	Operator string
	Value    string
}

func KeyFilter(shortID string) QueryFilter {
	return QueryFilter{Column: "partition_key", Operator: "eq", Value: shortID}
}

func (f QueryFilter) Validate() error {
	if !filterColumns[f.Column] {
		return entity.NewValidationError("column", fmt.Sprintf("unsupported filter column %q", f.Column))
	}
	if _, ok := filterOperators[f.Operator]; !ok {
		return entity.NewValidationError("operator", fmt.Sprintf("unsupported filter operator %q", f.Operator))
	}
	return nil
}

func (f QueryFilter) clause() string {
	return fmt.Sprintf("%s %s ? AND row_key = ?", f.Column, filterOperators[f.Operator])
}

func (f QueryFilter) isKeyLookup() bool {
	return f.Operator == "eq" && (f.Column == "partition_key" || f.Column == "row_key")
}
