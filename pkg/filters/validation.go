package filters

import (
	"encoding/json"
	"strings"

	"github.com/shashiranjanraj/bgfixture/pkg/collection"
)

// InvalidFilter is the message returned for every rejected filter.
const InvalidFilter = "Invalid filter"

// ParseResult is the outcome of parsing a single filter.
type ParseResult struct {
	Filter *Filter `json:"filter,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ParseListResult is the outcome of parsing a newline-separated list.
// A failed parse carries no filters key at all; a successful one always
// has a filters list, empty when the input had no lines.
type ParseListResult struct {
	Filters []*Filter `json:"filters"`
	Errors  []string  `json:"errors"`
}

func (r ParseListResult) MarshalJSON() ([]byte, error) {
	if r.Filters == nil {
		return json.Marshal(struct {
			Errors []string `json:"errors"`
		}{r.Errors})
	}
	type plain ParseListResult
	return json.Marshal(plain(r))
}

// SubscriptionInput is the payload that names a subscription to add or remove.
type SubscriptionInput struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// FilterInput is the payload that carries one filter's text.
type FilterInput struct {
	Text string `json:"text" validate:"required,max=4096"`
}

// Validator accepts everything unless FailAll is set, in which case every
// parse fails.
type Validator struct {
	FailAll bool
}

// ParseFilter turns one line of text into a filter, or reports
// InvalidFilter when the validator is set to fail.
func (v Validator) ParseFilter(text string) ParseResult {
	if v.FailAll {
		return ParseResult{Error: InvalidFilter}
	}
	return ParseResult{Filter: FromText(text)}
}

// ParseFilters splits text into lines and skips blank ones.
func (v Validator) ParseFilters(text string) ParseListResult {
	if v.FailAll {
		return ParseListResult{Errors: []string{InvalidFilter}}
	}

	lines := collection.Filter(strings.Split(text, "\n"), func(line string) bool {
		return strings.TrimSpace(line) != ""
	})
	return ParseListResult{
		Filters: collection.Map(lines, FromText),
		Errors:  []string{},
	}
}
