package analysis

import (
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

// ColumnType is the semantic type a column resolves to.
type ColumnType string

const (
	Numeric     ColumnType = "numeric"
	Categorical ColumnType = "categorical"
	Datetime    ColumnType = "datetime"
	Text        ColumnType = "text"
	Boolean     ColumnType = "boolean"
	Unknown     ColumnType = "unknown"
)

// Statistics holds analyzer-specific values keyed by statistic name.
type Statistics map[string]any

// Float returns a numeric statistic, or (0, false) when absent.
func (s Statistics) Float(key string) (float64, bool) {
	switch v := s[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// ColumnAnalysis is the result of analyzing one column.
type ColumnAnalysis struct {
	Name              string     `json:"name" yaml:"name"`
	Type              ColumnType `json:"column_type" yaml:"column_type"`
	UniqueCount       int        `json:"unique_count" yaml:"unique_count"`
	MissingCount      int        `json:"missing_count" yaml:"missing_count"`
	MissingPercentage float64    `json:"missing_percentage" yaml:"missing_percentage"`
	Statistics        Statistics `json:"statistics" yaml:"statistics"`
	Insights          []string   `json:"insights" yaml:"insights"`
}

// Visualization is the chart-oriented extraction of a column. Only the fields
// relevant to Type are populated.
type Visualization struct {
	Type   ColumnType `json:"type"`
	Labels []string   `json:"labels,omitempty"`
	Counts []int      `json:"counts,omitempty"`
	Values []float64  `json:"values,omitempty"`
	Bins   int        `json:"bins,omitempty"`
	Dates  []string   `json:"dates,omitempty"`
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// FormatFloat renders a rounded value in shortest form, always keeping a
// fractional part ("1.0", "0.25").
func FormatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEN") {
		s += ".0"
	}
	return s
}

// percentOf returns part/whole*100 rounded to 2 places; an empty whole gives 0.
func percentOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return Round(float64(part)/float64(whole)*100, 2)
}

func base(col *dataset.Column, t ColumnType) ColumnAnalysis {
	missing := col.MissingCount()
	return ColumnAnalysis{
		Name:              col.Name,
		Type:              t,
		UniqueCount:       col.UniqueCount(),
		MissingCount:      missing,
		MissingPercentage: percentOf(missing, col.Len()),
		Statistics:        Statistics{},
		Insights:          []string{},
	}
}
