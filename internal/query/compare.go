package query

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/report"
)

// ColumnSummary is the compact per-column view used by Compare. Mean and Std
// are set for numeric columns only.
type ColumnSummary struct {
	Name              string              `json:"name"`
	Type              analysis.ColumnType `json:"column_type"`
	UniqueCount       int                 `json:"unique_count"`
	MissingPercentage float64             `json:"missing_percentage"`
	Mean              *float64            `json:"mean,omitempty"`
	Std               *float64            `json:"std,omitempty"`
}

// ParseColumnList splits a comma-separated list, trimming blanks and dropping
// empty entries.
func ParseColumnList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Compare summarizes the named columns in the order given. Names are trimmed
// like AnalyzeColumn trims them and blank names are dropped. If any name is
// unknown, nothing is summarized and every unknown name is reported.
func (t *Tools) Compare(names []string) ([]ColumnSummary, error) {
	names = trimNames(names)
	if len(names) == 0 {
		return nil, ErrNoColumns
	}
	ds := t.svc.Dataset()
	var invalid []string
	for _, n := range names {
		if _, ok := ds.Column(n); !ok {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidColumnsError{Invalid: invalid}
	}

	out := make([]ColumnSummary, 0, len(names))
	for _, n := range names {
		a, err := t.svc.Column(n)
		if err != nil {
			return nil, err
		}
		s := ColumnSummary{
			Name:              a.Name,
			Type:              a.Type,
			UniqueCount:       a.UniqueCount,
			MissingPercentage: a.MissingPercentage,
		}
		if a.Type == analysis.Numeric {
			if v, ok := a.Statistics.Float("mean"); ok {
				s.Mean = &v
			}
			if v, ok := a.Statistics.Float("std"); ok {
				s.Std = &v
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// DescribeComparison renders Compare as text.
func (t *Tools) DescribeComparison(names []string) (string, error) {
	summaries, err := t.Compare(names)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("Column Comparison:\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&sb, "%s (%s):\n", s.Name, s.Type)
		fmt.Fprintf(&sb, "  - Unique: %s\n", report.Thousands(s.UniqueCount))
		fmt.Fprintf(&sb, "  - Missing: %.1f%%\n", s.MissingPercentage)
		if s.Mean != nil {
			fmt.Fprintf(&sb, "  - Mean: %.2f\n", *s.Mean)
		}
		if s.Std != nil {
			fmt.Fprintf(&sb, "  - Std: %.2f\n", *s.Std)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
