// Package query exposes the analysis service as a small set of named
// operations returning data or ready-to-print text.
package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/eda"
	"github.com/KaramelBytes/edaloom-cli/internal/report"
	"github.com/KaramelBytes/edaloom-cli/internal/utils"
)

// Tools wraps one analysis service.
type Tools struct {
	svc *eda.Service
}

// New returns the query operations over svc.
func New(svc *eda.Service) *Tools { return &Tools{svc: svc} }

// Service returns the wrapped analysis service.
func (t *Tools) Service() *eda.Service { return t.svc }

// Overview summarizes shape, memory, names and declared types.
func (t *Tools) Overview() (string, error) {
	m := t.svc.Metadata()
	dtypes, err := utils.PrettyJSON(m.Dtypes)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("Dataset Overview:\n")
	fmt.Fprintf(&sb, "- Rows: %s\n", report.Thousands(m.RowCount))
	fmt.Fprintf(&sb, "- Columns: %d\n", m.ColumnCount)
	fmt.Fprintf(&sb, "- Memory: %.2f MB\n", m.MemoryUsageMB)
	fmt.Fprintf(&sb, "- Column Names: %s\n", strings.Join(m.Columns, ", "))
	fmt.Fprintf(&sb, "- Data Types: %s\n", dtypes)
	return sb.String(), nil
}

// Quality summarizes cells, missingness and duplicates, listing every
// incomplete column.
func (t *Tools) Quality() string {
	q := t.svc.Quality()
	var sb strings.Builder
	sb.WriteString("Data Quality Report:\n")
	fmt.Fprintf(&sb, "- Total Cells: %s\n", report.Thousands(q.TotalCells))
	fmt.Fprintf(&sb, "- Missing Cells: %s (%.2f%%)\n", report.Thousands(q.MissingCells), q.MissingPercentage())
	fmt.Fprintf(&sb, "- Duplicate Rows: %s (%.2f%%)\n", report.Thousands(q.DuplicateRows), q.DuplicatePercentage)
	if len(q.MissingColumns) > 0 {
		sb.WriteString("\nColumns with Missing Values:\n")
		for _, c := range q.MissingColumns {
			fmt.Fprintf(&sb, "  - %s: %s missing (%.1f%%)\n", c, report.Thousands(q.MissingValues[c]), q.MissingPercentages[c])
		}
	}
	return sb.String()
}

// Columns lists the column names with their 1-based position.
func (t *Tools) Columns() string {
	names := t.svc.Dataset().ColumnNames()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dataset Columns (%d):\n", len(names))
	for i, n := range names {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, n)
	}
	return sb.String()
}

// AnalyzeColumn returns the analysis of one column. Surrounding whitespace in
// name is ignored.
func (t *Tools) AnalyzeColumn(name string) (analysis.ColumnAnalysis, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return analysis.ColumnAnalysis{}, ErrEmptyColumnName
	}
	return t.svc.Column(name)
}

// DescribeColumn renders AnalyzeColumn as text.
func (t *Tools) DescribeColumn(name string) (string, error) {
	a, err := t.AnalyzeColumn(name)
	if err != nil {
		return "", err
	}
	stats, err := utils.PrettyJSON(a.Statistics)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Column Analysis: %s\n", a.Name)
	fmt.Fprintf(&sb, "- Type: %s\n", a.Type)
	fmt.Fprintf(&sb, "- Unique Values: %s\n", report.Thousands(a.UniqueCount))
	fmt.Fprintf(&sb, "- Missing: %s (%.1f%%)\n\n", report.Thousands(a.MissingCount), a.MissingPercentage)
	fmt.Fprintf(&sb, "Statistics:\n%s\n\nInsights:\n", stats)
	if len(a.Insights) == 0 {
		sb.WriteString("  - No significant insights detected\n")
	}
	for _, in := range a.Insights {
		sb.WriteString("  - " + in + "\n")
	}
	return sb.String(), nil
}

// ParseThreshold reads a correlation threshold. Empty or malformed input
// yields eda.DefaultCorrelationThreshold.
func ParseThreshold(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return eda.DefaultCorrelationThreshold
	}
	return v
}

// Correlations returns the threshold used and the pairs above it.
func (t *Tools) Correlations(threshold string) (float64, []eda.CorrelationPair) {
	th := ParseThreshold(threshold)
	return th, t.svc.HighCorrelations(th)
}

// DescribeCorrelations renders Correlations as text.
func (t *Tools) DescribeCorrelations(threshold string) string {
	th, pairs := t.Correlations(threshold)
	thText := strconv.FormatFloat(th, 'f', -1, 64)
	if len(pairs) == 0 {
		return fmt.Sprintf("No correlations found above threshold %s\n", thText)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Highly Correlated Features (|r| > %s):\n\n", thText)
	for _, p := range pairs {
		fmt.Fprintf(&sb, "  - %s ↔ %s: r = %.3f\n", p.ColumnA, p.ColumnB, p.Coefficient)
	}
	return sb.String()
}

// Insights returns every generated insight.
func (t *Tools) Insights() eda.Insights { return t.svc.Insights() }

// DescribeInsights renders every non-empty category without truncation.
func (t *Tools) DescribeInsights() string {
	var sb strings.Builder
	sb.WriteString("Automated Insights:\n\n")
	for _, cat := range t.svc.Insights().Categories() {
		if len(cat.Items) == 0 {
			continue
		}
		sb.WriteString(cat.Title + ":\n")
		for _, item := range cat.Items {
			sb.WriteString("  • " + item + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Report computes every view concurrently, then renders the full report;
// format is "text", "json" or "yaml".
func (t *Tools) Report(format string) (string, error) {
	t.svc.Warm()
	return report.NewBuilder(t.svc).Render(format)
}

// Visualization returns the chart payload of one column.
func (t *Tools) Visualization(name string) (analysis.Visualization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return analysis.Visualization{}, ErrEmptyColumnName
	}
	return t.svc.Visualization(name)
}
