// Package report assembles text and structured EDA reports from an analysis
// source.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/eda"
)

// Text report truncation limits.
const (
	MaxListedColumns    = 10
	MaxMissingColumns   = 10
	MaxColumnSections   = 10
	MaxInsightsPerGroup = 5
)

// Source is what a report is built from. *eda.Service satisfies it.
type Source interface {
	Metadata() eda.Metadata
	Quality() eda.QualityReport
	ColumnAnalyses() []analysis.ColumnAnalysis
	Insights() eda.Insights
}

// Section is one titled block of a text report.
type Section struct {
	Title string
	Body  string
}

// Step renders one section from the source.
type Step func(Source) Section

// DefaultSteps is the section order of a full report.
func DefaultSteps() []Step {
	return []Step{MetadataStep, QualityStep, ColumnsStep, InsightsStep}
}

// Builder renders a fixed, ordered list of steps.
type Builder struct {
	src   Source
	steps []Step
}

// NewBuilder returns a builder over src. With no steps, DefaultSteps is used.
func NewBuilder(src Source, steps ...Step) *Builder {
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	return &Builder{src: src, steps: steps}
}

// Sections runs every step in order.
func (b *Builder) Sections() []Section {
	out := make([]Section, 0, len(b.steps))
	for _, s := range b.steps {
		out = append(out, s(b.src))
	}
	return out
}

// Text renders the truncated, human-readable report.
func (b *Builder) Text() string {
	var sb strings.Builder
	for i, sec := range b.Sections() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("[" + sec.Title + "]\n")
		sb.WriteString(sec.Body)
	}
	return sb.String()
}

// Document is the untruncated structured report.
type Document struct {
	Metadata eda.Metadata              `json:"metadata" yaml:"metadata"`
	Quality  eda.QualityReport         `json:"quality" yaml:"quality"`
	Columns  []analysis.ColumnAnalysis `json:"columns" yaml:"columns"`
	Insights eda.Insights              `json:"insights" yaml:"insights"`
}

// Structured returns every metadata, quality, column and insight value.
func (b *Builder) Structured() Document {
	return Document{
		Metadata: b.src.Metadata(),
		Quality:  b.src.Quality(),
		Columns:  b.src.ColumnAnalyses(),
		Insights: b.src.Insights(),
	}
}

// JSON encodes the structured report with two-space indentation.
func (b *Builder) JSON() (string, error) {
	data, err := json.MarshalIndent(b.Structured(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report json: %w", err)
	}
	return string(data), nil
}

// YAML encodes the structured report.
func (b *Builder) YAML() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b.Structured()); err != nil {
		return "", fmt.Errorf("encode report yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode report yaml: %w", err)
	}
	return buf.String(), nil
}

// Render picks the output by format name. Unknown formats render as text.
func (b *Builder) Render(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return b.JSON()
	case "yaml", "yml":
		return b.YAML()
	default:
		return b.Text(), nil
	}
}

// MetadataStep renders shape, memory and up to MaxListedColumns names.
func MetadataStep(src Source) Section {
	m := src.Metadata()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Shape: %s rows × %d columns\n", Thousands(m.RowCount), m.ColumnCount)
	fmt.Fprintf(&sb, "Memory Usage: %.2f MB\n", m.MemoryUsageMB)
	names := m.Columns
	more := ""
	if len(names) > MaxListedColumns {
		names = names[:MaxListedColumns]
		more = "..."
	}
	fmt.Fprintf(&sb, "Columns: %s%s\n", strings.Join(names, ", "), more)
	return Section{Title: "DATASET METADATA", Body: sb.String()}
}

// QualityStep renders overall missingness, duplicates and up to
// MaxMissingColumns incomplete columns.
func QualityStep(src Source) Section {
	q := src.Quality()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Missing Values: %s cells (%.2f%%)\n", Thousands(q.MissingCells), q.MissingPercentage())
	fmt.Fprintf(&sb, "Duplicate Rows: %s (%.2f%%)\n", Thousands(q.DuplicateRows), q.DuplicatePercentage)
	if len(q.MissingColumns) > 0 {
		sb.WriteString("Columns with Missing Values:\n")
		for i, c := range q.MissingColumns {
			if i == MaxMissingColumns {
				break
			}
			fmt.Fprintf(&sb, "- %s: %s (%.1f%%)\n", c, Thousands(q.MissingValues[c]), q.MissingPercentages[c])
		}
	}
	return Section{Title: "DATA QUALITY", Body: sb.String()}
}

// ColumnsStep renders the first MaxColumnSections column analyses.
func ColumnsStep(src Source) Section {
	var sb strings.Builder
	for i, a := range src.ColumnAnalyses() {
		if i == MaxColumnSections {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", a.Name, a.Type)
		fmt.Fprintf(&sb, "  Unique Values: %s\n", Thousands(a.UniqueCount))
		fmt.Fprintf(&sb, "  Missing: %s (%.1f%%)\n", Thousands(a.MissingCount), a.MissingPercentage)
		if len(a.Insights) > 0 {
			fmt.Fprintf(&sb, "  Insights: %s\n", strings.Join(a.Insights, "; "))
		}
	}
	return Section{Title: "COLUMN ANALYSIS", Body: sb.String()}
}

// InsightsStep renders up to MaxInsightsPerGroup items of each non-empty
// category.
func InsightsStep(src Source) Section {
	var sb strings.Builder
	for _, cat := range src.Insights().Categories() {
		if len(cat.Items) == 0 {
			continue
		}
		sb.WriteString(cat.Title + ":\n")
		for i, item := range cat.Items {
			if i == MaxInsightsPerGroup {
				break
			}
			sb.WriteString("- " + item + "\n")
		}
		sb.WriteString("\n")
	}
	return Section{Title: "AUTOMATED INSIGHTS", Body: sb.String()}
}

// Thousands formats n with comma separators.
func Thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}
