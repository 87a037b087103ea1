package analysis

import (
	"fmt"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

const (
	lowCardinalityLimit = 20
	topValuesLimit      = 10
	chartCategoryLimit  = 20
)

// CategoricalAnalyzer handles text columns and low-cardinality codes. It is
// also the registry fallback.
type CategoricalAnalyzer struct{}

func (CategoricalAnalyzer) Type() ColumnType { return Categorical }

func (CategoricalAnalyzer) CanAnalyze(col *dataset.Column) bool {
	return col.Kind.IsTextual() || col.UniqueCount() < lowCardinalityLimit
}

// Analyze computes frequencies, the mode and cardinality insights. A column
// without values has no mode and a mode percentage of 0.
func (CategoricalAnalyzer) Analyze(col *dataset.Column) ColumnAnalysis {
	res := base(col, Categorical)
	rows := col.Len()
	counts := col.ValueCounts()

	top := counts
	if len(top) > topValuesLimit {
		top = top[:topValuesLimit]
	}
	var mode any
	modeFreq := 0
	if len(counts) > 0 {
		mode = counts[0].Value
		modeFreq = counts[0].Count
	}
	modePct := percentOf(modeFreq, rows)
	ratio := 0.0
	if rows > 0 {
		ratio = Round(float64(res.UniqueCount)/float64(rows), 4)
	}

	res.Statistics = Statistics{
		"top_values":        top,
		"unique_count":      res.UniqueCount,
		"mode":              mode,
		"mode_frequency":    modeFreq,
		"mode_percentage":   modePct,
		"cardinality_ratio": ratio,
	}

	switch {
	case ratio > 0.95:
		res.Insights = append(res.Insights, fmt.Sprintf("Very high cardinality (%d unique values)", res.UniqueCount))
	case ratio < 0.01:
		res.Insights = append(res.Insights, fmt.Sprintf("Very low cardinality (%d unique values)", res.UniqueCount))
	}
	if modePct > 50 {
		res.Insights = append(res.Insights, fmt.Sprintf("Dominated by '%s' (%.1f%%)", counts[0].Value, modePct))
	}
	if len(counts) > 1 {
		imbalance := float64(counts[0].Count) / float64(counts[1].Count)
		if imbalance > 10 {
			res.Insights = append(res.Insights, fmt.Sprintf("Highly imbalanced (top category is %.1fx more frequent)", imbalance))
		}
	}
	return res
}

// Visualize returns the 20 most frequent labels with their counts.
func (CategoricalAnalyzer) Visualize(col *dataset.Column) Visualization {
	counts := col.ValueCounts()
	if len(counts) > chartCategoryLimit {
		counts = counts[:chartCategoryLimit]
	}
	v := Visualization{
		Type:   Categorical,
		Labels: make([]string, len(counts)),
		Counts: make([]int, len(counts)),
	}
	for i, c := range counts {
		v.Labels[i] = c.Value
		v.Counts[i] = c.Count
	}
	return v
}
