package analysis

import "github.com/KaramelBytes/edaloom-cli/internal/dataset"

// Analyzer computes statistics and insights for one kind of column.
// CanAnalyze never fails; a false result means "not mine".
type Analyzer interface {
	Type() ColumnType
	CanAnalyze(col *dataset.Column) bool
	Analyze(col *dataset.Column) ColumnAnalysis
	Visualize(col *dataset.Column) Visualization
}

// Registry dispatches a column to the first analyzer that claims it.
// Datetime is checked before Numeric, and Numeric before Categorical, because
// Categorical also claims any column with fewer than 20 distinct values.
type Registry struct {
	analyzers []Analyzer
	fallback  Analyzer
}

// NewRegistry returns the default ordering: Datetime, Numeric, Categorical.
func NewRegistry() *Registry {
	cat := CategoricalAnalyzer{}
	return &Registry{
		analyzers: []Analyzer{DatetimeAnalyzer{}, NumericAnalyzer{}, cat},
		fallback:  cat,
	}
}

// Analyzers returns the analyzers in dispatch order.
func (r *Registry) Analyzers() []Analyzer { return append([]Analyzer(nil), r.analyzers...) }

// Resolve returns the analyzer for col, falling back to Categorical.
func (r *Registry) Resolve(col *dataset.Column) Analyzer {
	for _, a := range r.analyzers {
		if a.CanAnalyze(col) {
			return a
		}
	}
	return r.fallback
}

// Analyze resolves and runs the analyzer for col.
func (r *Registry) Analyze(col *dataset.Column) ColumnAnalysis {
	return r.Resolve(col).Analyze(col)
}

// Visualize resolves and extracts the chart payload for col.
func (r *Registry) Visualize(col *dataset.Column) Visualization {
	return r.Resolve(col).Visualize(col)
}
