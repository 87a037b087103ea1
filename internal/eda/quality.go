package eda

import (
	"time"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
)

// Metadata describes the dataset's shape and declared column types.
type Metadata struct {
	RowCount      int               `json:"row_count" yaml:"row_count"`
	ColumnCount   int               `json:"column_count" yaml:"column_count"`
	Shape         [2]int            `json:"shape" yaml:"shape"`
	MemoryUsageMB float64           `json:"memory_usage_mb" yaml:"memory_usage_mb"`
	Columns       []string          `json:"columns" yaml:"columns"`
	Dtypes        map[string]string `json:"dtypes" yaml:"dtypes"`
}

// QualityReport summarizes missing cells and duplicated rows. Only columns
// with at least one missing value appear in the per-column fields;
// MissingColumns lists them in dataset order.
type QualityReport struct {
	MissingValues       map[string]int     `json:"missing_values" yaml:"missing_values"`
	MissingPercentages  map[string]float64 `json:"missing_percentages" yaml:"missing_percentages"`
	MissingColumns      []string           `json:"missing_columns" yaml:"missing_columns"`
	DuplicateRows       int                `json:"duplicate_rows" yaml:"duplicate_rows"`
	DuplicatePercentage float64            `json:"duplicate_percentage" yaml:"duplicate_percentage"`
	TotalCells          int                `json:"total_cells" yaml:"total_cells"`
	MissingCells        int                `json:"missing_cells" yaml:"missing_cells"`
}

// MissingPercentage is the share of all cells that are missing.
func (q QualityReport) MissingPercentage() float64 {
	return pct(q.MissingCells, q.TotalCells)
}

// Metadata returns the dataset metadata.
func (s *Service) Metadata() Metadata {
	s.metaOnce.Do(func() {
		cols := s.ds.Columns()
		m := Metadata{
			RowCount:      s.ds.Rows(),
			ColumnCount:   len(cols),
			Shape:         [2]int{s.ds.Rows(), len(cols)},
			MemoryUsageMB: analysis.Round(float64(s.ds.MemoryUsage())/1024/1024, 2),
			Columns:       s.ds.ColumnNames(),
			Dtypes:        make(map[string]string, len(cols)),
		}
		for _, c := range cols {
			m.Dtypes[c.Name] = c.Kind.String()
		}
		s.meta = m
	})
	return s.meta
}

// Quality returns the data quality report.
func (s *Service) Quality() QualityReport {
	s.qualityOnce.Do(func() {
		start := time.Now()
		rows := s.ds.Rows()
		q := QualityReport{
			MissingValues:      map[string]int{},
			MissingPercentages: map[string]float64{},
			MissingColumns:     []string{},
			TotalCells:         rows * s.ds.Cols(),
		}
		for _, c := range s.ds.Columns() {
			n := c.MissingCount()
			if n == 0 {
				continue
			}
			q.MissingValues[c.Name] = n
			q.MissingPercentages[c.Name] = pct(n, rows)
			q.MissingColumns = append(q.MissingColumns, c.Name)
			q.MissingCells += n
		}

		seen := make(map[string]struct{}, rows)
		for i := 0; i < rows; i++ {
			k := s.ds.RowKey(i)
			if _, dup := seen[k]; dup {
				q.DuplicateRows++
				continue
			}
			seen[k] = struct{}{}
		}
		q.DuplicatePercentage = pct(q.DuplicateRows, rows)

		s.quality = q
		s.logger.Debug("quality report computed", "missing_cells", q.MissingCells, "duplicates", q.DuplicateRows, "elapsed", time.Since(start))
	})
	return s.quality
}

// pct returns part/whole*100 rounded to 2 places; an empty whole gives 0.
func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return analysis.Round(float64(part)/float64(whole)*100, 2)
}
