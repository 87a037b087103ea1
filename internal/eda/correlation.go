package eda

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

// DefaultCorrelationThreshold is used when no threshold is given.
const DefaultCorrelationThreshold = 0.7

// CorrelationPair is one qualifying off-diagonal entry of the matrix.
type CorrelationPair struct {
	ColumnA     string  `json:"column_a" yaml:"column_a"`
	ColumnB     string  `json:"column_b" yaml:"column_b"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
}

// CorrelationMatrix holds Pearson coefficients between the int and float
// columns. Entries involving a constant column are NaN.
type CorrelationMatrix struct {
	Columns []string
	Values  *mat.SymDense
}

// At returns the coefficient between two named columns.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values.At(i, j), true
}

// CorrelationMatrix returns the matrix, or nil when fewer than two numeric
// columns exist.
func (s *Service) CorrelationMatrix() *CorrelationMatrix {
	s.corrOnce.Do(func() {
		start := time.Now()
		var cols []*dataset.Column
		for _, c := range s.ds.Columns() {
			if c.Kind == dataset.KindInt || c.Kind == dataset.KindFloat {
				cols = append(cols, c)
			}
		}
		if len(cols) < 2 {
			return
		}
		m := &CorrelationMatrix{
			Columns: make([]string, len(cols)),
			Values:  mat.NewSymDense(len(cols), nil),
		}
		for i, a := range cols {
			m.Columns[i] = a.Name
			for j := i; j < len(cols); j++ {
				m.Values.SetSym(i, j, pearson(a, cols[j]))
			}
		}
		s.corr = m
		s.logger.Debug("correlation matrix computed", "columns", len(cols), "elapsed", time.Since(start))
	})
	return s.corr
}

// HighCorrelations returns the pairs with |r| > threshold, strongest first.
// Coefficients are rounded to 3 places; equal magnitudes order by column names.
func (s *Service) HighCorrelations(threshold float64) []CorrelationPair {
	m := s.CorrelationMatrix()
	if m == nil {
		return nil
	}
	var out []CorrelationPair
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.Values.At(i, j)
			if math.IsNaN(r) || math.Abs(r) <= threshold {
				continue
			}
			out = append(out, CorrelationPair{
				ColumnA:     m.Columns[i],
				ColumnB:     m.Columns[j],
				Coefficient: analysis.Round(r, 3),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Coefficient), math.Abs(out[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		if out[i].ColumnA != out[j].ColumnA {
			return out[i].ColumnA < out[j].ColumnA
		}
		return out[i].ColumnB < out[j].ColumnB
	})
	return out
}

// pearson correlates the rows where both columns have a value.
func pearson(a, b *dataset.Column) float64 {
	x := make([]float64, 0, a.Len())
	y := make([]float64, 0, a.Len())
	for i := range a.Values {
		if a.Values[i].Missing || b.Values[i].Missing {
			continue
		}
		x = append(x, a.Values[i].Num)
		y = append(y, b.Values[i].Num)
	}
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(rescale(x), rescale(y), nil)
}

// rescale divides v in place by the power of two nearest its largest
// magnitude when that magnitude would overflow the sums of squares. Pearson's
// r does not depend on scale.
func rescale(v []float64) []float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	if m < 1e150 {
		return v
	}
	_, exp := math.Frexp(m)
	for i := range v {
		v[i] = math.Ldexp(v[i], -exp)
	}
	return v
}
