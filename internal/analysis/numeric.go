package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

const maxHistogramBins = 50

// NumericAnalyzer handles integer and float columns.
type NumericAnalyzer struct{}

func (NumericAnalyzer) Type() ColumnType { return Numeric }

// CanAnalyze accepts numeric storage that is not a timestamp, duration or boolean.
func (NumericAnalyzer) CanAnalyze(col *dataset.Column) bool {
	switch col.Kind {
	case dataset.KindTime, dataset.KindDuration, dataset.KindBool:
		return false
	}
	return col.Kind.IsNumeric()
}

// Analyze computes summary statistics, Tukey outliers and shape insights.
func (NumericAnalyzer) Analyze(col *dataset.Column) ColumnAnalysis {
	res := base(col, Numeric)
	data := col.Floats()
	if len(data) == 0 {
		res.Insights = append(res.Insights, "Insufficient data: no non-missing values")
		return res
	}

	s := summarize(data)
	iqr := s.q75 - s.q25
	lower := s.q25 - 1.5*iqr
	upper := s.q75 + 1.5*iqr
	outliers := 0
	for _, x := range data {
		if x < lower || x > upper {
			outliers++
		}
	}
	outlierPct := percentOf(outliers, col.Len())

	res.Statistics = Statistics{
		"mean":               s.mean,
		"median":             s.median,
		"std":                s.std,
		"min":                s.min,
		"max":                s.max,
		"q25":                s.q25,
		"q75":                s.q75,
		"iqr":                finite(iqr),
		"lower_bound":        finite(lower),
		"upper_bound":        finite(upper),
		"skewness":           s.skew,
		"kurtosis":           s.kurt,
		"outlier_count":      outliers,
		"outlier_percentage": outlierPct,
	}

	if math.Abs(s.skew) > 1 {
		direction := "right"
		if s.skew < 0 {
			direction = "left"
		}
		res.Insights = append(res.Insights, fmt.Sprintf("Highly %s-skewed distribution (skew=%.2f)", direction, s.skew))
	}
	if outliers > 0 {
		res.Insights = append(res.Insights, fmt.Sprintf("Contains %d outliers (%.1f%%)", outliers, outlierPct))
	}
	// std is undefined for a single value, so the rule needs two.
	if len(data) > 1 && s.std > s.mean {
		res.Insights = append(res.Insights, "High variability (std > mean)")
	}
	return res
}

// Visualize returns the raw values and a suggested histogram bin count.
func (NumericAnalyzer) Visualize(col *dataset.Column) Visualization {
	return Visualization{
		Type:   Numeric,
		Values: col.Floats(),
		Bins:   min(maxHistogramBins, col.UniqueCount()),
	}
}

type summary struct {
	mean, median, std, min, max float64
	q25, q75                    float64
	skew, kurt                  float64
}

// summarize expects at least one value. Moments that need more observations
// than are available (std: 2, skew: 3, kurtosis: 4) or a non-zero spread are
// reported as 0, as is any moment that does not fit in a float64.
func summarize(data []float64) summary {
	var s summary
	s.median, _ = stats.Median(data)
	s.min, _ = stats.Min(data)
	s.max, _ = stats.Max(data)

	shift := momentShift(s.min, s.max)
	scaled := data
	if shift != 0 {
		scaled = make([]float64, len(data))
		for i, x := range data {
			scaled[i] = math.Ldexp(x, -shift)
		}
	}
	mean, _ := stats.Mean(scaled)
	s.mean = finite(math.Ldexp(mean, shift))
	var spread float64
	if len(data) > 1 {
		spread, _ = stats.StandardDeviationSample(scaled)
		s.std = finite(math.Ldexp(spread, shift))
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	s.q25 = quantile(sorted, 0.25)
	s.q75 = quantile(sorted, 0.75)

	if spread > 0 {
		if len(data) >= 3 {
			s.skew = finite(stat.Skew(scaled, nil))
		}
		if len(data) >= 4 {
			s.kurt = finite(stat.ExKurtosis(scaled, nil))
		}
	}
	return s
}

// momentShift returns the binary exponent that brings values near the float64
// limit into [-1, 1]; sums of squares of such values overflow otherwise.
// Ordinary magnitudes are left untouched. Scaling by a power of two is exact.
func momentShift(lo, hi float64) int {
	m := math.Max(math.Abs(lo), math.Abs(hi))
	if m < 1e150 {
		return 0
	}
	_, exp := math.Frexp(m)
	return exp
}

// quantile interpolates linearly between the closest ranks of sorted data
// (position q*(n-1)).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
