package analysis

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// DatetimeAnalyzer handles timestamp columns.
type DatetimeAnalyzer struct{}

func (DatetimeAnalyzer) Type() ColumnType { return Datetime }

func (DatetimeAnalyzer) CanAnalyze(col *dataset.Column) bool {
	return col.Kind == dataset.KindTime
}

// Analyze reports the covered range. A column without any value yields a
// fixed result regardless of its length.
func (DatetimeAnalyzer) Analyze(col *dataset.Column) ColumnAnalysis {
	times := col.Times()
	if len(times) == 0 {
		return ColumnAnalysis{
			Name:              col.Name,
			Type:              Datetime,
			UniqueCount:       0,
			MissingCount:      col.MissingCount(),
			MissingPercentage: 100.0,
			Statistics:        Statistics{},
			Insights:          []string{"All values are missing"},
		}
	}

	res := base(col, Datetime)
	lo, hi := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	days := wholeDays(lo, hi)

	res.Statistics = Statistics{
		"min_date":        lo.Format(timestampLayout),
		"max_date":        hi.Format(timestampLayout),
		"date_range_days": days,
		"year_range":      fmt.Sprintf("%d - %d", lo.Year(), hi.Year()),
	}
	if days > 365 {
		res.Insights = append(res.Insights, fmt.Sprintf("Spans %d days (%d years)", days, days/365))
	}
	return res
}

// wholeDays counts complete days from lo to hi. time.Duration saturates after
// about 292 years, so the count is taken from Unix seconds.
func wholeDays(lo, hi time.Time) int {
	secs := hi.Unix() - lo.Unix()
	if hi.Nanosecond() < lo.Nanosecond() {
		secs--
	}
	return int(secs / 86400)
}

// Visualize returns the non-missing values as calendar dates.
func (DatetimeAnalyzer) Visualize(col *dataset.Column) Visualization {
	times := col.Times()
	v := Visualization{Type: Datetime, Dates: make([]string, len(times))}
	for i, t := range times {
		v.Dates[i] = t.Format(dateLayout)
	}
	return v
}
