package eda

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
)

const (
	maxCorrelationInsights = 5
	maxSkewedSuggestions   = 5
	dropMissingAbove       = 30.0
)

// Insights groups the generated findings by category.
type Insights struct {
	DataQuality     []string `json:"data_quality" yaml:"data_quality"`
	Distributions   []string `json:"distributions" yaml:"distributions"`
	Correlations    []string `json:"correlations" yaml:"correlations"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
}

// InsightCategory is one titled group of insights.
type InsightCategory struct {
	Key   string
	Title string
	Items []string
}

// Categories returns the groups in their fixed order.
func (in Insights) Categories() []InsightCategory {
	return []InsightCategory{
		{Key: "data_quality", Title: "Data Quality", Items: in.DataQuality},
		{Key: "distributions", Title: "Distributions", Items: in.Distributions},
		{Key: "correlations", Title: "Correlations", Items: in.Correlations},
		{Key: "recommendations", Title: "Recommendations", Items: in.Recommendations},
	}
}

// Len is the total number of insights across categories.
func (in Insights) Len() int {
	return len(in.DataQuality) + len(in.Distributions) + len(in.Correlations) + len(in.Recommendations)
}

// Insights derives dataset-level findings and recommendations from the other
// views.
func (s *Service) Insights() Insights {
	s.insightsOnce.Do(func() {
		in := Insights{
			DataQuality:     []string{},
			Distributions:   []string{},
			Correlations:    []string{},
			Recommendations: []string{},
		}

		q := s.Quality()
		if q.MissingCells > 0 {
			in.DataQuality = append(in.DataQuality,
				fmt.Sprintf("Dataset has %s%% missing values", analysis.FormatFloat(q.MissingPercentage())))
		}
		if q.DuplicateRows > 0 {
			in.DataQuality = append(in.DataQuality,
				fmt.Sprintf("Found %d duplicate rows (%.1f%%)", q.DuplicateRows, q.DuplicatePercentage))
		}

		columns := s.ColumnAnalyses()
		var skewed []string
		for _, a := range columns {
			for _, msg := range a.Insights {
				in.Distributions = append(in.Distributions, a.Name+": "+msg)
			}
			if a.Type != analysis.Numeric {
				continue
			}
			if sk, ok := a.Statistics.Float("skewness"); ok && math.Abs(sk) > 1 {
				skewed = append(skewed, a.Name)
			}
		}

		high := s.HighCorrelations(DefaultCorrelationThreshold)
		for i, p := range high {
			if i == maxCorrelationInsights {
				break
			}
			in.Correlations = append(in.Correlations,
				fmt.Sprintf("Strong correlation between '%s' and '%s' (r=%s)", p.ColumnA, p.ColumnB, analysis.FormatFloat(p.Coefficient)))
		}

		var drop []string
		for _, c := range q.MissingColumns {
			if q.MissingPercentages[c] > dropMissingAbove {
				drop = append(drop, c)
			}
		}
		if len(drop) > 0 {
			in.Recommendations = append(in.Recommendations,
				"Consider dropping columns with >30% missing: "+strings.Join(drop, ", "))
		}
		if len(skewed) > 0 {
			if len(skewed) > maxSkewedSuggestions {
				skewed = skewed[:maxSkewedSuggestions]
			}
			in.Recommendations = append(in.Recommendations,
				"Apply log/box-cox transformation to skewed features: "+strings.Join(skewed, ", "))
		}
		if len(high) > 0 {
			in.Recommendations = append(in.Recommendations,
				"Consider removing redundant features or using PCA for highly correlated variables")
		}

		s.insights = in
	})
	return s.insights
}
