package eda

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

func mustDataset(t *testing.T, cols ...*dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("test", cols...)
	require.NoError(t, err)
	return ds
}

func TestMetadata(t *testing.T) {
	ds := mustDataset(t,
		dataset.Floats("age", 22, 38, math.NaN()),
		dataset.Strings("sex", "male", "female", "female"),
		dataset.NewColumn("pclass", dataset.KindInt, dataset.Int(3), dataset.Int(1), dataset.Int(3)),
	)
	m := NewService(ds).Metadata()
	assert.Equal(t, 3, m.RowCount)
	assert.Equal(t, 3, m.ColumnCount)
	assert.Equal(t, [2]int{3, 3}, m.Shape)
	assert.Equal(t, []string{"age", "sex", "pclass"}, m.Columns)
	assert.Equal(t, map[string]string{"age": "float", "sex": "string", "pclass": "int"}, m.Dtypes)
	assert.GreaterOrEqual(t, m.MemoryUsageMB, 0.0)
}

func TestQualityMissingAndDuplicates(t *testing.T) {
	ds := mustDataset(t,
		dataset.Floats("a", 1, 1, 2, math.NaN()),
		dataset.Strings("b", "x", "x", "y", ""),
		dataset.Strings("c", "p", "p", "q", "r"),
	)
	q := NewService(ds).Quality()
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, q.MissingValues)
	assert.Equal(t, map[string]float64{"a": 25.0, "b": 25.0}, q.MissingPercentages)
	assert.Equal(t, []string{"a", "b"}, q.MissingColumns)
	assert.Equal(t, 1, q.DuplicateRows)
	assert.Equal(t, 25.0, q.DuplicatePercentage)
	assert.Equal(t, 12, q.TotalCells)
	assert.Equal(t, 2, q.MissingCells)
	assert.Equal(t, 16.67, q.MissingPercentage())
}

func TestQualityNULTextIsNotMissing(t *testing.T) {
	ds := mustDataset(t,
		dataset.NewColumn("s", dataset.KindString, dataset.Text("\x00"), dataset.Null()),
	)
	q := NewService(ds).Quality()
	assert.Equal(t, 0, q.DuplicateRows)
	assert.Equal(t, 1, q.MissingCells)
}

func TestQualityEmptyDataset(t *testing.T) {
	q := NewService(mustDataset(t, dataset.Floats("a"))).Quality()
	assert.Equal(t, 0, q.TotalCells)
	assert.Equal(t, 0.0, q.DuplicatePercentage)
	assert.Empty(t, q.MissingColumns)
}

func TestHighCorrelationsOrderingAndTies(t *testing.T) {
	ds := mustDataset(t,
		dataset.Floats("y", 2, 4, 6, 8, 10),
		dataset.Floats("x", 1, 2, 3, 4, 5),
		dataset.Floats("z", 5, 4, 3, 2, 1),
		dataset.Floats("flat", 7, 7, 7, 7, 7),
		dataset.Floats("w", 1, 3, 2, 5, 4),
	)
	svc := NewService(ds)
	pairs := svc.HighCorrelations(0.95)
	require.Len(t, pairs, 3)
	assert.Equal(t, CorrelationPair{ColumnA: "x", ColumnB: "z", Coefficient: -1.0}, pairs[0])
	assert.Equal(t, CorrelationPair{ColumnA: "y", ColumnB: "x", Coefficient: 1.0}, pairs[1])
	assert.Equal(t, CorrelationPair{ColumnA: "y", ColumnB: "z", Coefficient: -1.0}, pairs[2])

	for _, p := range svc.HighCorrelations(0) {
		assert.NotEqual(t, "flat", p.ColumnA)
		assert.NotEqual(t, "flat", p.ColumnB)
		assert.False(t, math.IsNaN(p.Coefficient))
	}

	m := svc.CorrelationMatrix()
	require.NotNil(t, m)
	r, ok := m.At("w", "x")
	require.True(t, ok)
	assert.InDelta(t, 0.8, r, 1e-9)
	r, _ = m.At("x", "w")
	assert.InDelta(t, 0.8, r, 1e-9)
	_, ok = m.At("x", "missing")
	assert.False(t, ok)
}

func TestCorrelationPairwiseComplete(t *testing.T) {
	ds := mustDataset(t,
		dataset.Floats("a", 1, 2, math.NaN(), 4, 5),
		dataset.Floats("b", 10, 20, 999, math.NaN(), 50),
	)
	pairs := NewService(ds).HighCorrelations(0.7)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1.0, pairs[0].Coefficient)
}

func TestCorrelationNeedsTwoNumericColumns(t *testing.T) {
	ds := mustDataset(t,
		dataset.Floats("a", 1, 2, 3),
		dataset.Strings("b", "x", "y", "z"),
		dataset.NewColumn("c", dataset.KindBool, dataset.Bool(true), dataset.Bool(false), dataset.Bool(true)),
	)
	svc := NewService(ds)
	assert.Nil(t, svc.CorrelationMatrix())
	assert.Empty(t, svc.HighCorrelations(0))
}

func TestColumnAnalysesOrderIsStable(t *testing.T) {
	var cols []*dataset.Column
	for i := 0; i < 25; i++ {
		cols = append(cols, dataset.Floats(fmt.Sprintf("c%02d", i), float64(i), float64(i+1)))
	}
	ds := mustDataset(t, cols...)
	for _, workers := range []int{1, 3, 16} {
		got := NewService(ds, WithWorkers(workers)).ColumnAnalyses()
		require.Len(t, got, 25)
		for i, a := range got {
			assert.Equal(t, cols[i].Name, a.Name)
		}
	}
}

func TestServiceMemoizes(t *testing.T) {
	ds := mustDataset(t, dataset.Floats("a", 1, 2, 3), dataset.Floats("b", 3, 2, 1))
	svc := NewService(ds)
	svc.Warm()
	first := svc.ColumnAnalyses()
	assert.Equal(t, first, svc.ColumnAnalyses())
	assert.Same(t, svc.CorrelationMatrix(), svc.CorrelationMatrix())
	assert.Equal(t, svc.Insights(), svc.Insights())
	assert.NotEmpty(t, svc.SessionID())

	first[0].Name = "mutated"
	assert.Equal(t, "a", svc.ColumnAnalyses()[0].Name)
}

func TestColumnLookup(t *testing.T) {
	var cols []*dataset.Column
	for i := 0; i < 12; i++ {
		cols = append(cols, dataset.Strings(fmt.Sprintf("col%d", i), "x"))
	}
	svc := NewService(mustDataset(t, cols...))

	a, err := svc.Column("col3")
	require.NoError(t, err)
	assert.Equal(t, analysis.Categorical, a.Type)

	_, err = svc.Column("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	var nf *ColumnNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Name)
	assert.Len(t, nf.Available, 10)
	assert.True(t, nf.More)
	assert.Contains(t, err.Error(), "column 'nope' not found")

	_, err = svc.Visualization("nope")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	v, err := svc.Visualization("col0")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, v.Labels)
}

func TestInsightsDropRecommendation(t *testing.T) {
	mostly := make([]string, 20)
	some := make([]string, 20)
	for i := 0; i < 20; i++ {
		if i < 13 {
			mostly[i] = fmt.Sprintf("v%d", i)
		}
		if i >= 5 {
			some[i] = fmt.Sprintf("w%d", i)
		}
	}
	ds := mustDataset(t, dataset.Strings("mostly_missing", mostly...), dataset.Strings("some_missing", some...))
	in := NewService(ds).Insights()

	assert.Equal(t, []string{"Dataset has 30.0% missing values"}, in.DataQuality)
	assert.Equal(t, []string{"Consider dropping columns with >30% missing: mostly_missing"}, in.Recommendations)
	assert.Empty(t, in.Correlations)
}

func TestInsightsDuplicatesAndDistributions(t *testing.T) {
	ds := mustDataset(t,
		dataset.Floats("fare", 1, 2, 3, 4, 100, 1),
		dataset.Strings("tag", "a", "b", "c", "d", "e", "a"),
	)
	in := NewService(ds).Insights()
	assert.Equal(t, []string{"Found 1 duplicate rows (16.7%)"}, in.DataQuality)
	require.NotEmpty(t, in.Distributions)
	assert.Contains(t, in.Distributions[0], "fare: Highly right-skewed distribution")
	assert.Contains(t, in.Recommendations, "Apply log/box-cox transformation to skewed features: fare")
}

func TestInsightsCorrelationLimits(t *testing.T) {
	var cols []*dataset.Column
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		cols = append(cols, dataset.Floats(name, 1, 2, 3, 4, 100))
	}
	in := NewService(mustDataset(t, cols...)).Insights()

	require.Len(t, in.Correlations, 5)
	assert.Equal(t, "Strong correlation between 'a' and 'b' (r=1.0)", in.Correlations[0])
	assert.Equal(t, []string{
		"Apply log/box-cox transformation to skewed features: a, b, c, d, e",
		"Consider removing redundant features or using PCA for highly correlated variables",
	}, in.Recommendations)

	cats := in.Categories()
	require.Len(t, cats, 4)
	assert.Equal(t, "Data Quality", cats[0].Title)
	assert.Equal(t, "recommendations", cats[3].Key)
	assert.Equal(t, len(in.Distributions)+7, in.Len())
}
