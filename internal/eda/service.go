// Package eda coordinates the per-column analyzers over a whole dataset and
// derives dataset-level quality figures, correlations and insights.
package eda

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

// Service computes and memoizes every derived view of one dataset. Each view
// is computed at most once; a new dataset needs a new Service.
type Service struct {
	ds       *dataset.Dataset
	registry *analysis.Registry
	workers  int
	logger   *slog.Logger
	session  string

	metaOnce sync.Once
	meta     Metadata

	qualityOnce sync.Once
	quality     QualityReport

	columnsOnce sync.Once
	columns     []analysis.ColumnAnalysis
	byName      map[string]int

	corrOnce sync.Once
	corr     *CorrelationMatrix

	insightsOnce sync.Once
	insights     Insights
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for timing output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers bounds the number of columns analyzed concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewService wraps ds. The dataset is never modified.
func NewService(ds *dataset.Dataset, opts ...Option) *Service {
	s := &Service{
		ds:       ds,
		registry: analysis.NewRegistry(),
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.Default(),
		session:  uuid.NewString(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("session", s.session, "dataset", ds.Name)
	return s
}

// Dataset returns the analyzed dataset.
func (s *Service) Dataset() *dataset.Dataset { return s.ds }

// SessionID identifies this Service in logs.
func (s *Service) SessionID() string { return s.session }

// ColumnAnalyses returns one analysis per column in dataset order.
func (s *Service) ColumnAnalyses() []analysis.ColumnAnalysis {
	s.columnsOnce.Do(func() {
		start := time.Now()
		cols := s.ds.Columns()
		out := make([]analysis.ColumnAnalysis, len(cols))
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, col := range cols {
			g.Go(func() error {
				out[i] = s.registry.Analyze(col)
				return nil
			})
		}
		_ = g.Wait()

		s.byName = make(map[string]int, len(out))
		for i, a := range out {
			s.byName[a.Name] = i
		}
		s.columns = out
		s.logger.Debug("column analyses computed", "columns", len(out), "workers", s.workers, "elapsed", time.Since(start))
	})
	return append([]analysis.ColumnAnalysis(nil), s.columns...)
}

// Column returns the analysis of one column.
func (s *Service) Column(name string) (analysis.ColumnAnalysis, error) {
	s.ColumnAnalyses()
	i, ok := s.byName[name]
	if !ok {
		return analysis.ColumnAnalysis{}, newColumnNotFound(name, s.ds.ColumnNames())
	}
	return s.columns[i], nil
}

// Visualization returns the chart payload for one column.
func (s *Service) Visualization(name string) (analysis.Visualization, error) {
	col, ok := s.ds.Column(name)
	if !ok {
		return analysis.Visualization{}, newColumnNotFound(name, s.ds.ColumnNames())
	}
	return s.registry.Visualize(col), nil
}

// Warm precomputes every view, running column analysis and correlation
// concurrently.
func (s *Service) Warm() {
	start := time.Now()
	var g errgroup.Group
	g.Go(func() error { s.Metadata(); return nil })
	g.Go(func() error { s.Quality(); return nil })
	g.Go(func() error { s.ColumnAnalyses(); return nil })
	g.Go(func() error { s.CorrelationMatrix(); return nil })
	_ = g.Wait()
	s.Insights()
	s.logger.Debug("service warmed", "elapsed", time.Since(start))
}
