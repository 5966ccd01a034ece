// SPDX-License-Identifier: MIT

package results

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Table names one of the three result tables.
type Table string

const (
	TableStatistic     Table = "df_kfdat"
	TableContributions Table = "df_kfdat_contributions"
	TableDiscrepancy   Table = "dict_mmd"
)

// Run describes one write into the store.
type Run struct {
	ID          uuid.UUID
	Name        string
	Covariance  string // covariance approximation, "" for discrepancy runs
	Discrepancy string // discrepancy approximation
	Basis       string // anchor basis, "" when unused
	Filter      string // outlier filter, "" for none
	Truncation  int    // number of directions, 0 for discrepancy runs
	At          time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("results: WithLogger: nil logger")
	}

	return func(s *Store) { s.logger = l }
}

// Store holds the result tables of one session. The zero value is not usable;
// call NewStore.
type Store struct {
	mu            sync.RWMutex
	statistic     map[string][]float64
	contributions map[string][]float64
	discrepancy   map[string]float64
	runs          map[Table]map[string]Run
	logger        *zap.Logger
	now           func() time.Time
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: zap.NewNop(), now: time.Now}
	s.reset()
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) reset() {
	s.statistic = make(map[string][]float64)
	s.contributions = make(map[string][]float64)
	s.discrepancy = make(map[string]float64)
	s.runs = map[Table]map[string]Run{
		TableStatistic:     {},
		TableContributions: {},
		TableDiscrepancy:   {},
	}
}

// PutStatistic writes the cumulative series and its per-direction
// contributions under name. Both slices are copied.
func (s *Store) PutStatistic(name string, cumulative, contributions []float64, info Run) Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.stamp(name, info)
	s.write(TableStatistic, run)
	s.statistic[name] = append([]float64(nil), cumulative...)
	s.write(TableContributions, run)
	s.contributions[name] = append([]float64(nil), contributions...)

	return run
}

// PutCumulative writes only the cumulative series, as alternate orderings do.
func (s *Store) PutCumulative(name string, cumulative []float64, info Run) Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.stamp(name, info)
	s.write(TableStatistic, run)
	s.statistic[name] = append([]float64(nil), cumulative...)

	return run
}

// PutDiscrepancy writes a squared discrepancy under name.
func (s *Store) PutDiscrepancy(name string, value float64, info Run) Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.stamp(name, info)
	s.write(TableDiscrepancy, run)
	s.discrepancy[name] = value

	return run
}

// stamp fills in identity fields; caller holds mu.
func (s *Store) stamp(name string, info Run) Run {
	info.ID = uuid.New()
	info.Name = name
	info.At = s.now()

	return info
}

// write records run metadata and warns on overwrite; caller holds mu.
func (s *Store) write(t Table, run Run) {
	if prev, ok := s.runs[t][run.Name]; ok {
		s.logger.Warn("overwriting result",
			zap.String("table", string(t)),
			zap.String("name", run.Name),
			zap.Stringer("previous", prev.ID),
			zap.Stringer("run", run.ID))
	}
	s.runs[t][run.Name] = run
}

// Statistic returns a copy of the cumulative series stored under name.
func (s *Store) Statistic(name string) ([]float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.statistic[name]

	return append([]float64(nil), v...), ok
}

// Contributions returns a copy of the per-direction contributions under name.
func (s *Store) Contributions(name string) ([]float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.contributions[name]

	return append([]float64(nil), v...), ok
}

// Discrepancy returns the squared discrepancy stored under name.
func (s *Store) Discrepancy(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.discrepancy[name]

	return v, ok
}

// Has reports whether table t holds name.
func (s *Store) Has(t Table, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.runs[t][name]

	return ok
}

// Run returns the metadata of the latest write of name into t.
func (s *Store) Run(t Table, name string) (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[t][name]

	return r, ok
}

// Names lists the names in t, sorted.
func (s *Store) Names(t Table) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.runs[t]))
	for name := range s.runs[t] {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

// Clear empties every table.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.logger.Debug("results cleared")
}
