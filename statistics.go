package zonecheck

import "sort"

// Stat is one named entry yielded by Statistics.Entries: the raw tally and
// its share of the running total.
type Stat struct {
	Name    string
	Value   int64
	Percent float64 // 0 when the running total is 0
	hasPct  bool
}

// HasPercent reports whether Percent is meaningful (false when the
// Statistics bag's running total was zero at query time).
func (s Stat) HasPercent() bool { return s.hasPct }

// Statistics is a named counter bag: per-key tallies plus a running total
// used to compute each key's percentage share. It is local per zone pass,
// grounded on original Statistics.py, with the dec path fixed to be
// symmetric with inc per spec.md §9(b) (the original only updates the
// running total unconditionally on dec, double counting when the key is
// first seen there).
type Statistics struct {
	values map[string]int64
	total  int64
}

// NewStatistics returns an empty counter bag.
func NewStatistics() *Statistics {
	return &Statistics{values: make(map[string]int64)}
}

// Inc increments key by delta (default 1 via IncOne) and the running total
// by the same amount.
func (s *Statistics) Inc(key string, delta int64) {
	s.values[key] += delta
	s.total += delta
}

// IncOne increments key by 1.
func (s *Statistics) IncOne(key string) { s.Inc(key, 1) }

// Dec decrements key by delta and the running total by the same amount,
// symmetrically to Inc — including when key has not been seen before,
// which inserts it as a negative tally; see DESIGN.md Open Question (b).
func (s *Statistics) Dec(key string, delta int64) {
	s.values[key] -= delta
	s.total -= delta
}

// Get returns the current tally for key, or 0 if absent.
func (s *Statistics) Get(key string) int64 {
	return s.values[key]
}

// Entries yields (name, value, percent) triples in stable, sorted-by-name
// order so report output is deterministic across runs.
func (s *Statistics) Entries() []Stat {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]Stat, 0, len(names))
	for _, name := range names {
		v := s.values[name]
		st := Stat{Name: name, Value: v}
		if s.total != 0 {
			st.Percent = float64(v) / float64(s.total) * 100
			st.hasPct = true
		}
		out = append(out, st)
	}
	return out
}
