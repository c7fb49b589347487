package stats

import (
	"sort"
	"strings"
	"sync"
)

// Memory is a StatsFactory that keeps every value in process.  Handles created
// for the same metric and tags share state.  Safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	values    map[string]float64
	summaries map[string][]float64
}

func NewMemory() *Memory {
	return &Memory{
		values:    make(map[string]float64),
		summaries: make(map[string][]float64),
	}
}

// Key renders metric plus tags the way Memory indexes them, e.g.
// "sqlexec.statements{op=query}".
func Key(metric string, tags map[string]string) string {
	if len(tags) == 0 {
		return metric
	}

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + tags[name]
	}
	return metric + "{" + strings.Join(parts, ",") + "}"
}

func (m *Memory) NewCounter(
	metric string,
	tags map[string]string) CounterStat {

	return &memoryValue{m, Key(metric, tags)}
}

func (m *Memory) NewGauge(
	metric string,
	tags map[string]string) GaugeStat {

	return &memoryValue{m, Key(metric, tags)}
}

func (m *Memory) NewSummary(
	metric string,
	tags map[string]string) SummaryStat {

	return &memorySummary{m, Key(metric, tags)}
}

// Value returns the current counter or gauge value for key.
func (m *Memory) Value(key string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Observations returns a copy of every value observed by the summary key.
func (m *Memory) Observations(key string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.summaries[key]...)
}

// Snapshot returns counters and gauges, plus the observation count of each
// summary under "<key>.count".
func (m *Memory) Snapshot() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make(map[string]float64, len(m.values)+len(m.summaries))
	for key, v := range m.values {
		res[key] = v
	}
	for key, obs := range m.summaries {
		res[key+".count"] = float64(len(obs))
	}
	return res
}

type memoryValue struct {
	m   *Memory
	key string
}

func (s *memoryValue) Add(v float64) {
	s.m.mu.Lock()
	s.m.values[s.key] += v
	s.m.mu.Unlock()
}

func (s *memoryValue) Inc() {
	s.Add(1)
}

func (s *memoryValue) Sub(v float64) {
	s.Add(-v)
}

func (s *memoryValue) Dec() {
	s.Add(-1)
}

func (s *memoryValue) Set(v float64) {
	s.m.mu.Lock()
	s.m.values[s.key] = v
	s.m.mu.Unlock()
}

func (s *memoryValue) Get() float64 {
	return s.m.Value(s.key)
}

type memorySummary struct {
	m   *Memory
	key string
}

func (s *memorySummary) Observe(v float64) {
	s.m.mu.Lock()
	s.m.summaries[s.key] = append(s.m.summaries[s.key], v)
	s.m.mu.Unlock()
}
