// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package stats defines the metrics client the index manager reports to,
// with no-op, expvar and fan-out implementations.
package stats

import (
	"expvar"
	"sort"
	"sync"
	"time"

	"github.com/featurebasedb/indexedlist/logger"
)

// Metric names reported by the index manager.
const (
	MetricAppend  = "append"
	MetricSet     = "set"
	MetricRemove  = "remove"
	MetricClear   = "clear"
	MetricReindex = "reindex"

	MetricSlots       = "slots"
	MetricFree        = "free"
	MetricReindexTime = "reindex_seconds"
	MetricIndexes     = "indexes"
)

// Expvar is the root expvar map of every ExpvarStatsClient.
var Expvar = expvar.NewMap("indexedlist")

// StatsClient represents a client to a stats server.
type StatsClient interface {
	// Returns a sorted list of tags on the client.
	Tags() []string

	// Returns a new client with additional tags appended.
	WithTags(tags ...string) StatsClient

	// Tracks the number of times something occurs.
	Count(name string, value int64, rate float64)

	// Tracks the number of times something occurs with custom tags.
	CountWithCustomTags(name string, value int64, rate float64, tags []string)

	// Sets the value of a metric.
	Gauge(name string, value float64, rate float64)

	// Tracks statistical distribution of a metric.
	Histogram(name string, value float64, rate float64)

	// Tracks number of unique elements.
	Set(name string, value string, rate float64)

	// Tracks timing information for a metric.
	Timing(name string, value time.Duration, rate float64)

	// SetLogger sets the logger errors are reported to.
	SetLogger(logger logger.Logger)

	Open()
	Close() error
}

// NopStatsClient represents a client that doesn't do anything.
var NopStatsClient StatsClient = &nopStatsClient{}

type nopStatsClient struct{}

func (c *nopStatsClient) Tags() []string                                                            { return nil }
func (c *nopStatsClient) WithTags(tags ...string) StatsClient                                       { return c }
func (c *nopStatsClient) Count(name string, value int64, rate float64)                              {}
func (c *nopStatsClient) CountWithCustomTags(name string, value int64, rate float64, tags []string) {}
func (c *nopStatsClient) Gauge(name string, value float64, rate float64)                            {}
func (c *nopStatsClient) Histogram(name string, value float64, rate float64)                        {}
func (c *nopStatsClient) Set(name string, value string, rate float64)                               {}
func (c *nopStatsClient) Timing(name string, value time.Duration, rate float64)                     {}
func (c *nopStatsClient) SetLogger(logger logger.Logger)                                            {}
func (c *nopStatsClient) Open()                                                                     {}
func (c *nopStatsClient) Close() error                                                              { return nil }

// ExpvarStatsClient writes stats out to expvars.
type ExpvarStatsClient struct {
	mu   sync.Mutex
	m    *expvar.Map
	tags []string
}

// NewExpvarStatsClient returns a client writing under the root Expvar map.
func NewExpvarStatsClient() *ExpvarStatsClient {
	return &ExpvarStatsClient{m: Expvar}
}

// newExpvarStatsClient returns a client over m, for tests that must not
// share the process-wide map.
func newExpvarStatsClient(m *expvar.Map) *ExpvarStatsClient {
	return &ExpvarStatsClient{m: m}
}

func (c *ExpvarStatsClient) Tags() []string { return c.tags }

// WithTags returns a client writing into a child map named after the
// joined tags.
func (c *ExpvarStatsClient) WithTags(tags ...string) StatsClient {
	all := UnionStringSlice(c.tags, tags)
	key := ""
	for i, t := range all {
		if i > 0 {
			key += ","
		}
		key += t
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.m.Get(key).(*expvar.Map)
	if !ok {
		m = new(expvar.Map).Init()
		c.m.Set(key, m)
	}
	return &ExpvarStatsClient{m: m, tags: all}
}

func (c *ExpvarStatsClient) Count(name string, value int64, rate float64) {
	c.m.Add(name, value)
}

func (c *ExpvarStatsClient) CountWithCustomTags(name string, value int64, rate float64, tags []string) {
	c.m.Add(name, value)
}

func (c *ExpvarStatsClient) Gauge(name string, value float64, rate float64) {
	var f expvar.Float
	f.Set(value)
	c.m.Set(name, &f)
}

// Histogram works the same as Gauge for this client.
func (c *ExpvarStatsClient) Histogram(name string, value float64, rate float64) {
	c.Gauge(name, value, rate)
}

func (c *ExpvarStatsClient) Set(name string, value string, rate float64) {
	var s expvar.String
	s.Set(value)
	c.m.Set(name, &s)
}

// Timing accumulates the total time spent under name, in seconds.
func (c *ExpvarStatsClient) Timing(name string, value time.Duration, rate float64) {
	c.m.AddFloat(name, value.Seconds())
}

func (c *ExpvarStatsClient) SetLogger(logger logger.Logger) {}
func (c *ExpvarStatsClient) Open()                          {}
func (c *ExpvarStatsClient) Close() error                   { return nil }

// MultiStatsClient joins multiple stats clients together.
type MultiStatsClient []StatsClient

// Tags returns tags from the first client.
func (a MultiStatsClient) Tags() []string {
	if len(a) > 0 {
		return a[0].Tags()
	}
	return nil
}

func (a MultiStatsClient) WithTags(tags ...string) StatsClient {
	other := make(MultiStatsClient, len(a))
	for i := range a {
		other[i] = a[i].WithTags(tags...)
	}
	return other
}

func (a MultiStatsClient) Count(name string, value int64, rate float64) {
	for _, c := range a {
		c.Count(name, value, rate)
	}
}

func (a MultiStatsClient) CountWithCustomTags(name string, value int64, rate float64, tags []string) {
	for _, c := range a {
		c.CountWithCustomTags(name, value, rate, tags)
	}
}

func (a MultiStatsClient) Gauge(name string, value float64, rate float64) {
	for _, c := range a {
		c.Gauge(name, value, rate)
	}
}

func (a MultiStatsClient) Histogram(name string, value float64, rate float64) {
	for _, c := range a {
		c.Histogram(name, value, rate)
	}
}

func (a MultiStatsClient) Set(name string, value string, rate float64) {
	for _, c := range a {
		c.Set(name, value, rate)
	}
}

func (a MultiStatsClient) Timing(name string, value time.Duration, rate float64) {
	for _, c := range a {
		c.Timing(name, value, rate)
	}
}

func (a MultiStatsClient) SetLogger(logger logger.Logger) {
	for _, c := range a {
		c.SetLogger(logger)
	}
}

func (a MultiStatsClient) Open() {
	for _, c := range a {
		c.Open()
	}
}

// Close closes every client and returns the first error.
func (a MultiStatsClient) Close() error {
	var first error
	for _, c := range a {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// UnionStringSlice returns a sorted set of tags which combine a & b.
func UnionStringSlice(a, b []string) []string {
	a = append([]string(nil), a...)
	b = append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)

	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return nil
	}

	// Merge, dropping duplicates.
	other := make([]string, 0, n)
	for len(a) > 0 || len(b) > 0 {
		switch {
		case len(a) == 0:
			other, b = append(other, b[0]), b[1:]
		case len(b) == 0:
			other, a = append(other, a[0]), a[1:]
		case a[0] < b[0]:
			other, a = append(other, a[0]), a[1:]
		case b[0] < a[0]:
			other, b = append(other, b[0]), b[1:]
		default:
			other, a, b = append(other, a[0]), a[1:], b[1:]
		}
	}
	return other
}
