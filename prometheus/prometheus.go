// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package prometheus reports index manager metrics to a Prometheus
// registry.
package prometheus

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/featurebasedb/indexedlist/logger"
	"github.com/featurebasedb/indexedlist/stats"
	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric name.
const namespace = "indexedlist"

// Ensure client implements interface.
var _ stats.StatsClient = &statsClient{}

// collectors holds the vectors registered so far, shared by a client and
// every client derived from it with WithTags.
type collectors struct {
	mu         sync.Mutex
	registry   prometheus.Registerer
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

// statsClient represents a Prometheus implementation of stats.StatsClient.
// Tags of the form "key:value" become labels; a bare tag becomes a label
// with the value "true".
type statsClient struct {
	c      *collectors
	tags   []string
	logger logger.Logger
}

// NewStatsClient returns a client registering its metrics with registry.
// A nil registry means prometheus.DefaultRegisterer.
func NewStatsClient(registry prometheus.Registerer) *statsClient {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &statsClient{
		c: &collectors{
			registry:   registry,
			counters:   make(map[string]*prometheus.CounterVec),
			gauges:     make(map[string]*prometheus.GaugeVec),
			histograms: make(map[string]*prometheus.HistogramVec),
			labels:     make(map[string][]string),
		},
		logger: logger.NopLogger,
	}
}

func (c *statsClient) Open()        {}
func (c *statsClient) Close() error { return nil }

// Tags returns a sorted list of tags on the client.
func (c *statsClient) Tags() []string { return c.tags }

// WithTags returns a new client with additional tags appended.
func (c *statsClient) WithTags(tags ...string) stats.StatsClient {
	return &statsClient{
		c:      c.c,
		tags:   stats.UnionStringSlice(c.tags, tags),
		logger: c.logger,
	}
}

func (c *statsClient) SetLogger(logger logger.Logger) { c.logger = logger }

// labelsOf turns tags into a label set and its sorted names.
func labelsOf(tags []string) (prometheus.Labels, []string) {
	labels := make(prometheus.Labels, len(tags))
	for _, tag := range tags {
		k, v, ok := strings.Cut(tag, ":")
		if !ok {
			v = "true"
		}
		labels[sanitize(k)] = v
	}
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return labels, names
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}

// checkLabels records the label names of a metric on first use and
// reports whether later uses agree with them.
func (cs *collectors) checkLabels(name string, names []string) bool {
	prev, ok := cs.labels[name]
	if !ok {
		cs.labels[name] = names
		return true
	}
	if len(prev) != len(names) {
		return false
	}
	for i := range prev {
		if prev[i] != names[i] {
			return false
		}
	}
	return true
}

func (c *statsClient) counter(name string, tags []string) (prometheus.Counter, bool) {
	labels, names := labelsOf(tags)
	name = sanitize(name)
	c.c.mu.Lock()
	defer c.c.mu.Unlock()
	if !c.c.checkLabels(name, names) {
		c.logger.Errorf("prometheus: metric %s used with labels %v, registered with %v", name, names, c.c.labels[name])
		return nil, false
	}
	vec, ok := c.c.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name + "_total",
			Help:      "Number of " + name + " operations.",
		}, names)
		if err := c.c.registry.Register(vec); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				c.logger.Errorf("prometheus: registering %s: %s", name, err)
				return nil, false
			}
			if vec, ok = are.ExistingCollector.(*prometheus.CounterVec); !ok {
				c.logger.Errorf("prometheus: %s is registered as another type", name)
				return nil, false
			}
		}
		c.c.counters[name] = vec
	}
	return vec.With(labels), true
}

func (c *statsClient) gauge(name string) (prometheus.Gauge, bool) {
	labels, names := labelsOf(c.tags)
	name = sanitize(name)
	c.c.mu.Lock()
	defer c.c.mu.Unlock()
	if !c.c.checkLabels(name, names) {
		c.logger.Errorf("prometheus: metric %s used with labels %v, registered with %v", name, names, c.c.labels[name])
		return nil, false
	}
	vec, ok := c.c.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      "Current " + name + ".",
		}, names)
		if err := c.c.registry.Register(vec); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				c.logger.Errorf("prometheus: registering %s: %s", name, err)
				return nil, false
			}
			if vec, ok = are.ExistingCollector.(*prometheus.GaugeVec); !ok {
				c.logger.Errorf("prometheus: %s is registered as another type", name)
				return nil, false
			}
		}
		c.c.gauges[name] = vec
	}
	return vec.With(labels), true
}

func (c *statsClient) histogram(name string) (prometheus.Observer, bool) {
	labels, names := labelsOf(c.tags)
	name = sanitize(name)
	c.c.mu.Lock()
	defer c.c.mu.Unlock()
	if !c.c.checkLabels(name, names) {
		c.logger.Errorf("prometheus: metric %s used with labels %v, registered with %v", name, names, c.c.labels[name])
		return nil, false
	}
	vec, ok := c.c.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      "Distribution of " + name + ".",
			Buckets:   prometheus.DefBuckets,
		}, names)
		if err := c.c.registry.Register(vec); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				c.logger.Errorf("prometheus: registering %s: %s", name, err)
				return nil, false
			}
			if vec, ok = are.ExistingCollector.(*prometheus.HistogramVec); !ok {
				c.logger.Errorf("prometheus: %s is registered as another type", name)
				return nil, false
			}
		}
		c.c.histograms[name] = vec
	}
	return vec.With(labels), true
}

// Count tracks the number of times something occurs.
func (c *statsClient) Count(name string, value int64, rate float64) {
	if ctr, ok := c.counter(name, c.tags); ok {
		ctr.Add(float64(value))
	}
}

// CountWithCustomTags tracks the number of times something occurs with
// custom tags. The custom tags must name the same labels on every call.
func (c *statsClient) CountWithCustomTags(name string, value int64, rate float64, tags []string) {
	if ctr, ok := c.counter(name, stats.UnionStringSlice(c.tags, tags)); ok {
		ctr.Add(float64(value))
	}
}

// Gauge sets the value of a metric.
func (c *statsClient) Gauge(name string, value float64, rate float64) {
	if g, ok := c.gauge(name); ok {
		g.Set(value)
	}
}

// Histogram tracks statistical distribution of a metric.
func (c *statsClient) Histogram(name string, value float64, rate float64) {
	if h, ok := c.histogram(name); ok {
		h.Observe(value)
	}
}

// Set is not supported by Prometheus.
func (c *statsClient) Set(name string, value string, rate float64) {}

// Timing observes value, in seconds, in the histogram name.
func (c *statsClient) Timing(name string, value time.Duration, rate float64) {
	c.Histogram(name, value.Seconds(), rate)
}
