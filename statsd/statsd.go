// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package statsd reports index manager metrics over the StatsD protocol,
// using the DataDog client which adds tags to the protocol.
package statsd

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/featurebasedb/indexedlist/logger"
	"github.com/featurebasedb/indexedlist/stats"
)

const (
	// prefix is prepended to each metric event name.
	prefix = "indexedlist."

	// flushInterval bounds how long an event waits in the client buffer.
	flushInterval = 100 * time.Millisecond
)

// Ensure client implements interface.
var _ stats.StatsClient = &statsClient{}

// statsClient represents a StatsD implementation of stats.StatsClient.
type statsClient struct {
	client *statsd.Client
	tags   []string
	logger logger.Logger
}

// NewStatsClient returns a new instance of StatsClient sending to host,
// given as "hostname:port".
func NewStatsClient(host string) (*statsClient, error) {
	c, err := statsd.New(host,
		statsd.WithNamespace(prefix),
		statsd.WithBufferFlushInterval(flushInterval),
		statsd.WithoutTelemetry(),
	)
	if err != nil {
		return nil, err
	}

	return &statsClient{
		client: c,
		logger: logger.NopLogger,
	}, nil
}

// Open no-op
func (c *statsClient) Open() {}

// Close flushes buffered events and closes the connection to the agent.
func (c *statsClient) Close() error {
	return c.client.Close()
}

// Tags returns a sorted list of tags on the client.
func (c *statsClient) Tags() []string {
	return c.tags
}

// WithTags returns a new client with additional tags appended.
func (c *statsClient) WithTags(tags ...string) stats.StatsClient {
	return &statsClient{
		client: c.client,
		tags:   stats.UnionStringSlice(c.tags, tags),
		logger: c.logger,
	}
}

// Count tracks the number of times something occurs per second.
func (c *statsClient) Count(name string, value int64, rate float64) {
	if err := c.client.Count(name, value, c.tags, rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Count error: %s", err)
	}
}

// CountWithCustomTags tracks the number of times something occurs per second with custom tags.
func (c *statsClient) CountWithCustomTags(name string, value int64, rate float64, t []string) {
	if err := c.client.Count(name, value, stats.UnionStringSlice(c.tags, t), rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Count error: %s", err)
	}
}

// Gauge sets the value of a metric.
func (c *statsClient) Gauge(name string, value float64, rate float64) {
	if err := c.client.Gauge(name, value, c.tags, rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Gauge error: %s", err)
	}
}

// Histogram tracks statistical distribution of a metric.
func (c *statsClient) Histogram(name string, value float64, rate float64) {
	if err := c.client.Histogram(name, value, c.tags, rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Histogram error: %s", err)
	}
}

// Set tracks number of unique elements.
func (c *statsClient) Set(name string, value string, rate float64) {
	if err := c.client.Set(name, value, c.tags, rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Set error: %s", err)
	}
}

// Timing tracks timing information for a metric.
func (c *statsClient) Timing(name string, value time.Duration, rate float64) {
	if err := c.client.Timing(name, value, c.tags, rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Timing error: %s", err)
	}
}

// SetLogger sets the logger for client.
func (c *statsClient) SetLogger(logger logger.Logger) {
	c.logger = logger
}
