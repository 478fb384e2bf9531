// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"strings"
	"time"

	"github.com/featurebasedb/indexedlist/errors"
	"github.com/featurebasedb/indexedlist/logger"
)

// Index kinds accepted in an index definition.
const (
	KindUnique        = "unique"
	KindSortedUnique  = "sorted-unique"
	KindHash          = "hash"
	KindMulti         = "multi"
	KindSorted        = "sorted"
	KindSortedValue   = "sorted-value"
	KindFiltered      = "filtered"
	KindFilteredMulti = "filtered-multi"
	KindPartial       = "partial"
)

// Metric services.
const (
	MetricServiceNop        = "nop"
	MetricServiceExpvar     = "expvar"
	MetricServiceStatsd     = "statsd"
	MetricServicePrometheus = "prometheus"
)

const (
	// DefaultLockTimeout is the advisory lock-wait budget.
	DefaultLockTimeout = 2 * time.Second

	// DefaultMetrics sets the internal metrics to no-op.
	DefaultMetrics = MetricServiceNop
)

// IndexKinds lists every valid index kind.
var IndexKinds = []string{
	KindUnique, KindSortedUnique, KindHash, KindMulti, KindSorted,
	KindSortedValue, KindFiltered, KindFilteredMulti, KindPartial,
}

// IndexConfig declares one index over records.
type IndexConfig struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	// Key is a JSONPath into the record. Multi-key kinds expect it to
	// select an array.
	Key string `toml:"key"`
	// OrderBy is a JSONPath ordering the buckets of a sorted-value index.
	OrderBy string `toml:"order-by"`
	// Filter is a boolean expression over the record.
	Filter string `toml:"filter"`
}

// Config represents the configuration of a Manager and the command.
type Config struct {
	// LockTimeout is exposed for callers that bound their own waits. The
	// Manager never enforces it.
	LockTimeout Duration `toml:"lock-timeout"`

	// PruneEmpty drops multi-value buckets once they empty.
	PruneEmpty bool `toml:"prune-empty"`

	Verbose bool   `toml:"verbose"`
	LogPath string `toml:"log-path"`
	// LogLevel names the most detailed level logged. Verbose forces debug.
	LogLevel string `toml:"log-level"`

	Metric struct {
		// Service is one metrics service, or several separated by commas.
		Service string `toml:"service"`
		Host    string `toml:"host"`
	} `toml:"metric"`

	Indexes []IndexConfig `toml:"index"`
}

// NewConfig returns an instance of Config with default options.
func NewConfig() *Config {
	c := &Config{
		LockTimeout: Duration(DefaultLockTimeout),
	}
	c.Metric.Service = DefaultMetrics
	return c
}

// Validate that all configuration permutations are compatible with each other.
func (c *Config) Validate() error {
	if c.LockTimeout < 0 {
		return errors.Newf(ErrInvalidConfig, "negative lock-timeout %s", c.LockTimeout)
	}
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return errors.Newf(ErrInvalidConfig, "log-level: %v", err)
		}
	}
	for _, service := range c.MetricServices() {
		switch service {
		case MetricServiceNop, MetricServiceExpvar, MetricServicePrometheus:
		case MetricServiceStatsd:
			if c.Metric.Host == "" {
				return errors.New(ErrInvalidConfig, "statsd metrics need metric.host")
			}
		default:
			return errors.Newf(ErrInvalidConfig, "unknown metric service %q", service)
		}
	}

	seen := make(map[string]struct{}, len(c.Indexes))
	for i, ic := range c.Indexes {
		if err := ic.Validate(); err != nil {
			return errors.Wrapf(err, "index %d", i)
		}
		if _, ok := seen[ic.Name]; ok {
			return errors.Newf(ErrInvalidConfig, "duplicate index name %q", ic.Name)
		}
		seen[ic.Name] = struct{}{}
		if i == 0 && !ic.IsUnique() {
			return errors.Newf(ErrInvalidConfig, "first index %q must be %s or %s, not %s", ic.Name, KindUnique, KindSortedUnique, ic.Kind)
		}
	}
	return nil
}

// MetricServices splits Metric.Service on commas. An empty service yields
// none.
func (c *Config) MetricServices() []string {
	var out []string
	for _, s := range strings.Split(c.Metric.Service, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsUnique reports whether the definition declares a unique index.
func (ic IndexConfig) IsUnique() bool {
	return ic.Kind == KindUnique || ic.Kind == KindSortedUnique
}

// Validate checks one index definition on its own.
func (ic IndexConfig) Validate() error {
	if ic.Name == "" {
		return errors.New(ErrInvalidConfig, "index without a name")
	}
	if !stringInSlice(ic.Kind, IndexKinds) {
		return errors.Newf(ErrInvalidConfig, "index %q: unknown kind %q", ic.Name, ic.Kind)
	}
	if ic.Key == "" {
		return errors.Newf(ErrInvalidConfig, "index %q: missing key", ic.Name)
	}
	switch ic.Kind {
	case KindSortedValue:
		if ic.OrderBy == "" {
			return errors.Newf(ErrInvalidConfig, "index %q: %s needs order-by", ic.Name, ic.Kind)
		}
	case KindFiltered, KindFilteredMulti, KindPartial:
		if ic.Filter == "" {
			return errors.Newf(ErrInvalidConfig, "index %q: %s needs a filter", ic.Name, ic.Kind)
		}
	}
	return nil
}

func stringInSlice(s string, list []string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Duration is a TOML wrapper type for time.Duration.
type Duration time.Duration

// String returns the string representation of the duration.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalText parses a TOML value into a duration value.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(v)
	return nil
}

// MarshalText writes duration value in text format.
func (d Duration) MarshalText() (text []byte, err error) {
	return []byte(d.String()), nil
}
