// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"io"
	"os"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/errors"
	"github.com/featurebasedb/indexedlist/logger"
	"github.com/featurebasedb/indexedlist/prometheus"
	"github.com/featurebasedb/indexedlist/stats"
	"github.com/featurebasedb/indexedlist/statsd"
)

// NewStatsClient returns the metrics client named by conf.Metric. Several
// services are fanned out to through a stats.MultiStatsClient.
func NewStatsClient(conf *indexedlist.Config) (stats.StatsClient, error) {
	services := conf.MetricServices()
	var clients stats.MultiStatsClient
	for _, service := range services {
		c, err := newStatsClient(service, conf.Metric.Host)
		if err != nil {
			for _, opened := range clients {
				opened.Close()
			}
			return nil, err
		}
		clients = append(clients, c)
	}
	switch len(clients) {
	case 0:
		return stats.NopStatsClient, nil
	case 1:
		return clients[0], nil
	}
	return clients, nil
}

func newStatsClient(service, host string) (stats.StatsClient, error) {
	switch service {
	case indexedlist.MetricServiceExpvar:
		return stats.NewExpvarStatsClient(), nil
	case indexedlist.MetricServiceStatsd:
		return statsd.NewStatsClient(host)
	case indexedlist.MetricServicePrometheus:
		return prometheus.NewStatsClient(nil), nil
	case indexedlist.MetricServiceNop:
		return stats.NopStatsClient, nil
	}
	return nil, errors.Newf(indexedlist.ErrInvalidConfig, "unknown metric service %q", service)
}

// NewLogger returns the logger described by conf, writing to conf.LogPath
// when set and to stderr otherwise. Verbose wins over LogLevel. The returned
// closer releases the log file.
func NewLogger(conf *indexedlist.Config, stderr io.Writer) (logger.Logger, io.Closer, error) {
	var w io.Writer = stderr
	var closer io.Closer = nopCloser{}
	if conf.LogPath != "" {
		f, err := os.OpenFile(conf.LogPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening log file")
		}
		w, closer = f, f
	}
	if conf.Verbose {
		return logger.NewVerboseLogger(w), closer, nil
	}
	if conf.LogLevel != "" {
		level, err := logger.ParseLevel(conf.LogLevel)
		if err != nil {
			closer.Close()
			return nil, nil, errors.Newf(indexedlist.ErrInvalidConfig, "log-level: %v", err)
		}
		return logger.NewLevelLogger(w, level), closer, nil
	}
	return logger.NewStandardLogger(w), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// loadManager loads the records in path and indexes them as conf says.
func loadManager(cmdio *indexedlist.CmdIO, conf *indexedlist.Config, path string) (*RecordManager, func(), error) {
	if conf == nil {
		conf = indexedlist.NewConfig()
	}
	log, logCloser, err := NewLogger(conf, cmdio.Stderr)
	if err != nil {
		return nil, nil, err
	}
	cmdio.SetLogger(log)
	client, err := NewStatsClient(conf)
	if err != nil {
		logCloser.Close()
		return nil, nil, err
	}
	client.SetLogger(log)
	client.Open()
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warnf("closing stats client: %s", err)
		}
		logCloser.Close()
	}

	records, err := LoadRecords(path)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Debugf("loaded %d records from %s", len(records), path)
	m, err := BuildManager(conf, records, log, client)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return m, cleanup, nil
}
