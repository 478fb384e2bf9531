// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/ctl"
	"github.com/featurebasedb/indexedlist/errors"
	"github.com/featurebasedb/indexedlist/stats"
	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfigCommand_Run(t *testing.T) {
	buf := &bytes.Buffer{}
	cm := ctl.NewGenerateConfigCommand(nil, buf, buf)
	require.NoError(t, cm.Run(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `lock-timeout = "2s"`)
	assert.Contains(t, out, "[[index]]")

	conf := indexedlist.NewConfig()
	require.NoError(t, toml.Unmarshal(buf.Bytes(), conf))
	require.NoError(t, conf.Validate())
	assert.Equal(t, ctl.DefaultConfig(), conf)
}

func TestInspectCommand_Run(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cm := ctl.NewInspectCommand(nil, stdout, stderr)
	cm.Path = writeFile(t, "people.ndjson", peopleNDJSON)
	cm.Config = peopleConfig()
	require.NoError(t, cm.Run(context.Background()))

	out := stdout.String()
	for _, row := range []string{
		`\|\s*id\s*\|\s*unique\s*\|\s*4\s*\|\s*4\s*\|`,
		`\|\s*team\s*\|\s*hash\s*\|\s*2\s*\|\s*4\s*\|`,
		`\|\s*tags\s*\|\s*multi\s*\|\s*3\s*\|\s*3\s*\|`,
		`\|\s*adults\s*\|\s*filtered\s*\|\s*2\s*\|\s*2\s*\|`,
		`\|\s*Name\s*\|\s*Kind\s*\|`,
	} {
		assert.Regexp(t, regexp.MustCompile(row), out)
	}
	assert.Empty(t, stderr.String())
}

func TestInspectCommand_MissingFile(t *testing.T) {
	cm := ctl.NewInspectCommand(nil, &bytes.Buffer{}, &bytes.Buffer{})
	cm.Path = "/nonexistent/people.json"
	err := cm.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening records")
}

func queryNames(t *testing.T, configure func(*ctl.QueryCommand)) []string {
	t.Helper()
	stdout := &bytes.Buffer{}
	cm := ctl.NewQueryCommand(nil, stdout, &bytes.Buffer{})
	cm.Path = writeFile(t, "people.ndjson", peopleNDJSON)
	cm.Config = peopleConfig()
	configure(cm)
	require.NoError(t, cm.Run(context.Background()))

	var names []string
	scanner := bufio.NewScanner(strings.NewReader(stdout.String()))
	for scanner.Scan() {
		var r ctl.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		names = append(names, r["name"].(string))
	}
	return names
}

func TestQueryCommand_Run(t *testing.T) {
	t.Run("Unique", func(t *testing.T) {
		got := queryNames(t, func(cm *ctl.QueryCommand) { cm.Index, cm.Key = "id", "2" })
		assert.Equal(t, []string{"bob"}, got)
	})
	t.Run("UniqueMiss", func(t *testing.T) {
		got := queryNames(t, func(cm *ctl.QueryCommand) { cm.Index, cm.Key = "id", "99" })
		assert.Empty(t, got)
	})
	t.Run("Hash", func(t *testing.T) {
		got := queryNames(t, func(cm *ctl.QueryCommand) { cm.Index, cm.Key = "team", "core" })
		assert.Equal(t, []string{"ada", "bob", "di"}, got)
	})
	t.Run("SortedValueMinMax", func(t *testing.T) {
		got := queryNames(t, func(cm *ctl.QueryCommand) {
			cm.Index, cm.Key, cm.Min, cm.Max = "by-age", "core", true, true
		})
		assert.Equal(t, []string{"bob", "ada"}, got)
	})
	t.Run("SortedValueRange", func(t *testing.T) {
		got := queryNames(t, func(cm *ctl.QueryCommand) {
			cm.Index, cm.Key, cm.From = "by-age", "core", 1
		})
		assert.Equal(t, []string{"di", "ada"}, got)
	})
	t.Run("SortedValueEmpty", func(t *testing.T) {
		got := queryNames(t, func(cm *ctl.QueryCommand) {
			cm.Index, cm.Key, cm.Min = "by-age", "ops", true
		})
		assert.Empty(t, got)
	})
}

func TestQueryCommand_Errors(t *testing.T) {
	run := func(index string, configure func(*ctl.QueryCommand)) error {
		cm := ctl.NewQueryCommand(nil, &bytes.Buffer{}, &bytes.Buffer{})
		cm.Path = writeFile(t, "people.ndjson", peopleNDJSON)
		cm.Config = peopleConfig()
		cm.Index = index
		if configure != nil {
			configure(cm)
		}
		return cm.Run(context.Background())
	}

	err := run("nope", nil)
	assert.True(t, errors.Is(err, indexedlist.ErrIndexNotFound))

	err = run("team", func(cm *ctl.QueryCommand) { cm.Min = true })
	assert.True(t, errors.Is(err, indexedlist.ErrKeyTypeMismatch))
}

func TestNewStatsClient(t *testing.T) {
	conf := indexedlist.NewConfig()
	for _, service := range []string{indexedlist.MetricServiceNop, indexedlist.MetricServiceExpvar, indexedlist.MetricServicePrometheus} {
		conf.Metric.Service = service
		c, err := ctl.NewStatsClient(conf)
		require.NoError(t, err, service)
		require.NotNil(t, c, service)
	}

	conf.Metric.Service = indexedlist.MetricServiceStatsd
	conf.Metric.Host = "localhost:19444"
	c, err := ctl.NewStatsClient(conf)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	conf.Metric.Service = "carrier-pigeon"
	_, err = ctl.NewStatsClient(conf)
	assert.True(t, errors.Is(err, indexedlist.ErrInvalidConfig))

	t.Run("Several", func(t *testing.T) {
		conf := indexedlist.NewConfig()
		conf.Metric.Service = "expvar, prometheus"
		c, err := ctl.NewStatsClient(conf)
		require.NoError(t, err)
		multi, ok := c.(stats.MultiStatsClient)
		require.True(t, ok, "%T", c)
		assert.Len(t, multi, 2)
		require.NoError(t, c.Close())

		conf.Metric.Service = "expvar,carrier-pigeon"
		_, err = ctl.NewStatsClient(conf)
		assert.True(t, errors.Is(err, indexedlist.ErrInvalidConfig), err)
	})

	t.Run("Empty", func(t *testing.T) {
		conf := indexedlist.NewConfig()
		conf.Metric.Service = ""
		c, err := ctl.NewStatsClient(conf)
		require.NoError(t, err)
		assert.Equal(t, stats.NopStatsClient, c)
	})
}

func TestNewLogger(t *testing.T) {
	conf := indexedlist.NewConfig()
	conf.Verbose = true
	conf.LogPath = writeFile(t, "indexedlist.log", "")
	log, closer, err := ctl.NewLogger(conf, &bytes.Buffer{})
	require.NoError(t, err)
	log.Debugf("hello %d", 7)
	require.NoError(t, closer.Close())

	stderr := &bytes.Buffer{}
	log, closer, err = ctl.NewLogger(indexedlist.NewConfig(), stderr)
	require.NoError(t, err)
	log.Infof("visible")
	log.Debugf("hidden")
	require.NoError(t, closer.Close())
	assert.Contains(t, stderr.String(), "visible")
	assert.NotContains(t, stderr.String(), "hidden")
}

func TestNewLogger_Level(t *testing.T) {
	stderr := &bytes.Buffer{}
	conf := indexedlist.NewConfig()
	conf.LogLevel = "warn"
	log, closer, err := ctl.NewLogger(conf, stderr)
	require.NoError(t, err)
	log.Infof("quiet")
	log.Warnf("loud")
	require.NoError(t, closer.Close())
	assert.NotContains(t, stderr.String(), "quiet")
	assert.Contains(t, stderr.String(), "WARN:  loud")

	// Verbose wins over the level.
	stderr.Reset()
	conf.Verbose = true
	log, _, err = ctl.NewLogger(conf, stderr)
	require.NoError(t, err)
	log.Debugf("detail")
	assert.Contains(t, stderr.String(), "detail")

	conf = indexedlist.NewConfig()
	conf.LogLevel = "chatty"
	_, _, err = ctl.NewLogger(conf, stderr)
	assert.True(t, errors.Is(err, indexedlist.ErrInvalidConfig), err)
}
