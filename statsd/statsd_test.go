// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package statsd_test

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/featurebasedb/indexedlist/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsClient_WithTags(t *testing.T) {
	c, err := statsd.NewStatsClient("localhost:19444")
	require.NoError(t, err)
	defer c.Close()

	c1 := c.WithTags("foo", "bar")
	assert.Equal(t, []string{"bar", "foo"}, c1.Tags())

	c2 := c1.WithTags("bar", "baz")
	assert.Equal(t, []string{"bar", "baz", "foo"}, c2.Tags())
	assert.Equal(t, []string{"bar", "foo"}, c1.Tags())
}

func TestStatsClient_Methods(t *testing.T) {
	c, err := statsd.NewStatsClient("localhost:19444")
	require.NoError(t, err)
	defer c.Close()

	c.CountWithCustomTags("ct", 1, 1.0, []string{"foo:bar"})
	c.Count("cc", 1, 1.0)
	c.Gauge("gg", 10, 1.0)
	c.Histogram("hh", 1, 1.0)
	c.Timing("tt", 123*time.Microsecond, 1.0)
	c.Set("ss", "ss", 1.0)
}

func TestStatsClient_Wire(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	c, err := statsd.NewStatsClient(conn.LocalAddr().String())
	require.NoError(t, err)
	c.WithTags("index:people").Count("append", 3, 1.0)
	require.NoError(t, c.Close())

	var got strings.Builder
	buf := make([]byte, 4096)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for !strings.Contains(got.String(), "indexedlist.append") {
		n, _, err := conn.ReadFrom(buf)
		require.NoError(t, err)
		got.Write(buf[:n])
	}
	assert.Contains(t, got.String(), "indexedlist.append:3|c|#index:people")
}
