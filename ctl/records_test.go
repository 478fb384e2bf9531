// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl_test

import (
	"testing"

	"github.com/featurebasedb/indexedlist/ctl"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecords_NDJSON(t *testing.T) {
	records, err := ctl.LoadRecords(writeFile(t, "people.ndjson", peopleNDJSON))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "ada", records[0]["name"])
	assert.Equal(t, float64(41), records[2]["age"])
	assert.Equal(t, []interface{}{"go", "db"}, records[0]["tags"])
}

func TestLoadRecords_YAML(t *testing.T) {
	records, err := ctl.LoadRecords(writeFile(t, "people.yml", peopleYAML))
	require.NoError(t, err)
	want := []ctl.Record{
		{
			"id": 1, "name": "ada", "team": "core", "age": 36,
			"tags":    []interface{}{"go", "db"},
			"address": ctl.Record{"city": "Oslo"},
		},
		{
			"id": 2, "name": "bob", "team": "core", "age": 25,
			"tags": []interface{}{"go"},
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRecords_Errors(t *testing.T) {
	t.Run("Extension", func(t *testing.T) {
		_, err := ctl.LoadRecords(writeFile(t, "people.csv", "id\n1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported record file extension ".csv"`)
	})
	t.Run("BadLine", func(t *testing.T) {
		_, err := ctl.LoadRecords(writeFile(t, "bad.json", "{\"id\":1}\n{oops\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding line 2")
	})
	t.Run("Missing", func(t *testing.T) {
		_, err := ctl.LoadRecords("/nonexistent/people.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening records")
	})
}
