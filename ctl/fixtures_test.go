// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/testhook"
	"github.com/stretchr/testify/require"
)

const peopleNDJSON = `{"id":1,"name":"ada","team":"core","age":36,"tags":["go","db"]}
{"id":2,"name":"bob","team":"core","age":25,"tags":["go"]}

{"id":3,"name":"cy","team":"web","age":41,"tags":["js"]}
{"id":4,"name":"di","team":"core","age":30,"tags":[]}
`

const peopleYAML = `- id: 1
  name: ada
  team: core
  age: 36
  tags: [go, db]
  address:
    city: Oslo
- id: 2
  name: bob
  team: core
  age: 25
  tags: [go]
`

// writeFile writes content to name inside a fresh temporary directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	dir, err := testhook.TempDir(t, "ctl")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// peopleConfig declares one index of most kinds over the people records.
func peopleConfig() *indexedlist.Config {
	conf := indexedlist.NewConfig()
	conf.Indexes = []indexedlist.IndexConfig{
		{Name: "id", Kind: indexedlist.KindUnique, Key: "$.id"},
		{Name: "team", Kind: indexedlist.KindHash, Key: "$.team"},
		{Name: "by-age", Kind: indexedlist.KindSortedValue, Key: "$.team", OrderBy: "$.age"},
		{Name: "tags", Kind: indexedlist.KindMulti, Key: "$.tags[*]"},
		{Name: "adults", Kind: indexedlist.KindFiltered, Key: "$.team", Filter: "age > 30"},
		{Name: "names", Kind: indexedlist.KindSortedUnique, Key: "$.name"},
		{Name: "ages", Kind: indexedlist.KindSorted, Key: "$.age"},
	}
	return conf
}
