// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist_test

import (
	"iter"
	"testing"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/logger"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID   int
	Name string
	Team string
	Age  int
	Tags []string
}

func personID(p person) int        { return p.ID }
func personName(p person) string   { return p.Name }
func personTeam(p person) string   { return p.Team }
func personTags(p person) []string { return p.Tags }
func adult(p person) bool          { return p.Age >= 18 }

func byAge(a, b person) int { return indexedlist.Ordered[int]()(a.Age, b.Age) }

// testManager is a Manager over people with a primary on ID.
type testManager struct {
	*indexedlist.Manager[int, person]
	byID   *indexedlist.UniqueIndex[int, person]
	byTeam *indexedlist.HashIndex[string, person]
	logs   *logger.BufferLogger
}

func mustNewManager(tb testing.TB, people []person, extra ...indexedlist.Index[person]) *testManager {
	tb.Helper()
	tm := &testManager{
		byID:   indexedlist.NewUniqueIndex("id", personID),
		byTeam: indexedlist.NewHashIndex("team", personTeam),
		logs:   logger.NewBufferLogger(),
	}
	indexes := append([]indexedlist.Index[person]{tm.byID, tm.byTeam}, extra...)
	m, err := indexedlist.NewManager(
		indexedlist.OptManagerValues[int](people),
		indexedlist.OptManagerIndexes[int](indexes...),
		indexedlist.OptManagerLogger[int, person](tm.logs),
	)
	require.NoError(tb, err)
	tm.Manager = m
	return tm
}

func collect[V any](seq iter.Seq[V]) []V {
	var out []V
	for v := range seq {
		out = append(out, v)
	}
	return out
}

func names(people []person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func counts[K comparable](seq iter.Seq2[K, int]) map[K]int {
	out := make(map[K]int)
	for k, n := range seq {
		out[k] = n
	}
	return out
}
