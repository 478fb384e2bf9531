// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/errors"
	"github.com/featurebasedb/indexedlist/logger"
	"github.com/featurebasedb/indexedlist/stats"
)

// RecordManager is a Manager over decoded records keyed by the string
// form of their primary key.
type RecordManager = indexedlist.Manager[string, Record]

// filterLanguage evaluates index filters. Record fields are plain
// variables ("age > 30") and JSONPath selects nested ones
// ("$.address.city == \"Oslo\"").
var filterLanguage = gval.Full(jsonpath.Language())

// BuildManager returns a Manager holding records with one index per
// definition in conf, in order.
func BuildManager(conf *indexedlist.Config, records []Record, log logger.Logger, client stats.StatsClient) (*RecordManager, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if len(conf.Indexes) == 0 {
		return nil, errors.New(indexedlist.ErrInvalidConfig, "no index definitions")
	}
	indexes := make([]indexedlist.Index[Record], 0, len(conf.Indexes))
	for _, ic := range conf.Indexes {
		idx, err := NewIndex(ic, conf.PruneEmpty)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexedlist.NewManager(
		indexedlist.OptManagerConfig[string, Record](conf),
		indexedlist.OptManagerLogger[string, Record](log),
		indexedlist.OptManagerStats[string, Record](client),
		indexedlist.OptManagerValues[string](records),
		indexedlist.OptManagerIndexes[string](indexes...),
	)
}

// NewIndex compiles one index definition.
func NewIndex(ic indexedlist.IndexConfig, pruneEmpty bool) (indexedlist.Index[Record], error) {
	if err := ic.Validate(); err != nil {
		return nil, err
	}
	path, err := jsonpath.New(ic.Key)
	if err != nil {
		return nil, errors.Wrapf(err, "index %q: compiling key", ic.Name)
	}
	var filter gval.Evaluable
	if ic.Filter != "" {
		if filter, err = filterLanguage.NewEvaluable(ic.Filter); err != nil {
			return nil, errors.Wrapf(err, "index %q: compiling filter", ic.Name)
		}
	}
	var opts []indexedlist.IndexOption
	if pruneEmpty {
		opts = append(opts, indexedlist.OptPruneEmpty())
	}

	key := func(r Record) string { return keyOf(path, r) }
	keys := func(r Record) []string { return keysOf(path, r) }
	matches := func(r Record) bool { return evalFilter(filter, r) }

	switch ic.Kind {
	case indexedlist.KindUnique:
		return indexedlist.NewUniqueIndex(ic.Name, key), nil
	case indexedlist.KindSortedUnique:
		return indexedlist.NewSortedUniqueIndex(ic.Name, key, CompareKeys), nil
	case indexedlist.KindHash:
		return indexedlist.NewHashIndex(ic.Name, key, opts...), nil
	case indexedlist.KindMulti:
		return indexedlist.NewMultiIndex(ic.Name, keys, opts...), nil
	case indexedlist.KindSorted:
		return indexedlist.NewSortedKeyIndex(ic.Name, key, CompareKeys, opts...), nil
	case indexedlist.KindSortedValue:
		orderBy, err := jsonpath.New(ic.OrderBy)
		if err != nil {
			return nil, errors.Wrapf(err, "index %q: compiling order-by", ic.Name)
		}
		compare := func(a, b Record) int {
			return CompareValues(valueOf(orderBy, a), valueOf(orderBy, b))
		}
		return indexedlist.NewSortedValueIndex(ic.Name, key, compare, opts...), nil
	case indexedlist.KindFiltered:
		return indexedlist.NewFilteredIndex(ic.Name, key, matches, opts...), nil
	case indexedlist.KindFilteredMulti:
		// The filter sees the record with the candidate key bound to "key".
		keyed := func(k string, r Record) bool {
			withKey := make(Record, len(r)+1)
			for f, v := range r {
				withKey[f] = v
			}
			withKey["key"] = k
			return evalFilter(filter, withKey)
		}
		return indexedlist.NewFilteredMultiIndex(ic.Name, keys, keyed, opts...), nil
	case indexedlist.KindPartial:
		return indexedlist.NewPartialIndex(ic.Name, keys, matches, opts...), nil
	}
	return nil, errors.Newf(indexedlist.ErrInvalidConfig, "index %q: unknown kind %q", ic.Name, ic.Kind)
}

// valueOf returns the value path selects in r, or nil when it selects
// nothing.
func valueOf(path gval.Evaluable, r Record) interface{} {
	v, err := path(context.Background(), r)
	if err != nil {
		return nil
	}
	return v
}

// keyOf renders the value path selects as a key. Records without the
// value share the empty key.
func keyOf(path gval.Evaluable, r Record) string {
	return formatKey(valueOf(path, r))
}

// keysOf renders every value path selects as a key.
func keysOf(path gval.Evaluable, r Record) []string {
	switch v := valueOf(path, r).(type) {
	case nil:
		return nil
	case []interface{}:
		keys := make([]string, 0, len(v))
		for _, e := range v {
			keys = append(keys, formatKey(e))
		}
		return keys
	default:
		return []string{formatKey(v)}
	}
}

func formatKey(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// evalFilter reports whether r satisfies filter. Evaluation errors count
// as a miss.
func evalFilter(filter gval.Evaluable, r Record) bool {
	if filter == nil {
		return true
	}
	ok, err := filter.EvalBool(context.Background(), r)
	return err == nil && ok
}

// CompareKeys orders keys numerically when both parse as numbers and
// lexically otherwise. Numbers sort before other strings.
func CompareKeys(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return compareFloats(fa, fb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// CompareValues orders decoded values. Numbers compare numerically,
// everything else by its key form. Missing values sort first.
func CompareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return compareFloats(fa, fb)
	}
	return CompareKeys(formatKey(a), formatKey(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
