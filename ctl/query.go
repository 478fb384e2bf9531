// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"encoding/json"
	"io"
	"iter"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/errors"
)

// QueryCommand represents a command for looking up records by key in one
// index.
type QueryCommand struct {
	*indexedlist.CmdIO

	// Path of the record file.
	Path string

	// Index names the index to query.
	Index string
	// Key is looked up in the index.
	Key string

	// From and To select ordered positions of a sorted-value bucket when
	// From is not negative.
	From int
	To   int

	// Min and Max print the extremes of a sorted-value bucket.
	Min bool
	Max bool

	Config *indexedlist.Config
}

// NewQueryCommand returns a new instance of QueryCommand.
func NewQueryCommand(stdin io.Reader, stdout, stderr io.Writer) *QueryCommand {
	return &QueryCommand{
		CmdIO:  indexedlist.NewCmdIO(stdin, stdout, stderr),
		From:   -1,
		To:     -1,
		Config: DefaultConfig(),
	}
}

// Run prints every record the index holds under Key, one JSON object per
// line.
func (cmd *QueryCommand) Run(_ context.Context) error {
	m, cleanup, err := loadManager(cmd.CmdIO, cmd.Config, cmd.Path)
	if err != nil {
		return err
	}
	defer cleanup()

	idx := m.IndexByName(cmd.Index)
	if idx == nil {
		return errors.Newf(indexedlist.ErrIndexNotFound, "no index named %q", cmd.Index)
	}

	enc := json.NewEncoder(cmd.Stdout)
	write := func(records iter.Seq[Record]) error {
		for r := range records {
			if err := enc.Encode(r); err != nil {
				return errors.Wrap(err, "writing record")
			}
		}
		return nil
	}

	if cmd.Min || cmd.Max || cmd.From >= 0 {
		sv, err := indexedlist.AsSortedValues[string](idx)
		if err != nil {
			return err
		}
		bucket := sv.Sorted(cmd.Key)
		if bucket.Len() == 0 {
			return nil
		}
		if cmd.Min {
			if err := enc.Encode(bucket.Min); err != nil {
				return errors.Wrap(err, "writing record")
			}
		}
		if cmd.Max {
			if err := enc.Encode(bucket.Max); err != nil {
				return errors.Wrap(err, "writing record")
			}
		}
		if cmd.From >= 0 {
			to := cmd.To
			if to < 0 {
				to = bucket.Len() - 1
			}
			return write(bucket.Between(cmd.From, to))
		}
		return nil
	}

	if single, err := indexedlist.AsSingle[string](idx); err == nil {
		if v, ok := single.TryGetValue(cmd.Key); ok {
			return write(func(yield func(Record) bool) { yield(v) })
		}
		return nil
	}
	e, err := indexedlist.AsEnumerable[string](idx)
	if err != nil {
		return err
	}
	return write(e.Get(cmd.Key))
}
