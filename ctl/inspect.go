// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"io"

	"github.com/featurebasedb/indexedlist"
	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
)

// InspectCommand represents a command for summarizing the indexes built
// over a record file.
type InspectCommand struct {
	*indexedlist.CmdIO

	// Path of the record file.
	Path string

	Config *indexedlist.Config
}

// NewInspectCommand returns a new instance of InspectCommand.
func NewInspectCommand(stdin io.Reader, stdout, stderr io.Writer) *InspectCommand {
	return &InspectCommand{
		CmdIO:  indexedlist.NewCmdIO(stdin, stdout, stderr),
		Config: DefaultConfig(),
	}
}

// Run loads the records and prints one row per index.
func (cmd *InspectCommand) Run(_ context.Context) error {
	m, cleanup, err := loadManager(cmd.CmdIO, cmd.Config, cmd.Path)
	if err != nil {
		return err
	}
	defer cleanup()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.Stdout)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Name", "Kind", "Keys", "Entries", "References"})
	for i, idx := range m.Indexes() {
		t.AppendRow(table.Row{
			idx.Name(),
			cmd.Config.Indexes[i].Kind,
			keyCount(idx),
			entryCount(idx),
			idx.ReferenceCount(),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Slots", m.Len()})
	t.Render()
	cmd.Logger().Debugf("inspected %d indexes over %d live records", len(m.Indexes()), m.Live())
	return nil
}

func keyCount(idx indexedlist.Index[Record]) int {
	if e, err := indexedlist.AsEnumerable[string](idx); err == nil {
		n := 0
		for range e.Counts() {
			n++
		}
		return n
	}
	if s, err := indexedlist.AsSingle[string](idx); err == nil {
		return len(s.Keys())
	}
	return 0
}

func entryCount(idx indexedlist.Index[Record]) int {
	n := 0
	for range idx.Values() {
		n++
	}
	return n
}
