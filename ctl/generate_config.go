// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"io"

	"github.com/featurebasedb/indexedlist"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// GenerateConfigCommand represents a command for printing a default config.
type GenerateConfigCommand struct {
	*indexedlist.CmdIO
}

// NewGenerateConfigCommand returns a new instance of GenerateConfigCommand.
func NewGenerateConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *GenerateConfigCommand {
	return &GenerateConfigCommand{
		CmdIO: indexedlist.NewCmdIO(stdin, stdout, stderr),
	}
}

// DefaultConfig returns the default config with a unique primary index
// on the "id" field of each record.
func DefaultConfig() *indexedlist.Config {
	conf := indexedlist.NewConfig()
	conf.Indexes = []indexedlist.IndexConfig{
		{Name: "id", Kind: indexedlist.KindUnique, Key: "$.id"},
	}
	return conf
}

// Run prints out the default config.
func (cmd *GenerateConfigCommand) Run(_ context.Context) error {
	ret, err := toml.Marshal(*DefaultConfig())
	if err != nil {
		return errors.Wrap(err, "marshalling default config")
	}
	fmt.Fprintf(cmd.Stdout, "%s\n", ret)
	return nil
}
