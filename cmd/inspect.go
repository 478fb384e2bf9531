// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/ctl"
	"github.com/spf13/cobra"
)

func newInspectCommand(stdin io.Reader, stdout, stderr io.Writer, conf *indexedlist.Config) *cobra.Command {
	inspecter := ctl.NewInspectCommand(stdin, stdout, stderr)
	return &cobra.Command{
		Use:   "inspect <records>",
		Short: "Summarize the indexes built over a record file.",
		Long: `
Loads an NDJSON (.json, .ndjson) or YAML (.yaml, .yml) record file, builds
the configured indexes over it and prints their key and entry counts.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inspecter.Path = args[0]
			inspecter.Config = conf
			return inspecter.Run(context.Background())
		},
	}
}
