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

func newQueryCommand(stdin io.Reader, stdout, stderr io.Writer, conf *indexedlist.Config) *cobra.Command {
	querier := ctl.NewQueryCommand(stdin, stdout, stderr)
	queryCmd := &cobra.Command{
		Use:   "query <records>",
		Short: "Print the records an index holds under a key.",
		Long: `
Loads a record file, builds the configured indexes over it and prints, one
JSON object per line, the records the named index holds under --key.

For sorted-value indexes --from and --to select ordered positions within the
key's bucket, and --min and --max print its extremes.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			querier.Path = args[0]
			querier.Config = conf
			return querier.Run(context.Background())
		},
	}
	flags := queryCmd.Flags()
	flags.StringVarP(&querier.Index, "index", "i", "", "Index to query.")
	flags.StringVarP(&querier.Key, "key", "k", "", "Key to look up.")
	flags.IntVar(&querier.From, "from", -1, "First ordered position of a sorted-value bucket.")
	flags.IntVar(&querier.To, "to", -1, "Last ordered position of a sorted-value bucket; the end when negative.")
	flags.BoolVar(&querier.Min, "min", false, "Print the smallest record of a sorted-value bucket.")
	flags.BoolVar(&querier.Max, "max", false, "Print the largest record of a sorted-value bucket.")
	_ = queryCmd.MarkFlagRequired("index")
	return queryCmd
}
