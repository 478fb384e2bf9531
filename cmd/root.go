// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/ctl"
	"github.com/featurebasedb/indexedlist/errors"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix prefixes the environment variable of every flag.
const envPrefix = "INDEXEDLIST"

// indexesKey holds the index definitions of a config file. They have no
// flag form and are read straight from the file.
const indexesKey = "index"

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	conf := ctl.DefaultConfig()
	rc := &cobra.Command{
		Use:   "indexedlist",
		Short: "indexedlist builds in-memory indexes over record files.",
		Long: `indexedlist loads records from NDJSON or YAML files into a slot-backed
list, maintains the indexes declared in its configuration over them, and
reports on or queries those indexes. It never writes the records back.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := setAllConfig(v, cmd.Flags()); err != nil {
				return err
			}
			if path := v.GetString("config"); path != "" {
				if err := loadIndexes(path, conf); err != nil {
					return err
				}
			}

			// return "dry run" error if "dry-run" flag is set
			ret, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return fmt.Errorf("problem getting dry-run flag: %v", err)
			}
			if ret {
				if cmd.Parent() != nil {
					return fmt.Errorf("dry run")
				}
			}
			return nil
		},
	}
	rc.PersistentFlags().Bool("dry-run", false, "stop before executing")
	_ = rc.PersistentFlags().MarkHidden("dry-run")
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")
	configFlags(rc.PersistentFlags(), conf)

	rc.AddCommand(newGenerateConfigCommand(stdin, stdout, stderr))
	rc.AddCommand(newInspectCommand(stdin, stdout, stderr, conf))
	rc.AddCommand(newQueryCommand(stdin, stdout, stderr, conf))

	rc.SetOutput(stderr)
	return rc
}

// ErrorMessage renders err for the terminal, led by its error code when it
// carries one.
func ErrorMessage(err error) string {
	if code, ok := errors.CodeOf(err); ok {
		return fmt.Sprintf("%s: %v", code, err)
	}
	return err.Error()
}

// configFlags binds every scalar option of conf to a flag.
func configFlags(flags *pflag.FlagSet, conf *indexedlist.Config) {
	flags.DurationVar((*time.Duration)(&conf.LockTimeout), "lock-timeout", time.Duration(conf.LockTimeout), "Advisory lock wait budget.")
	flags.BoolVar(&conf.PruneEmpty, "prune-empty", conf.PruneEmpty, "Drop multi-value index buckets once they empty.")
	flags.BoolVarP(&conf.Verbose, "verbose", "v", conf.Verbose, "Enable verbose logging.")
	flags.StringVar(&conf.LogPath, "log-path", conf.LogPath, "Log path; stderr when empty.")
	flags.StringVar(&conf.LogLevel, "log-level", conf.LogLevel, "Most detailed level logged: panic, error, warn, info or debug.")
	flags.StringVar(&conf.Metric.Service, "metric.service", conf.Metric.Service, "Metrics services, comma separated: nop, expvar, statsd, prometheus.")
	flags.StringVar(&conf.Metric.Host, "metric.host", conf.Metric.Host, "Metrics host, for statsd.")
}

// loadIndexes replaces the index definitions of conf with those in the
// config file at path, if it declares any.
func loadIndexes(path string, conf *indexedlist.Config) error {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return fmt.Errorf("error reading configuration file '%s': %v", path, err)
	}
	var file struct {
		Indexes []indexedlist.IndexConfig `toml:"index"`
	}
	if err := tree.Unmarshal(&file); err != nil {
		return fmt.Errorf("error decoding index definitions in '%s': %v", path, err)
	}
	if len(file.Indexes) > 0 {
		conf.Indexes = file.Indexes
	}
	return nil
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults. It then reads from the command line, the
// environment, and a config file (if specified), and applies the configuration
// in that priority order. Since each flag in the set contains a pointer to
// where its value should be stored, setAllConfig can directly modify the value
// of each config variable.
//
// setAllConfig looks for environment variables which are capitalized versions
// of the flag names with dashes and dots replaced by underscores, and prefixed
// with envPrefix plus an underscore.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	// add cmd line flag def to viper
	err := v.BindPFlags(flags)
	if err != nil {
		return err
	}

	// add env to viper
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	c := v.GetString("config")
	var flagErr error
	validTags := map[string]bool{indexesKey: true}
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	// add config file to viper
	if c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}

		for _, key := range v.AllKeys() {
			if _, ok := validTags[key]; !ok {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	// set all values from viper
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil {
			return
		}
		if f.Changed {
			// The flag was given on the command line, which wins.
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}
