/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirpx.dev/formx"
	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/config"
	"dirpx.dev/formx/logger"
)

// defaultConfigFile is read when present and --config is not given.
const defaultConfigFile = "formx.yaml"

func newRootCmd(version string) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "formx",
		Short:        "Submit declarative forms against a SQLite database",
		Long:         `formx assigns parameters to a registered form class, validates the form tree and processes it inside one database transaction.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./"+defaultConfigFile+" when present)")
	flags.String("log-mode", "", "logger flavour: dev, prod or nop")
	flags.String("main-policy", "", "main model policy: explicit or implicit-single")
	flags.Bool("process-collections", false, "process collection entries with their parent")
	flags.Int("max-unwrap", 0, "pointer and container unwrap limit for reflective builds")

	// Bind flags to viper
	_ = viper.BindPFlag("log_mode", flags.Lookup("log-mode"))
	_ = viper.BindPFlag("main_policy", flags.Lookup("main-policy"))
	_ = viper.BindPFlag("process_collections", flags.Lookup("process-collections"))
	_ = viper.BindPFlag("max_unwrap", flags.Lookup("max-unwrap"))

	root.AddCommand(newSubmitCmd(), newClassesCmd())
	return root
}

// setup reads the config file, builds the configuration and publishes it
// together with a logger.
func setup(cfgFile string) error {
	if err := readConfigFile(cfgFile); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	formx.SetConfig(cfg)
	formx.SetLogger(log)
	log.Debug("configured",
		"main_policy", cfg.MainPolicy.String(),
		"process_collections", cfg.ProcessCollections,
		"max_unwrap", cfg.MaxUnwrap,
	)
	return nil
}

func readConfigFile(cfgFile string) error {
	if cfgFile == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return nil
		}
		cfgFile = defaultConfigFile
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", cfgFile, err)
	}
	return nil
}

// loadConfig starts from the FORMX_* environment and applies whatever
// the config file or the flags set on top of it.
func loadConfig() (apis.Config, error) {
	var opts []config.Option
	if viper.IsSet("main_policy") && viper.GetString("main_policy") != "" {
		p, err := config.ParseMainPolicy(viper.GetString("main_policy"))
		if err != nil {
			return apis.Config{}, err
		}
		opts = append(opts, config.WithMainPolicy(p))
	}
	if viper.IsSet("process_collections") {
		opts = append(opts, config.WithProcessCollections(viper.GetBool("process_collections")))
	}
	if viper.IsSet("max_unwrap") && viper.GetInt("max_unwrap") > 0 {
		opts = append(opts, config.WithMaxUnwrap(viper.GetInt("max_unwrap")))
	}
	if viper.IsSet("log_mode") && viper.GetString("log_mode") != "" {
		opts = append(opts, config.WithLogMode(viper.GetString("log_mode")))
	}
	return config.FromEnv(opts...)
}
