/*
Copyright 2021 Stefan Prodan

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
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanprodan/mldeploy/pkg/config"
)

var VERSION = "0.1.0-dev.0"

const PROJECT = "mldeploy"

var rootCmd = &cobra.Command{
	Use:           PROJECT,
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "A command line utility to provision databases, triggers, CPF pipelines and alerts on a document database cluster.",
	Long: `mldeploy deploys declarative resource definitions onto a cluster through its management API.

Provision databases and their forests:

- mldeploy apply database <type> [--env <name>]
- mldeploy apply rebalancer <type>
- mldeploy delete database <type> --forest-delete configuration|data

Deploy event processing and alerting for a database:

- mldeploy apply triggers <database>
- mldeploy apply cpf <database>
- mldeploy apply alerts <database>

Inspect and operate the cluster:

- mldeploy get database <database>
- mldeploy get hosts
- mldeploy exec database <database> --operation clear-database
- mldeploy load documents <folder> --root <dir> --database <database>
`,
	PersistentPreRunE: loadConfig,
}

type rootFlags struct {
	timeout     time.Duration
	configPath  string
	host        string
	username    string
	password    string
	env         string
	settingsDir string
	verbose     bool
}

var (
	rootArgs = rootFlags{}
	logger   = stderrLogger{stderr: os.Stderr}
	cfg      = config.NewConfig()
)

func init() {
	rootCmd.PersistentFlags().DurationVar(&rootArgs.timeout, "timeout", 5*time.Minute,
		"The length of time to wait before giving up on the current operation.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.configPath, "config", "",
		"Path to the config file, defaults to '$HOME/.mldeploy/config'.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.host, "host", "",
		"The cluster host, overrides the config connection host.")
	rootCmd.PersistentFlags().StringVarP(&rootArgs.username, "username", "u", "",
		"The management API username.")
	rootCmd.PersistentFlags().StringVarP(&rootArgs.password, "password", "p", "",
		fmt.Sprintf("The management API password, can be set with the %s env var.", config.PasswordEnvVar))
	rootCmd.PersistentFlags().StringVarP(&rootArgs.env, "env", "e", "",
		"The environment overlay applied to the resource definitions.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.settingsDir, "settings-dir", "",
		"Path to the resource definitions directory.")
	rootCmd.PersistentFlags().BoolVar(&rootArgs.verbose, "verbose", false,
		"Print the management API requests.")

	rootCmd.DisableAutoGenTag = true
	rootCmd.SetOut(os.Stdout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Println(`✗`, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Read(rootArgs.configPath)
	if err != nil {
		return fmt.Errorf("loading the config failed, error: %w", err)
	}

	if rootArgs.host != "" {
		c.Connection.Host = rootArgs.host
	}
	if rootArgs.username != "" {
		c.Connection.Username = rootArgs.username
	}
	if rootArgs.password != "" {
		c.Connection.Password = rootArgs.password
	}
	if rootArgs.env != "" {
		c.Settings.Environment = rootArgs.env
	}
	if rootArgs.settingsDir != "" {
		c.Settings.Path = rootArgs.settingsDir
	}

	cfg = c
	return nil
}
