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
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var execDatabaseCmd = &cobra.Command{
	Use:     "database [name]",
	Aliases: []string{"db"},
	Short:   "Exec database runs an operation on the given database.",
	Example: `  # Remove all the documents from a database
  mldeploy exec database app-content --operation clear-database

  # Reindex a database
  mldeploy exec database app-content --operation reindex-database
`,
	RunE: runExecDatabaseCmd,
}

type execDatabaseFlags struct {
	operation string
}

var execDatabaseArgs execDatabaseFlags

func init() {
	execDatabaseCmd.Flags().StringVar(&execDatabaseArgs.operation, "operation", "",
		"The database operation e.g. 'clear-database', 'merge-database', 'reindex-database'.")

	execCmd.AddCommand(execDatabaseCmd)
}

func runExecDatabaseCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a database name")
	}
	if execDatabaseArgs.operation == "" {
		return fmt.Errorf("you must specify an operation")
	}
	name := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, err := newResourceManager(ctx)
	if err != nil {
		return err
	}

	if err := resMgr.DatabaseOperation(ctx, name, execDatabaseArgs.operation); err != nil {
		return err
	}

	logger.Println(fmt.Sprintf("databases/%s %s done", name, execDatabaseArgs.operation))
	return nil
}
