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

var deleteDatabaseCmd = &cobra.Command{
	Use:     "database [type]",
	Aliases: []string{"db"},
	Short:   "Delete database removes the database defined for the given type.",
	Example: `  # Delete the database and keep its forests
  mldeploy delete database content

  # Delete the database together with its forests data
  mldeploy delete database content --forest-delete data
`,
	RunE: runDeleteDatabaseCmd,
}

type deleteDatabaseFlags struct {
	forestDelete string
}

var deleteDatabaseArgs deleteDatabaseFlags

func init() {
	deleteDatabaseCmd.Flags().StringVar(&deleteDatabaseArgs.forestDelete, "forest-delete", "",
		"Remove the database forests, accepted values are 'configuration' and 'data'.")

	deleteCmd.AddCommand(deleteDatabaseCmd)
}

func runDeleteDatabaseCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a database type")
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, err := newResourceManager(ctx)
	if err != nil {
		return err
	}

	change, err := resMgr.RemoveDatabase(ctx, args[0], deleteDatabaseArgs.forestDelete)
	if err != nil {
		return err
	}

	logger.Println(change.String())
	return nil
}
