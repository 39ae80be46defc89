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

var applyDatabaseCmd = &cobra.Command{
	Use:     "database [type]",
	Aliases: []string{"db"},
	Short:   "Apply database creates or updates the database defined for the given type, including its forests.",
	Example: `  # Create or update the database defined in '<settings>/databases/content.yaml'
  mldeploy apply database content

  # Apply the staging overlay from '<settings>/env/staging/databases/content.yaml'
  mldeploy apply database content --env staging
`,
	RunE: runApplyDatabaseCmd,
}

func init() {
	applyCmd.AddCommand(applyDatabaseCmd)
}

func runApplyDatabaseCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a database type")
	}
	dbType := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, err := newResourceManager(ctx)
	if err != nil {
		return err
	}

	change, err := resMgr.InitializeDatabase(ctx, dbType)
	if err != nil {
		return err
	}

	logger.Println(change.String())
	return nil
}
