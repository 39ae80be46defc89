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

var applyAlertsCmd = &cobra.Command{
	Use:   "alerts [database]",
	Short: "Apply alerts deploys the alert configs, actions and rules of the given database.",
	RunE:  runApplyAlertsCmd,
}

func init() {
	applyCmd.AddCommand(applyAlertsCmd)
}

func runApplyAlertsCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a database name")
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, err := newResourceManager(ctx)
	if err != nil {
		return err
	}

	changeSet, err := resMgr.DeployAlerts(ctx, args[0])
	if err != nil {
		return err
	}

	printChangeSet(changeSet)
	return nil
}
