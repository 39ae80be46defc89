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

var applyRebalancerCmd = &cobra.Command{
	Use:   "rebalancer [type]",
	Short: "Apply rebalancer deploys the partitions, the rebalancer and the partition queries of the schema database associated with the given type.",
	RunE:  runApplyRebalancerCmd,
}

func init() {
	applyCmd.AddCommand(applyRebalancerCmd)
}

func runApplyRebalancerCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a database type")
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, err := newResourceManager(ctx)
	if err != nil {
		return err
	}

	changeSet, err := resMgr.InitializeRebalancer(ctx, args[0])
	if err != nil {
		return err
	}

	printChangeSet(changeSet)
	return nil
}
