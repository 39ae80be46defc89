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

	"github.com/spf13/cobra"
)

var getHostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Get hosts prints the cluster hosts.",
	RunE:  runGetHostsCmd,
}

func init() {
	getCmd.AddCommand(getHostsCmd)
}

func runGetHostsCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, err := newResourceManager(ctx)
	if err != nil {
		return err
	}

	hosts, err := resMgr.Hosts(ctx)
	if err != nil {
		return err
	}

	version, err := resMgr.ServerVersion(ctx)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, host := range hosts {
		rows = append(rows, []string{host, version.String()})
	}

	printTable(rootCmd.OutOrStdout(), []string{"host", "version"}, rows)
	return nil
}
