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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var getDatabaseCmd = &cobra.Command{
	Use:     "database [name]",
	Aliases: []string{"db"},
	Short:   "Get database prints the properties of the given database.",
	RunE:    runGetDatabaseCmd,
}

func init() {
	getCmd.AddCommand(getDatabaseCmd)
}

func runGetDatabaseCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a database name")
	}
	name := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	resMgr, err := newResourceManager(ctx)
	if err != nil {
		return err
	}

	props, err := resMgr.DatabaseProperties(ctx, name)
	if err != nil {
		return err
	}
	if props == nil {
		return fmt.Errorf("database '%s' not found", name)
	}

	var rows [][]string
	for _, key := range props.Keys() {
		v, _ := props.Get(key)
		rows = append(rows, []string{key, formatValue(v)})
	}

	printTable(rootCmd.OutOrStdout(), []string{"property", "value"}, rows)
	return nil
}

// formatValue prints scalars as is and nested values as JSON.
func formatValue(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
