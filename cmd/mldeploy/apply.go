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
	"github.com/spf13/cobra"

	"github.com/stefanprodan/mldeploy/pkg/resmgr"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply creates or updates the resources defined in the settings directory.",
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func printChangeSet(changeSet *resmgr.ChangeSet) {
	if changeSet.IsEmpty() {
		logger.Println("nothing to do")
		return
	}
	for _, change := range changeSet.Entries {
		logger.Println(change.String())
	}
}
