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
	"path/filepath"

	"github.com/spf13/cobra"
)

var loadDocumentsCmd = &cobra.Command{
	Use:     "documents [folder]",
	Aliases: []string{"docs"},
	Short:   "Load documents writes every file found under the given folder into a database.",
	Example: `  # Write './content/docs/a.xml' under the URI '/docs/a.xml'
  mldeploy load documents ./content/docs --root ./content --database app-content
`,
	RunE: runLoadDocumentsCmd,
}

type loadDocumentsFlags struct {
	root     string
	database string
}

var loadDocumentsArgs loadDocumentsFlags

func init() {
	loadDocumentsCmd.Flags().StringVar(&loadDocumentsArgs.root, "root", "",
		"The path prefix stripped from the file paths to form the document URIs, defaults to the folder parent dir.")
	loadDocumentsCmd.Flags().StringVarP(&loadDocumentsArgs.database, "database", "d", "",
		"The target database.")

	loadCmd.AddCommand(loadDocumentsCmd)
}

func runLoadDocumentsCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a folder")
	}
	if loadDocumentsArgs.database == "" {
		return fmt.Errorf("you must specify a database")
	}

	folder, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	root := filepath.Dir(folder)
	if loadDocumentsArgs.root != "" {
		root, err = filepath.Abs(loadDocumentsArgs.root)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	count, err := newDocumentLoader().Load(ctx, root, folder, loadDocumentsArgs.database)
	if err != nil {
		return err
	}

	if count == 0 {
		logger.Println("nothing to do")
		return nil
	}
	logger.Println(fmt.Sprintf("%v document(s) written to %s", count, loadDocumentsArgs.database))
	return nil
}
