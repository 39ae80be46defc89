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

	"github.com/spf13/cobra"

	"github.com/stefanprodan/mldeploy/pkg/settings"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [file]",
	Short: "Encrypt writes an age encrypted copy of the given definition file at '<file>.age'.",
	Example: `  # Encrypt a definition that contains credentials and remove the plain text file
  mldeploy encrypt settings/env/prod/databases/content.yaml -r age1... --rm
`,
	RunE: runEncryptCmd,
}

type encryptFlags struct {
	recipients []string
	remove     bool
}

var encryptArgs encryptFlags

func init() {
	encryptCmd.Flags().StringSliceVarP(&encryptArgs.recipients, "recipient", "r", nil,
		"The age public key of a recipient, can be specified multiple times.")
	encryptCmd.Flags().BoolVar(&encryptArgs.remove, "rm", false,
		"Remove the plain text file after encryption.")

	rootCmd.AddCommand(encryptCmd)
}

func runEncryptCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify a file")
	}
	if len(encryptArgs.recipients) == 0 {
		return fmt.Errorf("you must specify at least one recipient")
	}
	file := args[0]

	recipients, err := settings.ParseAgeRecipients(encryptArgs.recipients)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	// the definition must be valid before it's hidden
	if _, err := settings.Parse(data); err != nil {
		return fmt.Errorf("parsing %s failed, error: %w", file, err)
	}

	encrypted, err := settings.Encrypt(data, recipients)
	if err != nil {
		return fmt.Errorf("encrypting %s failed, error: %w", file, err)
	}

	if err := os.WriteFile(file+".age", encrypted, 0600); err != nil {
		return err
	}

	if encryptArgs.remove {
		if err := os.Remove(file); err != nil {
			return err
		}
	}

	logger.Println("encrypted", file+".age")
	return nil
}
