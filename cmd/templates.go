/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/transhub/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Browse the message template library",
	Long: `Templates are ready-made community messages. Replace the [bracketed]
fields before translating or broadcasting them.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List template names",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range templates.Default().Names() {
			fmt.Println(name)
		}
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:     "show <name>",
	Short:   "Print a template",
	Example: `  transhub templates show "Meeting Announcement" > notice.txt`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := templates.Default().Get(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Print(body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
}
