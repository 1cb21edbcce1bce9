// Copyright 2026 The Stonecore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"routes"},
	Short:   "Print the demo route table",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildDemoRouter()
		if err != nil {
			return fmt.Errorf("build demo router: %w", err)
		}

		methodStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BFFF"))
		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
		pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))

		for _, rec := range r.DumpRoutes() {
			aliases := make([]string, len(rec.Route.Aliases))
			for i, a := range rec.Route.Aliases {
				aliases[i] = a.Alias
			}
			fmt.Printf("%-24s %-16s %s\n",
				nameStyle.Render(rec.Route.Name()),
				methodStyle.Render(rec.Method),
				pathStyle.Render(strings.Join(aliases, " | ")),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
