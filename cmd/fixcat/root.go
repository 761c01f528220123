// Copyright (C) 2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"github.com/spf13/cobra"

	"github.com/cardinalhq/fixreader/internal/fixconfig"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fixcat",
	Short: "Read and query table-valued FIX protocol logs",
	Long:  `fixcat tokenizes pipe- or SOH-delimited FIX log lines into rows and lets you cat, query, and inspect them without standing up a broker.`,
}

func init() {
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(queryCmd)
}

// Execute runs the root command with cfg and sessionID stored on its
// context, from which the cat and query subcommands read their default flag
// values and log correlation id.
func Execute(cfg *fixconfig.Config, sessionID string) error {
	rootCmd.SetContext(newCommandContext(cfg, sessionID))
	return rootCmd.Execute()
}
