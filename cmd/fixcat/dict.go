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
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/fixreader/internal/fixdict"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect a FIX dictionary",
}

var dictFieldsCmd = &cobra.Command{
	Use:   "fields <dictionary.xml>",
	Short: "Print the field catalog of a dictionary as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictFields,
}

var dictMessageCmd = &cobra.Command{
	Use:   "message <dictionary.xml> <msg-type>",
	Short: "Print a message's field-usage catalog as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runDictMessage,
}

var dictDiffCmd = &cobra.Command{
	Use:   "diff <base.xml> <overlay.xml>",
	Short: "Show which tags and messages an overlay would replace, without applying it",
	Args:  cobra.ExactArgs(2),
	RunE:  runDictDiff,
}

func init() {
	dictCmd.AddCommand(dictFieldsCmd)
	dictCmd.AddCommand(dictMessageCmd)
	dictCmd.AddCommand(dictDiffCmd)
}

func loadDictionaryFile(path string) (*fixdict.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return fixdict.LoadBase(f)
}

func runDictFields(cmd *cobra.Command, args []string) error {
	dict, err := loadDictionaryFile(args[0])
	if err != nil {
		return err
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(dict.FieldCatalog())
}

func runDictMessage(cmd *cobra.Command, args []string) error {
	dict, err := loadDictionaryFile(args[0])
	if err != nil {
		return err
	}
	rows := dict.MessageFieldCatalog(args[1])
	if rows == nil {
		return fmt.Errorf("fixcat: unknown message type %q", args[1])
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
}

// overlayDiff is one tag or message type whose definition would change (or
// be added) by applying an overlay.
type overlayDiff struct {
	Kind string `json:"kind"` // "field" or "message"
	Key  string `json:"key"`
	Verb string `json:"verb"` // "added" or "replaced"
}

func runDictDiff(cmd *cobra.Command, args []string) error {
	before, err := loadDictionaryFile(args[0])
	if err != nil {
		return err
	}
	after, err := loadDictionaryFile(args[0])
	if err != nil {
		return err
	}

	overlay, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[1], err)
	}
	defer overlay.Close()
	if err := after.ApplyOverlay(overlay); err != nil {
		return fmt.Errorf("fixcat: apply overlay %s: %w", args[1], err)
	}

	var diffs []overlayDiff
	for tag, f := range after.Fields {
		existing, existed := before.Fields[tag]
		switch {
		case !existed:
			diffs = append(diffs, overlayDiff{Kind: "field", Key: f.Name, Verb: "added"})
		case !reflect.DeepEqual(existing, f):
			diffs = append(diffs, overlayDiff{Kind: "field", Key: f.Name, Verb: "replaced"})
		}
	}
	for msgType, msg := range after.Messages {
		existing, existed := before.Messages[msgType]
		switch {
		case !existed:
			diffs = append(diffs, overlayDiff{Kind: "message", Key: msg.Name, Verb: "added"})
		case !reflect.DeepEqual(existing, msg):
			diffs = append(diffs, overlayDiff{Kind: "message", Key: msg.Name, Verb: "replaced"})
		}
	}
	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Kind != diffs[j].Kind {
			return diffs[i].Kind < diffs[j].Kind
		}
		return diffs[i].Key < diffs[j].Key
	})

	if unresolved := after.UnresolvedGroupMembers(); len(unresolved) > 0 {
		fmt.Fprintln(os.Stderr, "warning: unresolved group members after overlay:", unresolved)
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(diffs)
}
