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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const dictTestBase = `<fix>
  <fields>
    <field number="35" name="MsgType" type="STRING"/>
    <field number="55" name="Symbol" type="STRING"/>
  </fields>
  <components></components>
  <messages>
    <message name="NewOrderSingle" msgtype="D">
      <field name="Symbol" required="Y"/>
    </message>
  </messages>
</fix>`

const dictTestOverlay = `<fix>
  <fields>
    <field number="55" name="Symbol" type="STRING"/>
    <field number="54" name="Side" type="CHAR"/>
  </fields>
  <components></components>
  <messages>
    <message name="NewOrderSingle" msgtype="D">
      <field name="Symbol" required="Y"/>
      <field name="Side" required="N"/>
    </message>
  </messages>
</fix>`

func writeTestFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func TestRunDictFields(t *testing.T) {
	base := writeTestFile(t, "base.xml", dictTestBase)
	cmd, out := newTestCommand(t)

	require.NoError(t, runDictFields(cmd, []string{base}))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
}

func TestRunDictDiff_ReportsAddedAndReplaced(t *testing.T) {
	base := writeTestFile(t, "base.xml", dictTestBase)
	overlay := writeTestFile(t, "overlay.xml", dictTestOverlay)
	cmd, out := newTestCommand(t)

	require.NoError(t, runDictDiff(cmd, []string{base, overlay}))

	var diffs []overlayDiff
	require.NoError(t, json.Unmarshal(out.Bytes(), &diffs))

	byKey := make(map[string]overlayDiff)
	for _, d := range diffs {
		byKey[d.Kind+":"+d.Key] = d
	}

	side, ok := byKey["field:Side"]
	require.True(t, ok, "new field Side should appear in the diff")
	require.Equal(t, "added", side.Verb)

	msg, ok := byKey["message:NewOrderSingle"]
	require.True(t, ok, "NewOrderSingle gained a field so it should be reported replaced")
	require.Equal(t, "replaced", msg.Verb)

	_, symbolChanged := byKey["field:Symbol"]
	require.False(t, symbolChanged, "Symbol is unchanged by the overlay and should not be reported")
}
