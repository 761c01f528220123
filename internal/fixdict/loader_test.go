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

package fixdict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDict = `<fix major="4" minor="4">
  <fields>
    <field number="35" name="MsgType" type="STRING"/>
    <field number="55" name="Symbol" type="STRING"/>
    <field number="448" name="PartyID" type="STRING"/>
    <field number="447" name="PartyIDSource" type="CHAR"/>
    <field number="452" name="PartyRole" type="INT"/>
    <field number="453" name="NoPartyIDs" type="NUMINGROUP"/>
  </fields>
  <components>
    <component name="Parties">
      <group name="NoPartyIDs">
        <field name="PartyID" required="N"/>
        <field name="PartyIDSource" required="N"/>
        <field name="PartyRole" required="N"/>
      </group>
    </component>
  </components>
  <messages>
    <message name="ExecutionReport" msgtype="8">
      <field name="Symbol" required="Y"/>
      <component name="Parties" required="N"/>
    </message>
  </messages>
</fix>`

func TestLoadBase_FieldsAndEnums(t *testing.T) {
	dict, err := LoadBase(strings.NewReader(testDict))
	require.NoError(t, err)

	f, ok := dict.Fields[35]
	require.True(t, ok)
	assert.Equal(t, "MsgType", f.Name)
	assert.Equal(t, Tag(35), dict.NameToTag["MsgType"])
}

func TestLoadBase_ComponentExpansion(t *testing.T) {
	dict, err := LoadBase(strings.NewReader(testDict))
	require.NoError(t, err)

	msg, ok := dict.Messages["8"]
	require.True(t, ok)
	assert.Contains(t, msg.RequiredTags, Tag(55))

	gd, ok := msg.Groups[453]
	require.True(t, ok, "component's group should be merged into the message")
	assert.Equal(t, []Tag{448, 447, 452}, gd.MemberTags)
	assert.Equal(t, Tag(448), gd.DelimiterTag())
}

func TestApplyOverlay_RightBiased(t *testing.T) {
	dict, err := LoadBase(strings.NewReader(testDict))
	require.NoError(t, err)

	overlay := `<fix>
  <fields>
    <field number="35" name="MsgType" type="CUSTOMTYPE"/>
  </fields>
  <messages>
    <message name="ExecutionReport" msgtype="8">
      <field name="Symbol" required="N"/>
    </message>
  </messages>
</fix>`
	require.NoError(t, dict.ApplyOverlay(strings.NewReader(overlay)))

	assert.Equal(t, "CUSTOMTYPE", dict.Fields[35].Type)
	msg := dict.Messages["8"]
	assert.Empty(t, msg.RequiredTags, "overlay message definition replaces the base one entirely")
	assert.Contains(t, msg.OptionalTags, Tag(55))
}

func TestLoadBase_ReloadIsIdempotent(t *testing.T) {
	d1, err := LoadBase(strings.NewReader(testDict))
	require.NoError(t, err)
	d2, err := LoadBase(strings.NewReader(testDict))
	require.NoError(t, err)
	require.NoError(t, d2.ApplyOverlay(strings.NewReader(`<fix></fix>`)))

	assert.Equal(t, len(d1.Fields), len(d2.Fields))
	assert.Equal(t, len(d1.Messages), len(d2.Messages))
	assert.Equal(t, d1.NameToTag, d2.NameToTag)
}

func TestLoadBase_MissingGroupNameFails(t *testing.T) {
	bad := `<fix>
  <fields><field number="1" name="A" type="STRING"/></fields>
  <messages>
    <message name="M" msgtype="X">
      <group><field name="A" required="N"/></group>
    </message>
  </messages>
</fix>`
	_, err := LoadBase(strings.NewReader(bad))
	require.Error(t, err)
}

func TestLoadBase_UnresolvedGroupMember(t *testing.T) {
	withUnknown := `<fix>
  <fields>
    <field number="453" name="NoPartyIDs" type="NUMINGROUP"/>
  </fields>
  <messages>
    <message name="M" msgtype="X">
      <group name="NoPartyIDs">
        <field name="NotInDictionary" required="N"/>
      </group>
    </message>
  </messages>
</fix>`
	dict, err := LoadBase(strings.NewReader(withUnknown))
	require.NoError(t, err)
	assert.Contains(t, dict.UnresolvedGroupMembers(), "NotInDictionary")
	assert.Equal(t, Tag(0), dict.Messages["X"].Groups[453].MemberTags[0])
}

func TestLoadDefault(t *testing.T) {
	dict, err := LoadDefault()
	require.NoError(t, err)
	assert.NotEmpty(t, dict.Fields)
	_, ok := dict.Messages["D"]
	assert.True(t, ok, "embedded dictionary should define NewOrderSingle")
}
