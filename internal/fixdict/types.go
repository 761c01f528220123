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

// Package fixdict is a typed, in-memory representation of a FIX dialect:
// fields, enums, components, messages, and repeating groups, built once per
// query from QuickFIX-style XML.
package fixdict

// Tag identifies a single FIX field on the wire.
type Tag int

// Enum is one named value of a field's value list.
type Enum struct {
	Value       string
	Description string
}

// FieldDef is the dictionary entry for a single tag.
type FieldDef struct {
	Tag   Tag
	Name  string
	Type  string
	Enums []Enum
}

// GroupDef describes a repeating group: the field whose value announces the
// instance count, the ordered member tags (member_tags[0] is the delimiter
// tag that marks the start of each new instance), and any nested groups
// declared inside this one.
type GroupDef struct {
	CountTag   Tag
	MemberTags []Tag
	Subgroups  map[Tag]*GroupDef
}

// DelimiterTag returns the tag that marks the boundary between group
// instances, or 0 if the group has no members.
func (g *GroupDef) DelimiterTag() Tag {
	if len(g.MemberTags) == 0 {
		return 0
	}
	return g.MemberTags[0]
}

// ComponentDef is a pre-expansion construct: a named bundle of fields and
// groups that messages reference and that the loader inlines. Components do
// not appear in a Dictionary once loading completes.
type ComponentDef struct {
	Name       string
	MemberTags []Tag
	Groups     map[Tag]*GroupDef
}

// MessageDef is one FIX message type: its required/optional top-level
// fields (components already expanded into these lists) and the repeating
// groups it declares, keyed by count tag.
type MessageDef struct {
	Name         string
	MsgType      string
	RequiredTags []Tag
	OptionalTags []Tag
	Groups       map[Tag]*GroupDef
}

// Dictionary is the catalog of fields, messages, and the name->tag reverse
// index used to resolve user-facing field names against the wire. It is
// built once per query and shared read-only across all scan workers.
type Dictionary struct {
	Fields     map[Tag]*FieldDef
	Messages   map[string]*MessageDef
	NameToTag  map[string]Tag

	// components is loader-internal: after load, every component has been
	// expanded into the messages that reference it and this map is no
	// longer consulted by the parse path.
	components map[string]*ComponentDef

	// unresolvedGroupMembers records field names referenced by a message,
	// group, or component that the loader could not resolve against
	// NameToTag. Per spec §9, these would
	// otherwise silently map to tag 0; callers can inspect this list
	// instead of discovering the problem downstream.
	unresolvedGroupMembers []string
}

// NewDictionary returns an empty Dictionary ready for loading.
func NewDictionary() *Dictionary {
	return &Dictionary{
		Fields:     make(map[Tag]*FieldDef),
		Messages:   make(map[string]*MessageDef),
		NameToTag:  make(map[string]Tag),
		components: make(map[string]*ComponentDef),
	}
}

// UnresolvedGroupMembers returns the field names referenced by a message,
// group, or component definition that did not resolve to a known tag at
// load time.
func (d *Dictionary) UnresolvedGroupMembers() []string {
	return d.unresolvedGroupMembers
}

// FieldByName resolves a field definition by its dictionary name.
func (d *Dictionary) FieldByName(name string) (*FieldDef, bool) {
	tag, ok := d.NameToTag[name]
	if !ok {
		return nil, false
	}
	f, ok := d.Fields[tag]
	return f, ok
}
