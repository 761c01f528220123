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

import "sort"

// FieldRow is one row of the field catalog: every field the dictionary
// defines, sorted by tag.
type FieldRow struct {
	Tag   Tag
	Name  string
	Type  string
	Enums []Enum
}

// FieldCatalog returns every field definition in the dictionary, sorted by
// tag ascending.
func (d *Dictionary) FieldCatalog() []FieldRow {
	rows := make([]FieldRow, 0, len(d.Fields))
	for tag, f := range d.Fields {
		rows = append(rows, FieldRow{Tag: tag, Name: f.Name, Type: f.Type, Enums: f.Enums})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Tag < rows[j].Tag })
	return rows
}

// MessageFieldRow is one row of the per-message field usage catalog.
type MessageFieldRow struct {
	MsgType   string
	MsgName   string
	Tag       Tag
	FieldName string
	Required  bool
	// GroupID is the enclosing group's count tag, or -1 if the field is
	// declared at the message's top level.
	GroupID int
}

// MessageFieldCatalog returns the field-usage rows for a single message
// type: every required/optional top-level field, plus every member field of
// every group (including nested subgroups) the message declares. Rows are
// sorted by tag.
func (d *Dictionary) MessageFieldCatalog(msgType string) []MessageFieldRow {
	msg, ok := d.Messages[msgType]
	if !ok {
		return nil
	}

	var rows []MessageFieldRow
	for _, tag := range msg.RequiredTags {
		rows = append(rows, d.messageFieldRow(msg, tag, true, -1))
	}
	for _, tag := range msg.OptionalTags {
		rows = append(rows, d.messageFieldRow(msg, tag, false, -1))
	}
	for _, gd := range msg.Groups {
		rows = append(rows, d.groupFieldRows(msg, gd)...)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Tag < rows[j].Tag })
	return rows
}

// groupFieldRows walks a group definition's member tags (and any nested
// subgroups) and produces a flat row per field, recording the group's own
// count tag as GroupID - group member fields are not required in the
// top-level sense, matching the original implementation's observed
// behavior (see DESIGN.md).
func (d *Dictionary) groupFieldRows(msg *MessageDef, gd *GroupDef) []MessageFieldRow {
	var rows []MessageFieldRow
	for _, tag := range gd.MemberTags {
		rows = append(rows, d.messageFieldRow(msg, tag, false, int(gd.CountTag)))
	}
	for _, sub := range gd.Subgroups {
		rows = append(rows, d.groupFieldRows(msg, sub)...)
	}
	return rows
}

func (d *Dictionary) messageFieldRow(msg *MessageDef, tag Tag, required bool, groupID int) MessageFieldRow {
	name := ""
	if f, ok := d.Fields[tag]; ok {
		name = f.Name
	}
	return MessageFieldRow{
		MsgType:   msg.MsgType,
		MsgName:   msg.Name,
		Tag:       tag,
		FieldName: name,
		Required:  required,
		GroupID:   groupID,
	}
}

// GroupRow is one row of the group catalog.
type GroupRow struct {
	CountTag     Tag
	DelimiterTag Tag
	MemberTags   []Tag
	MsgTypes     []string
}

// GroupCatalog returns every distinct repeating group declared anywhere in
// the dictionary (top-level or nested inside another group), with the set
// of message types that reference it. Rows are sorted by count tag;
// MsgTypes within each row are deduplicated and sorted.
func (d *Dictionary) GroupCatalog() []GroupRow {
	byTag := make(map[Tag]*GroupDef)
	msgTypesByTag := make(map[Tag]map[string]struct{})

	var walk func(msgType string, gd *GroupDef)
	walk = func(msgType string, gd *GroupDef) {
		byTag[gd.CountTag] = gd
		set, ok := msgTypesByTag[gd.CountTag]
		if !ok {
			set = make(map[string]struct{})
			msgTypesByTag[gd.CountTag] = set
		}
		set[msgType] = struct{}{}
		for _, sub := range gd.Subgroups {
			walk(msgType, sub)
		}
	}

	for msgType, msg := range d.Messages {
		for _, gd := range msg.Groups {
			walk(msgType, gd)
		}
	}

	rows := make([]GroupRow, 0, len(byTag))
	for tag, gd := range byTag {
		msgTypes := make([]string, 0, len(msgTypesByTag[tag]))
		for mt := range msgTypesByTag[tag] {
			msgTypes = append(msgTypes, mt)
		}
		sort.Strings(msgTypes)
		rows = append(rows, GroupRow{
			CountTag:     tag,
			DelimiterTag: gd.DelimiterTag(),
			MemberTags:   gd.MemberTags,
			MsgTypes:     msgTypes,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CountTag < rows[j].CountTag })
	return rows
}
