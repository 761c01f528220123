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
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// xmlField mirrors a <field> element, used both under <fields> and as a
// child reference under <message>/<group>/<component>.
type xmlField struct {
	XMLName  xml.Name   `xml:"field"`
	Number   int        `xml:"number,attr"`
	Name     string     `xml:"name,attr"`
	Type     string     `xml:"type,attr"`
	Required string     `xml:"required,attr"`
	Values   []xmlValue `xml:"value"`
}

type xmlValue struct {
	Enum        string `xml:"enum,attr"`
	Description string `xml:"description,attr"`
}

type xmlGroup struct {
	XMLName  xml.Name `xml:"group"`
	Name     string   `xml:"name,attr"`
	Required string   `xml:"required,attr"`
	Fields   []xmlField `xml:"field"`
	Groups   []xmlGroup `xml:"group"`
}

type xmlComponentRef struct {
	XMLName  xml.Name `xml:"component"`
	Name     string   `xml:"name,attr"`
	Required string   `xml:"required,attr"`
}

type xmlComponentDef struct {
	XMLName xml.Name   `xml:"component"`
	Name    string     `xml:"name,attr"`
	Fields  []xmlField `xml:"field"`
	Groups  []xmlGroup `xml:"group"`
}

// xmlMessageItem is populated manually via xml.Decoder token scanning
// rather than struct tags, because encoding/xml's ",any" cannot
// distinguish element kinds in document order for us; see decodeMessageItems.
type xmlMessageItem struct {
	Kind      string // "field", "group", or "component"
	Field     *xmlField
	Group     *xmlGroup
	Component *xmlComponentRef
}

type xmlRoot struct {
	XMLName    xml.Name `xml:"fix"`
	Fields     struct {
		Fields []xmlField `xml:"field"`
	} `xml:"fields"`
	Components struct {
		Components []xmlComponentDef `xml:"component"`
	} `xml:"components"`
	Messages struct {
		Messages []rawMessage `xml:"message"`
	} `xml:"messages"`
}

// rawMessage captures a <message> element's raw inner XML so we can replay
// it with a token-level decoder that preserves child ordering.
type rawMessage struct {
	Name    string `xml:"name,attr"`
	MsgType string `xml:"msgtype,attr"`
	Inner   []byte `xml:",innerxml"`
}

// LoadBase parses a QuickFIX-style dictionary document and returns a fresh
// Dictionary. Fields load first, then components, then messages - component
// references inside messages are expanded inline as they are encountered.
func LoadBase(r io.Reader) (*Dictionary, error) {
	var root xmlRoot
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("fixdict: parse dictionary xml: %w", err)
	}

	dict := NewDictionary()
	loadFields(dict, root.Fields.Fields)
	if err := loadComponents(dict, root.Components.Components); err != nil {
		return nil, err
	}
	if err := loadMessages(dict, root.Messages.Messages); err != nil {
		return nil, err
	}
	return dict, nil
}

// ApplyOverlay re-parses fields and messages from a second dictionary
// document and merges them into dict. Overlay writes replace any existing
// entry with the same tag or msg-type (P6: overlay is right-biased).
func (d *Dictionary) ApplyOverlay(r io.Reader) error {
	var root xmlRoot
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return fmt.Errorf("fixdict: parse overlay xml: %w", err)
	}
	loadFields(d, root.Fields.Fields)
	if err := loadMessages(d, root.Messages.Messages); err != nil {
		return err
	}
	return nil
}

func loadFields(dict *Dictionary, fields []xmlField) {
	for _, f := range fields {
		def := &FieldDef{
			Tag:  Tag(f.Number),
			Name: f.Name,
			Type: f.Type,
		}
		for _, v := range f.Values {
			def.Enums = append(def.Enums, Enum{Value: v.Enum, Description: v.Description})
		}
		dict.NameToTag[def.Name] = def.Tag
		dict.Fields[def.Tag] = def
	}
}

func loadComponents(dict *Dictionary, comps []xmlComponentDef) error {
	for _, c := range comps {
		def := &ComponentDef{
			Name:   c.Name,
			Groups: make(map[Tag]*GroupDef),
		}
		for _, f := range c.Fields {
			def.MemberTags = append(def.MemberTags, dict.resolveTag(f.Name))
		}
		for _, g := range c.Groups {
			gd, err := loadGroup(dict, g)
			if err != nil {
				return err
			}
			def.Groups[gd.CountTag] = gd
		}
		dict.components[def.Name] = def
	}
	return nil
}

// loadGroup recursively builds a GroupDef from a <group> element. The
// group's count tag is the dictionary tag for the group's own name; its
// first member tag is the positional delimiter for instance boundaries.
func loadGroup(dict *Dictionary, g xmlGroup) (*GroupDef, error) {
	if g.Name == "" {
		return nil, fmt.Errorf("fixdict: group element missing name attribute")
	}
	gd := &GroupDef{
		CountTag:  dict.resolveTag(g.Name),
		Subgroups: make(map[Tag]*GroupDef),
	}
	for _, f := range g.Fields {
		gd.MemberTags = append(gd.MemberTags, dict.resolveTag(f.Name))
	}
	for _, sub := range g.Groups {
		sgd, err := loadGroup(dict, sub)
		if err != nil {
			return nil, err
		}
		gd.Subgroups[sgd.CountTag] = sgd
	}
	return gd, nil
}

// resolveTag looks up a field name and records it as unresolved (mapping to
// tag 0, per the original implementation's observed behavior) when absent,
// rather than silently losing the fact that it happened.
func (d *Dictionary) resolveTag(name string) Tag {
	if tag, ok := d.NameToTag[name]; ok {
		return tag
	}
	d.unresolvedGroupMembers = append(d.unresolvedGroupMembers, name)
	return 0
}

func isRequired(attr string) bool {
	return attr == "Y"
}

// loadMessages parses each <message> element, walking its children in
// document order so that component expansion and direct field/group
// declarations interleave exactly as the source dictionary wrote them.
func loadMessages(dict *Dictionary, raws []rawMessage) error {
	for _, rm := range raws {
		m := &MessageDef{
			Name:    rm.Name,
			MsgType: rm.MsgType,
			Groups:  make(map[Tag]*GroupDef),
		}

		items, err := decodeMessageItems(rm.Inner)
		if err != nil {
			return fmt.Errorf("fixdict: message %q: %w", rm.Name, err)
		}

		for _, item := range items {
			switch item.Kind {
			case "field":
				tag := dict.resolveTag(item.Field.Name)
				if isRequired(item.Field.Required) {
					m.RequiredTags = append(m.RequiredTags, tag)
				} else {
					m.OptionalTags = append(m.OptionalTags, tag)
				}
			case "group":
				gd, err := loadGroup(dict, *item.Group)
				if err != nil {
					return err
				}
				m.Groups[gd.CountTag] = gd
			case "component":
				expandComponent(dict, m, *item.Component)
			}
		}

		dict.Messages[m.MsgType] = m
	}
	return nil
}

// expandComponent merges a referenced component's fields and groups into
// msg. The component reference's own required="Y|N" attribute governs
// whether every one of the component's fields is treated as required -
// this overrides whatever required-ness was recorded on the component's
// individual field declarations (see DESIGN.md open question).
func expandComponent(dict *Dictionary, msg *MessageDef, ref xmlComponentRef) {
	comp, ok := dict.components[ref.Name]
	if !ok {
		return
	}
	required := isRequired(ref.Required)
	for _, tag := range comp.MemberTags {
		if required {
			msg.RequiredTags = append(msg.RequiredTags, tag)
		} else {
			msg.OptionalTags = append(msg.OptionalTags, tag)
		}
	}
	for countTag, gd := range comp.Groups {
		msg.Groups[countTag] = gd
	}
}

// decodeMessageItems walks a <message>'s inner XML with a token decoder so
// that field/group/component children are recovered in document order -
// something struct-tag unmarshaling cannot express when the three kinds
// interleave.
func decodeMessageItems(inner []byte) ([]xmlMessageItem, error) {
	dec := xml.NewDecoder(bytes.NewReader(inner))
	var items []xmlMessageItem
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "field":
			var f xmlField
			if err := dec.DecodeElement(&f, &start); err != nil {
				return nil, err
			}
			items = append(items, xmlMessageItem{Kind: "field", Field: &f})
		case "group":
			var g xmlGroup
			if err := dec.DecodeElement(&g, &start); err != nil {
				return nil, err
			}
			items = append(items, xmlMessageItem{Kind: "group", Group: &g})
		case "component":
			var c xmlComponentRef
			if err := dec.DecodeElement(&c, &start); err != nil {
				return nil, err
			}
			items = append(items, xmlMessageItem{Kind: "component", Component: &c})
		}
	}
	return items, nil
}
