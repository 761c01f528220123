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

package fixparse

import "github.com/cardinalhq/fixreader/internal/fixdict"

// maxGroupCount is the sanity ceiling on a declared repeating-group count.
// Declared counts outside (0, maxGroupCount] cause the group to be skipped
// entirely rather than over-read the ordered tag sequence.
const maxGroupCount = 100

// GroupInstance is one repeating-group occurrence: member tag to its raw
// string value, reconstructed positionally from the ordered tag sequence.
type GroupInstance map[fixdict.Tag]string

// ParseGroups reconstructs every repeating group the message's type
// declares in dict, keyed by count tag. It returns nil immediately when
// materialize is false (column projection pushdown), or when the message
// has no ordered tags, no MsgType, or an unknown MsgType.
//
// Nested subgroups are not expanded inside instances in this revision: a
// subgroup's own member tags are treated as ordinary flat members of the
// enclosing instance if they happen to also be in MemberTags, and otherwise
// terminate the instance like any other non-member tag.
func ParseGroups(msg *Message, dict *fixdict.Dictionary, materialize bool) map[fixdict.Tag][]GroupInstance {
	if !materialize {
		return nil
	}
	if len(msg.Ordered) == 0 {
		return nil
	}
	msgType := msg.MsgType()
	if len(msgType) == 0 {
		return nil
	}

	msgDef, ok := dict.Messages[string(msgType)]
	if !ok {
		return nil
	}

	out := make(map[fixdict.Tag][]GroupInstance)
	for countTag, gd := range msgDef.Groups {
		count := groupCount(msg, countTag)
		if count == 0 {
			continue
		}
		if len(gd.MemberTags) == 0 {
			continue
		}

		startPos := findTagPosition(msg.Ordered, countTag)
		if startPos >= len(msg.Ordered) {
			continue
		}

		instances := parseGroupInstances(msg.Raw, msg.Ordered, startPos+1, count, gd.MemberTags)
		if len(instances) > 0 {
			out[countTag] = instances
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// groupCount reads tag k's value from the message's overflow map and
// validates it as a declared instance count: absent, unparseable, ≤0, or
// >maxGroupCount all report 0 (group absent).
func groupCount(msg *Message, k fixdict.Tag) int {
	slice, ok := msg.Overflow[k]
	if !ok {
		return 0
	}
	raw := slice.Bytes(msg.Raw)
	if len(raw) == 0 {
		return 0
	}

	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 || n > maxGroupCount {
		return 0
	}
	return n
}

func findTagPosition(ordered []TagValue, tag fixdict.Tag) int {
	for i, tv := range ordered {
		if tv.Tag == tag {
			return i
		}
	}
	return len(ordered)
}

func isMemberTag(tag fixdict.Tag, members []fixdict.Tag) bool {
	for _, m := range members {
		if tag == m {
			return true
		}
	}
	return false
}

// parseGroupInstances walks ordered starting at startPos, splitting runs of
// consecutive member tags into up to count instances. An instance ends
// either when a non-member tag is encountered or when the delimiter tag
// (members[0]) recurs.
func parseGroupInstances(buf []byte, ordered []TagValue, startPos, count int, members []fixdict.Tag) []GroupInstance {
	var result []GroupInstance
	pos := startPos

	for instance := 0; instance < count && pos < len(ordered); instance++ {
		current := GroupInstance{}

		for pos < len(ordered) {
			tag := ordered[pos].Tag
			if !isMemberTag(tag, members) {
				break
			}
			current[tag] = string(ordered[pos].Value.Bytes(buf))
			pos++

			if pos < len(ordered) && ordered[pos].Tag == members[0] {
				break
			}
		}

		if len(current) > 0 {
			result = append(result, current)
		}
	}

	return result
}
