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

// Tokenize splits line on delim into tag=value pairs and fills msg. msg.Raw
// is set to line itself; every Slice written into msg is an offset/length
// pair against that same buffer, so callers must not mutate line until they
// are done reading msg. Tokenize always calls msg.Reset() first.
//
// On structural failure msg.ParseError is set to one of the fixed
// diagnostic strings below and Tokenize returns false. The message is
// otherwise left as fully populated as parsing got before the failure.
func Tokenize(line []byte, delim byte, msg *Message) bool {
	msg.Reset()
	msg.Raw = line

	if len(line) == 0 {
		msg.ParseError = "Empty message"
		return false
	}

	pos := 0
	tagCount := 0

	for pos < len(line) {
		start := pos
		end := start
		for end < len(line) && line[end] != delim {
			end++
		}
		pairLen := end - start

		if pairLen > 0 {
			eqPos := 0
			for eqPos < pairLen && line[start+eqPos] != '=' {
				eqPos++
			}
			if eqPos >= pairLen {
				msg.ParseError = "Invalid tag format (missing '=')"
				return false
			}

			tagOff := start
			tagLen := eqPos
			valOff := start + eqPos + 1
			valLen := pairLen - eqPos - 1

			tag, ok := extractTagNumber(line[tagOff : tagOff+tagLen])
			if !ok {
				msg.ParseError = "Failed to parse tag"
				return false
			}

			val := Slice{Off: int32(valOff), Len: int32(valLen)}
			storeTag(msg, tag, val)
			tagCount++
		}

		pos = end + 1
	}

	if tagCount == 0 {
		msg.ParseError = "No valid tags found"
		return false
	}

	if msg.Hot[hotTagOrder[TagMsgType]].Empty() {
		msg.ParseError = "Missing required tag 35 (MsgType)"
		return false
	}

	return true
}

func isNumeric(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func extractTagNumber(b []byte) (fixdict.Tag, bool) {
	if !isNumeric(b) {
		return 0, false
	}
	var tag int
	for _, c := range b {
		tag = tag*10 + int(c-'0')
	}
	return fixdict.Tag(tag), true
}

// storeTag records tag/value in msg.Ordered and either the hot-tag slot or
// the overflow map, matching the wire position so group reconstruction can
// later walk Ordered positionally.
func storeTag(msg *Message, tag fixdict.Tag, val Slice) {
	msg.Ordered = append(msg.Ordered, TagValue{Tag: tag, Value: val})

	if idx, ok := hotTagOrder[tag]; ok {
		msg.Hot[idx] = val
		return
	}
	msg.Overflow[tag] = val
}
