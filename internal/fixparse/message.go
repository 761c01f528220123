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

// Package fixparse is the zero-copy tokenizer and dictionary-driven group
// parser for a single FIX wire message. Every value Tokenize produces is an
// offset/length view into the caller-owned line buffer; ParseGroups copies
// the values it reconstructs into strings.
package fixparse

import "github.com/cardinalhq/fixreader/internal/fixdict"

// The 19 hot tags, each promoted to a dedicated column for fast, columnar
// access. Order matches the fixed column schema (spec.md §6).
const (
	TagMsgType       fixdict.Tag = 35
	TagSenderCompID  fixdict.Tag = 49
	TagTargetCompID  fixdict.Tag = 56
	TagMsgSeqNum     fixdict.Tag = 34
	TagSendingTime   fixdict.Tag = 52
	TagClOrdID       fixdict.Tag = 11
	TagOrderID       fixdict.Tag = 37
	TagExecID        fixdict.Tag = 17
	TagSymbol        fixdict.Tag = 55
	TagSide          fixdict.Tag = 54
	TagExecType      fixdict.Tag = 150
	TagOrdStatus     fixdict.Tag = 39
	TagPrice         fixdict.Tag = 44
	TagOrderQty      fixdict.Tag = 38
	TagCumQty        fixdict.Tag = 14
	TagLeavesQty     fixdict.Tag = 151
	TagLastPx        fixdict.Tag = 31
	TagLastQty       fixdict.Tag = 32
	TagText          fixdict.Tag = 58
)

// hotTagOrder is the slot index (0-18) for each hot tag, matching the
// fixed column order in spec.md §6.
var hotTagOrder = map[fixdict.Tag]int{
	TagMsgType:      0,
	TagSenderCompID: 1,
	TagTargetCompID: 2,
	TagMsgSeqNum:    3,
	TagSendingTime:  4,
	TagClOrdID:      5,
	TagOrderID:      6,
	TagExecID:       7,
	TagSymbol:       8,
	TagSide:         9,
	TagExecType:     10,
	TagOrdStatus:    11,
	TagPrice:        12,
	TagOrderQty:     13,
	TagCumQty:       14,
	TagLeavesQty:    15,
	TagLastPx:       16,
	TagLastQty:      17,
	TagText:         18,
}

// NumHotTags is the number of promoted hot-tag columns.
const NumHotTags = 19

// IsHotTag reports whether tag is one of the 19 promoted tags, and if so
// its slot index.
func IsHotTag(tag fixdict.Tag) (int, bool) {
	idx, ok := hotTagOrder[tag]
	return idx, ok
}

// Slice is a borrowed view into a line buffer: it owns no bytes.
type Slice struct {
	Off, Len int32
}

// Bytes materializes the slice against its originating buffer.
func (s Slice) Bytes(buf []byte) []byte {
	if s.Len == 0 {
		return nil
	}
	return buf[s.Off : s.Off+s.Len]
}

// Empty reports whether the slice denotes a zero-length (or absent) value.
func (s Slice) Empty() bool {
	return s.Len == 0
}

// TagValue is one (tag, value) pair in the order it appeared on the wire.
type TagValue struct {
	Tag   fixdict.Tag
	Value Slice
}

// Message is a transient, per-line parse result. It borrows every byte
// span from the line buffer passed to Tokenize; callers must not retain a
// Message (or its slices) past that buffer's lifetime.
type Message struct {
	Raw []byte

	// Hot holds the 19 promoted hot-tag slots, indexed by hotTagOrder.
	Hot [NumHotTags]Slice

	// Overflow maps every non-hot tag to its value. Duplicate occurrences:
	// last write wins here, but both remain recoverable from Ordered.
	Overflow map[fixdict.Tag]Slice

	// Ordered holds every (tag, value) pair - hot and non-hot - in wire
	// order. Required for group reconstruction, which is purely
	// positional.
	Ordered []TagValue

	// ParseError is the tokenizer's structural diagnosis, or "" on success.
	ParseError string
}

// Reset clears msg for reuse against a new line, retaining backing arrays
// to avoid per-line allocation.
func (m *Message) Reset() {
	m.Raw = nil
	for i := range m.Hot {
		m.Hot[i] = Slice{}
	}
	if m.Overflow == nil {
		m.Overflow = make(map[fixdict.Tag]Slice)
	} else {
		clear(m.Overflow)
	}
	m.Ordered = m.Ordered[:0]
	m.ParseError = ""
}

// MsgType returns the raw MsgType bytes, or nil if absent.
func (m *Message) MsgType() []byte {
	return m.Hot[hotTagOrder[TagMsgType]].Bytes(m.Raw)
}
