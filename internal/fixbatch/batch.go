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

package fixbatch

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/cardinalhq/fixreader/internal/fixdict"
	"github.com/cardinalhq/fixreader/internal/fixparse"
)

// Batch accumulates rows into Arrow column builders for one scan chunk.
// Rows are appended column-by-column by the scan driver; RecordBatch
// finalizes the current set of builders into an arrow.Record and resets
// them for the next chunk.
type Batch struct {
	schema    *arrow.Schema
	allocator memory.Allocator

	builders []array.Builder
	rows     int64
}

// NewBatch allocates a Batch for the fixed schema plus one string column per
// custom tag name, in declared order.
func NewBatch(customNames []string) *Batch {
	mem := memory.DefaultAllocator
	schema := BuildSchema(customNames)

	builders := make([]array.Builder, len(schema.Fields()))
	for i, f := range schema.Fields() {
		builders[i] = array.NewBuilder(mem, f.Type)
	}

	return &Batch{schema: schema, allocator: mem, builders: builders}
}

// Len reports the number of rows appended to the current (unflushed) batch.
func (b *Batch) Len() int64 {
	return b.rows
}

// Schema returns the batch's Arrow schema.
func (b *Batch) Schema() *arrow.Schema {
	return b.schema
}

// AppendString appends a Utf8 value, or a null if present is false, to the
// builder at col.
func (b *Batch) AppendString(col int, value string, present bool) {
	bld := b.builders[col].(*array.StringBuilder)
	if !present {
		bld.AppendNull()
		return
	}
	bld.Append(value)
}

// AppendInt64 appends an Int64 value, or a null if present is false.
func (b *Batch) AppendInt64(col int, value int64, present bool) {
	bld := b.builders[col].(*array.Int64Builder)
	if !present {
		bld.AppendNull()
		return
	}
	bld.Append(value)
}

// AppendFloat64 appends a Float64 value, or a null if present is false.
func (b *Batch) AppendFloat64(col int, value float64, present bool) {
	bld := b.builders[col].(*array.Float64Builder)
	if !present {
		bld.AppendNull()
		return
	}
	bld.Append(value)
}

// AppendTimestamp appends a microsecond-precision UTC timestamp, or a null
// if present is false.
func (b *Batch) AppendTimestamp(col int, value time.Time, present bool) {
	bld := b.builders[col].(*array.TimestampBuilder)
	if !present {
		bld.AppendNull()
		return
	}
	bld.Append(arrow.Timestamp(value.UnixMicro()))
}

// AppendTags writes the overflow tag map for one row, in ascending tag
// order for determinism, or a null map if the overflow set is empty.
func (b *Batch) AppendTags(col int, tags map[int32]string) {
	bld := b.builders[col].(*array.MapBuilder)
	if len(tags) == 0 {
		bld.AppendNull()
		return
	}

	keys := make([]int32, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sortInt32s(keys)

	bld.Append(true)
	keyBld := bld.KeyBuilder().(*array.Int32Builder)
	itemBld := bld.ItemBuilder().(*array.StringBuilder)
	for _, k := range keys {
		keyBld.Append(k)
		itemBld.Append(tags[k])
	}
}

// AppendGroups writes the reconstructed repeating-group structure for one
// row, or a null map if groups is nil or empty. Instance member keys are
// written in ascending tag order within each instance.
func (b *Batch) AppendGroups(col int, groups map[int32][]fixparse.GroupInstance) {
	bld := b.builders[col].(*array.MapBuilder)
	if len(groups) == 0 {
		bld.AppendNull()
		return
	}

	countTags := make([]int32, 0, len(groups))
	for k := range groups {
		countTags = append(countTags, k)
	}
	sortInt32s(countTags)

	bld.Append(true)
	keyBld := bld.KeyBuilder().(*array.Int32Builder)
	listBld := bld.ItemBuilder().(*array.ListBuilder)
	instanceBld := listBld.ValueBuilder().(*array.MapBuilder)

	for _, countTag := range countTags {
		keyBld.Append(countTag)
		listBld.Append(true)

		for _, instance := range groups[countTag] {
			memberTags := make([]int32, 0, len(instance))
			for k := range instance {
				memberTags = append(memberTags, int32(k))
			}
			sortInt32s(memberTags)

			instanceBld.Append(true)
			instKeyBld := instanceBld.KeyBuilder().(*array.Int32Builder)
			instItemBld := instanceBld.ItemBuilder().(*array.StringBuilder)
			for _, mt := range memberTags {
				instKeyBld.Append(mt)
				instItemBld.Append(instance[fixdict.Tag(mt)])
			}
		}
	}
}

func sortInt32s(s []int32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// RecordBatch finalizes the current builders into an arrow.Record, resets
// them for the next chunk, and returns the record. The caller owns the
// returned record's reference and must Release it.
func (b *Batch) RecordBatch() arrow.Record {
	cols := make([]arrow.Array, len(b.builders))
	for i, bld := range b.builders {
		cols[i] = bld.NewArray()
	}
	rec := array.NewRecord(b.schema, cols, b.rows)

	for _, c := range cols {
		c.Release()
	}
	b.rows = 0
	return rec
}

// IncrementRowCount is called once per row after all columns for that row
// have been appended.
func (b *Batch) IncrementRowCount() {
	b.rows++
}

// Release frees every column builder's underlying memory.
func (b *Batch) Release() {
	for _, bld := range b.builders {
		bld.Release()
	}
}
