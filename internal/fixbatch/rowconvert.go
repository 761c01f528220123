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
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// RowMap decodes row i of rec into a plain Go map keyed by schema field
// name, suitable for JSON encoding or insertion into a SQL row. Null fields
// are omitted entirely rather than set to a Go nil, matching how a JSON
// consumer expects an absent key over an explicit null for a scalar column.
func RowMap(rec arrow.Record, row int) map[string]any {
	out := make(map[string]any, rec.NumCols())
	for c := 0; c < int(rec.NumCols()); c++ {
		col := rec.Column(c)
		if col.IsNull(row) {
			continue
		}
		out[rec.Schema().Field(c).Name] = convertArrowValue(col, row)
	}
	return out
}

func convertArrowValue(c arrow.Array, i int) any {
	switch c := c.(type) {
	case *array.String:
		return c.Value(i)
	case *array.Int32:
		return c.Value(i)
	case *array.Int64:
		return c.Value(i)
	case *array.Float64:
		return c.Value(i)
	case *array.Timestamp:
		return time.UnixMicro(int64(c.Value(i))).UTC()
	case *array.Map:
		return convertMapValue(c, i)
	case *array.List:
		return convertListValue(c, i)
	default:
		return fmt.Sprintf("%v", c)
	}
}

// convertMapValue converts a Map array value to a Go map keyed by the
// string representation of each entry's key, since FIX tag numbers are not
// valid JSON object keys as integers.
func convertMapValue(arr *array.Map, i int) map[string]any {
	if arr.IsNull(i) {
		return nil
	}

	start, end := arr.ValueOffsets(i)
	keys := arr.Keys()
	items := arr.Items()

	result := make(map[string]any, end-start)
	for j := start; j < end; j++ {
		key := convertArrowValue(keys, int(j))
		result[fmt.Sprintf("%v", key)] = convertArrowValue(items, int(j))
	}
	return result
}

// convertListValue converts a List array value to a Go slice.
func convertListValue(arr *array.List, i int) []any {
	if arr.IsNull(i) {
		return nil
	}

	start, end := arr.ValueOffsets(i)
	values := arr.ListValues()

	result := make([]any, 0, end-start)
	for j := start; j < end; j++ {
		if values.IsNull(int(j)) {
			result = append(result, nil)
		} else {
			result = append(result, convertArrowValue(values, int(j)))
		}
	}
	return result
}
