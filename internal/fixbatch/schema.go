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

// Package fixbatch assembles Arrow record batches for the scan driver's
// fixed 23-column output schema plus any bind-time custom-tag columns.
package fixbatch

import "github.com/apache/arrow-go/v18/arrow"

// Column indices for the 19 hot-tag slots plus the four shared columns, in
// output order. Custom columns follow at index NumFixedColumns and beyond.
const (
	ColMsgType = iota
	ColSenderCompID
	ColTargetCompID
	ColMsgSeqNum
	ColSendingTime
	ColClOrdID
	ColOrderID
	ColExecID
	ColSymbol
	ColSide
	ColExecType
	ColOrdStatus
	ColPrice
	ColOrderQty
	ColCumQty
	ColLeavesQty
	ColLastPx
	ColLastQty
	ColText
	ColTags
	ColGroups
	ColRawMessage
	ColParseError

	NumFixedColumns
)

var tagMapType = arrow.MapOf(arrow.PrimitiveTypes.Int32, arrow.BinaryTypes.String)

// groupInstanceType is one repeating-group instance: a map of member tag to
// its raw string value.
var groupInstanceType = arrow.MapOf(arrow.PrimitiveTypes.Int32, arrow.BinaryTypes.String)

// groupMapType is the groups column's logical type: count tag to the list
// of instances it produced.
var groupMapType = arrow.MapOf(arrow.PrimitiveTypes.Int32, arrow.ListOf(groupInstanceType))

var fixedFields = []arrow.Field{
	{Name: "msg_type", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "sender_comp_id", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "target_comp_id", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "msg_seq_num", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "sending_time", Type: arrow.FixedWidthTypes.Timestamp_us, Nullable: true},
	{Name: "cl_ord_id", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "order_id", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "exec_id", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "symbol", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "side", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "exec_type", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "ord_status", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "price", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "order_qty", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "cum_qty", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "leaves_qty", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "last_px", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "last_qty", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "text", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "tags", Type: tagMapType, Nullable: true},
	{Name: "groups", Type: groupMapType, Nullable: true},
	{Name: "raw_message", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "parse_error", Type: arrow.BinaryTypes.String, Nullable: true},
}

// BuildSchema returns the Arrow schema for the fixed columns followed by one
// nullable Utf8 field per custom column name, in declared order.
func BuildSchema(customNames []string) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(fixedFields)+len(customNames))
	fields = append(fields, fixedFields...)
	for _, name := range customNames {
		fields = append(fields, arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}
