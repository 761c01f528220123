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

package fixscan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/fixreader/internal/fixbatch"
)

// scanTestDict covers every field the worked scenarios in spec §8 touch:
// the order/execution-report hot tags, a TransactTime custom column, and
// an ExecutionReport repeating group of parties.
const scanTestDict = `<fix major="4" minor="4">
  <fields>
    <field number="35" name="MsgType" type="STRING"/>
    <field number="49" name="SenderCompID" type="STRING"/>
    <field number="56" name="TargetCompID" type="STRING"/>
    <field number="34" name="MsgSeqNum" type="INT"/>
    <field number="52" name="SendingTime" type="UTCTIMESTAMP"/>
    <field number="11" name="ClOrdID" type="STRING"/>
    <field number="55" name="Symbol" type="STRING"/>
    <field number="54" name="Side" type="CHAR"/>
    <field number="38" name="OrderQty" type="QTY"/>
    <field number="44" name="Price" type="PRICE"/>
    <field number="60" name="TransactTime" type="UTCTIMESTAMP"/>
    <field number="448" name="PartyID" type="STRING"/>
    <field number="447" name="PartyIDSource" type="CHAR"/>
    <field number="452" name="PartyRole" type="INT"/>
    <field number="453" name="NoPartyIDs" type="NUMINGROUP"/>
  </fields>
  <messages>
    <message name="NewOrderSingle" msgtype="D">
      <field name="ClOrdID" required="Y"/>
      <field name="Symbol" required="Y"/>
      <field name="Side" required="Y"/>
      <field name="OrderQty" required="Y"/>
    </message>
    <message name="ExecutionReport" msgtype="8">
      <field name="Symbol" required="Y"/>
      <group name="NoPartyIDs">
        <field name="PartyID" required="N"/>
        <field name="PartyIDSource" required="N"/>
        <field name="PartyRole" required="N"/>
      </group>
    </message>
  </messages>
</fix>`

func writeLogFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.log")
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDictFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.xml")
	require.NoError(t, os.WriteFile(path, []byte(scanTestDict), 0o644))
	return path
}

// collectOne runs a bound scan to completion and requires exactly one
// non-empty batch, returning its single-record flush.
func collectOne(t *testing.T, b *BoundScan) arrow.Record {
	t.Helper()
	var records []arrow.Record
	for batch, err := range b.Scan(context.Background()) {
		require.NoError(t, err)
		rec := batch.RecordBatch()
		if rec.NumRows() > 0 {
			records = append(records, rec)
		} else {
			rec.Release()
		}
	}
	require.Len(t, records, 1)
	return records[0]
}

func stringAt(rec arrow.Record, col, row int) (string, bool) {
	c := rec.Column(col).(*array.String)
	if c.IsNull(row) {
		return "", false
	}
	return c.Value(row), true
}

func int64At(rec arrow.Record, col, row int) (int64, bool) {
	c := rec.Column(col).(*array.Int64)
	if c.IsNull(row) {
		return 0, false
	}
	return c.Value(row), true
}

func float64At(rec arrow.Record, col, row int) (float64, bool) {
	c := rec.Column(col).(*array.Float64)
	if c.IsNull(row) {
		return 0, false
	}
	return c.Value(row), true
}

func timestampAt(rec arrow.Record, col, row int) (time.Time, bool) {
	c := rec.Column(col).(*array.Timestamp)
	if c.IsNull(row) {
		return time.Time{}, false
	}
	return time.UnixMicro(int64(c.Value(row))).UTC(), true
}

func mapIsNullAt(rec arrow.Record, col, row int) bool {
	c := rec.Column(col).(*array.Map)
	return c.IsNull(row)
}

// TestBind_GlobExpansionDedupSort exercises bind step 1: every glob match
// across patterns, deduplicated, in sorted order.
func TestBind_GlobExpansionDedupSort(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.log", "a.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("35=D\n"), 0o644))
	}

	b, err := Bind(Options{Paths: []string{
		filepath.Join(dir, "*.log"),
		filepath.Join(dir, "a.log"),
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}, b.Files())
}

func TestBind_NoFilesMatchedIsError(t *testing.T) {
	_, err := Bind(Options{Paths: []string{filepath.Join(t.TempDir(), "*.nope")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFilesMatched))

	var notFound *NoFilesMatchedError
	require.True(t, errors.As(err, &notFound))
	assert.Len(t, notFound.Patterns, 1)
}

func TestBind_DictionaryFailureIsBindError(t *testing.T) {
	path := writeLogFile(t, "35=D")
	_, err := Bind(Options{Paths: []string{path}, DictionaryPath: filepath.Join(t.TempDir(), "missing.xml")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBind))

	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "dictionary resolution", bindErr.Stage)
}

func TestBind_DictionaryResolution(t *testing.T) {
	path := writeLogFile(t, "35=D")

	t.Run("embedded default when unset", func(t *testing.T) {
		b, err := Bind(Options{Paths: []string{path}})
		require.NoError(t, err)
		assert.NotNil(t, b.dict)
	})

	t.Run("file-backed dictionary", func(t *testing.T) {
		dictPath := writeDictFile(t)
		b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath})
		require.NoError(t, err)
		_, ok := b.dict.Messages["D"]
		assert.True(t, ok)
	})

	t.Run("missing dictionary file is an error", func(t *testing.T) {
		_, err := Bind(Options{Paths: []string{path}, DictionaryPath: filepath.Join(t.TempDir(), "missing.xml")})
		assert.Error(t, err)
	})
}

func TestBind_DelimiterParsing(t *testing.T) {
	path := writeLogFile(t, "35=D")

	tests := []struct {
		name    string
		raw     string
		want    byte
		wantErr bool
	}{
		{"default pipe", "", '|', false},
		{"literal SOH token", `\x01`, 0x01, false},
		{"single char", ";", ';', false},
		{"too long", "||", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Bind(Options{Paths: []string{path}, Delimiter: tt.raw})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.delim)
		})
	}
}

func TestBind_CustomColumns(t *testing.T) {
	path := writeLogFile(t, "35=D")
	dictPath := writeDictFile(t)

	t.Run("resolved by name", func(t *testing.T) {
		b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath, RTags: []string{"TransactTime"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"TransactTime"}, b.CustomNames())
	})

	t.Run("unknown name is a bind error", func(t *testing.T) {
		_, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath, RTags: []string{"NotAField"}})
		assert.Error(t, err)
	})

	t.Run("unknown numeric tag falls back to Tag<N>", func(t *testing.T) {
		b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath, TagIDs: []int{9999}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Tag9999"}, b.CustomNames())
	})

	t.Run("duplicate tag between rtags and tagIDs is deduplicated", func(t *testing.T) {
		b, err := Bind(Options{
			Paths:          []string{path},
			DictionaryPath: dictPath,
			RTags:          []string{"TransactTime"},
			TagIDs:         []int{60},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"TransactTime"}, b.CustomNames())
	})
}

func TestBind_ProjectionUnknownColumnIsError(t *testing.T) {
	path := writeLogFile(t, "35=D")
	_, err := Bind(Options{Paths: []string{path}, Columns: []string{"not_a_column"}})
	assert.Error(t, err)
}

// TestScan_BasicOrder is spec §8 scenario 1.
func TestScan_BasicOrder(t *testing.T) {
	dictPath := writeDictFile(t)
	path := writeLogFile(t, "8=FIX.4.4|9=100|35=D|49=S|56=T|34=1|52=20231215-10:30:00|11=A|55=AAPL|54=1|38=100|44=150.50|10=000")

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath})
	require.NoError(t, err)

	rec := collectOne(t, b)
	defer rec.Release()

	msgType, ok := stringAt(rec, fixbatch.ColMsgType, 0)
	require.True(t, ok)
	assert.Equal(t, "D", msgType)

	sender, _ := stringAt(rec, fixbatch.ColSenderCompID, 0)
	assert.Equal(t, "S", sender)

	seqNum, ok := int64At(rec, fixbatch.ColMsgSeqNum, 0)
	require.True(t, ok)
	assert.Equal(t, int64(1), seqNum)

	sendingTime, ok := timestampAt(rec, fixbatch.ColSendingTime, 0)
	require.True(t, ok)
	assert.True(t, time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC).Equal(sendingTime))

	symbol, _ := stringAt(rec, fixbatch.ColSymbol, 0)
	assert.Equal(t, "AAPL", symbol)

	orderQty, ok := float64At(rec, fixbatch.ColOrderQty, 0)
	require.True(t, ok)
	assert.Equal(t, 100.0, orderQty)

	price, ok := float64At(rec, fixbatch.ColPrice, 0)
	require.True(t, ok)
	assert.Equal(t, 150.50, price)

	assert.False(t, mapIsNullAt(rec, fixbatch.ColTags, 0))
	assert.True(t, mapIsNullAt(rec, fixbatch.ColGroups, 0))

	_, hasErr := stringAt(rec, fixbatch.ColParseError, 0)
	assert.False(t, hasErr, "parse_error must be null on a clean row")
}

// TestScan_MissingMsgType is spec §8 scenario 2.
func TestScan_MissingMsgType(t *testing.T) {
	dictPath := writeDictFile(t)
	path := writeLogFile(t, "49=S|56=T|11=A")

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath})
	require.NoError(t, err)

	rec := collectOne(t, b)
	defer rec.Release()

	_, hasMsgType := stringAt(rec, fixbatch.ColMsgType, 0)
	assert.False(t, hasMsgType)

	parseErr, ok := stringAt(rec, fixbatch.ColParseError, 0)
	require.True(t, ok)
	assert.Equal(t, "Missing required tag 35 (MsgType)", parseErr)

	raw, ok := stringAt(rec, fixbatch.ColRawMessage, 0)
	require.True(t, ok)
	assert.Equal(t, "49=S|56=T|11=A", raw)
}

// TestScan_BadNumeric is spec §8 scenario 3.
func TestScan_BadNumeric(t *testing.T) {
	dictPath := writeDictFile(t)
	path := writeLogFile(t, "35=D|34=abc|52=20231215-10:30:00")

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath})
	require.NoError(t, err)

	rec := collectOne(t, b)
	defer rec.Release()

	_, hasSeqNum := int64At(rec, fixbatch.ColMsgSeqNum, 0)
	assert.False(t, hasSeqNum)

	parseErr, ok := stringAt(rec, fixbatch.ColParseError, 0)
	require.True(t, ok)
	assert.Equal(t, "Invalid MsgSeqNum: 'abc'", parseErr)
}

// TestScan_RepeatingGroup is spec §8 scenario 4.
func TestScan_RepeatingGroup(t *testing.T) {
	dictPath := writeDictFile(t)
	path := writeLogFile(t, "35=8|55=AAPL|453=3|448=P1|447=D|452=1|448=P2|447=D|452=3|448=P3|447=D|452=11|10=000")

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath})
	require.NoError(t, err)

	rec := collectOne(t, b)
	defer rec.Release()

	assert.False(t, mapIsNullAt(rec, fixbatch.ColGroups, 0))

	groupsCol := rec.Column(fixbatch.ColGroups).(*array.Map)
	start, end := groupsCol.ValueOffsets(0)
	require.Equal(t, int64(1), end-start, "one countTag key (453)")

	keys := groupsCol.Keys().(*array.Int32)
	assert.Equal(t, int32(453), keys.Value(int(start)))

	instanceList := groupsCol.Items().(*array.List)
	listStart, listEnd := instanceList.ValueOffsets(int(start))
	assert.Equal(t, int64(3), listEnd-listStart, "three party instances")
}

// TestScan_ProjectionSkipsGroups is spec §8 scenario 5: the group parser is
// never invoked when the groups column is not projected.
func TestScan_ProjectionSkipsGroups(t *testing.T) {
	dictPath := writeDictFile(t)
	path := writeLogFile(t, "35=8|55=AAPL|453=3|448=P1|447=D|452=1|448=P2|447=D|452=3|448=P3|447=D|452=11|10=000")

	before := groupParseCalls.Load()

	b, err := Bind(Options{
		Paths:          []string{path},
		DictionaryPath: dictPath,
		Columns:        []string{"msg_type", "symbol", "raw_message", "parse_error"},
	})
	require.NoError(t, err)

	rec := collectOne(t, b)
	defer rec.Release()

	assert.Equal(t, before, groupParseCalls.Load(), "group parser must not run when groups is unprojected")
	assert.True(t, mapIsNullAt(rec, fixbatch.ColGroups, 0))

	symbol, ok := stringAt(rec, fixbatch.ColSymbol, 0)
	require.True(t, ok)
	assert.Equal(t, "AAPL", symbol, "projected columns are unaffected by what else is projected")
}

// TestScan_CustomTagColumn is spec §8 scenario 6.
func TestScan_CustomTagColumn(t *testing.T) {
	dictPath := writeDictFile(t)
	path := writeLogFile(t, "35=D|60=20231215-10:30:00|55=AAPL")

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath, RTags: []string{"TransactTime"}})
	require.NoError(t, err)

	rec := collectOne(t, b)
	defer rec.Release()

	transactTime, ok := stringAt(rec, fixbatch.NumFixedColumns, 0)
	require.True(t, ok)
	assert.Equal(t, "20231215-10:30:00", transactTime, "custom columns carry the raw string, no type coercion")
}

func TestScan_EmptyLinesAreDroppedNotEmitted(t *testing.T) {
	dictPath := writeDictFile(t)
	path := filepath.Join(t.TempDir(), "blank.log")
	require.NoError(t, os.WriteFile(path, []byte("35=D|55=AAPL\n\n35=8|55=MSFT\n"), 0o644))

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath})
	require.NoError(t, err)

	var total int64
	for batch, err := range b.Scan(context.Background()) {
		require.NoError(t, err)
		rec := batch.RecordBatch()
		total += rec.NumRows()
		rec.Release()
	}
	assert.Equal(t, int64(2), total)
}

func TestScan_BatchingSplitsAtBatchSize(t *testing.T) {
	dictPath := writeDictFile(t)
	lines := make([]string, 5)
	for i := range lines {
		lines[i] = "35=D|55=AAPL"
	}
	path := writeLogFile(t, lines...)

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath, BatchSize: 2})
	require.NoError(t, err)

	var rowCounts []int64
	for batch, err := range b.Scan(context.Background()) {
		require.NoError(t, err)
		rec := batch.RecordBatch()
		rowCounts = append(rowCounts, rec.NumRows())
		rec.Release()
	}
	assert.Equal(t, []int64{2, 2, 1}, rowCounts)
}

func TestScan_MultipleFilesAcrossWorkers(t *testing.T) {
	dictPath := writeDictFile(t)
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.log")
	pathB := filepath.Join(dir, "b.log")
	require.NoError(t, os.WriteFile(pathA, []byte("35=D|55=AAPL\n"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("35=D|55=MSFT\n35=D|55=GOOG\n"), 0o644))

	b, err := Bind(Options{
		Paths:          []string{filepath.Join(dir, "*.log")},
		DictionaryPath: dictPath,
		Workers:        2,
	})
	require.NoError(t, err)

	var total int64
	for batch, err := range b.Scan(context.Background()) {
		require.NoError(t, err)
		rec := batch.RecordBatch()
		total += rec.NumRows()
		rec.Release()
	}
	assert.Equal(t, int64(3), total)
}

func TestScan_ContextCancellationStopsEarly(t *testing.T) {
	dictPath := writeDictFile(t)
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "35=D|55=AAPL"
	}
	path := writeLogFile(t, lines...)

	b, err := Bind(Options{Paths: []string{path}, DictionaryPath: dictPath, BatchSize: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	seen := 0
	for batch, scanErr := range b.Scan(ctx) {
		require.NoError(t, scanErr)
		rec := batch.RecordBatch()
		rec.Release()
		seen++
		if seen == 2 {
			cancel()
			break
		}
	}
	assert.Equal(t, 2, seen)
}
