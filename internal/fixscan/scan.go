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
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/fixreader/internal/fixbatch"
	"github.com/cardinalhq/fixreader/internal/fixconv"
	"github.com/cardinalhq/fixreader/internal/fixdict"
	"github.com/cardinalhq/fixreader/internal/fixio"
	"github.com/cardinalhq/fixreader/internal/fixparse"
)

// groupParseCalls counts invocations of fixparse.ParseGroups across every
// scan. It exists so tests can observe that projection pushdown actually
// skips group reconstruction rather than just discarding its output.
var groupParseCalls atomic.Int64

var timeZero time.Time

// Scan runs the bound plan and returns a Go 1.23 range-over-func iterator
// of output batches. Workers claim files from a shared cursor and stream
// full batches back to the caller; cancelling ctx, or the caller returning
// false from the range body, stops every worker promptly.
func (b *BoundScan) Scan(ctx context.Context) iter.Seq2[*fixbatch.Batch, error] {
	return func(yield func(*fixbatch.Batch, error) bool) {
		workerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		cursor := fixio.NewFileCursor(b.files)
		batches := make(chan *fixbatch.Batch)

		g, gctx := errgroup.WithContext(workerCtx)
		for i := 0; i < b.workers; i++ {
			g.Go(func() error {
				return b.scanWorker(gctx, cursor, batches)
			})
		}

		done := make(chan error, 1)
		go func() {
			err := g.Wait()
			close(batches)
			done <- err
		}()

		stopped := false
		for batch := range batches {
			if stopped {
				continue
			}
			if !yield(batch, nil) {
				stopped = true
				cancel()
			}
		}

		if err := <-done; err != nil && !stopped {
			yield(nil, err)
		}
	}
}

// scanWorker claims files from cursor until it is exhausted or ctx is
// cancelled, reading and assembling rows into batches of b.batchSize and
// sending each full batch on out.
func (b *BoundScan) scanWorker(ctx context.Context, cursor *fixio.FileCursor, out chan<- *fixbatch.Batch) error {
	var framer fixio.LineFramer
	defer framer.Close()

	batch := fixbatch.NewBatch(b.CustomNames())
	var msg fixparse.Message

	for {
		if ctx.Err() != nil {
			return b.flushRemainder(ctx, batch, out)
		}

		ok, err := fixio.OpenNext(cursor, &framer)
		if err != nil {
			return err
		}
		if !ok {
			return b.flushRemainder(ctx, batch, out)
		}

		rowsThisFile := 0
		for {
			if ctx.Err() != nil {
				return nil
			}

			line, ok, err := framer.ReadLine()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if len(line) == 0 {
				rowsDroppedCounter.Add(ctx, 1)
				continue
			}

			b.appendRow(ctx, batch, &msg, line)
			rowsInCounter.Add(ctx, 1)
			rowsThisFile++

			if batch.Len() >= int64(b.batchSize) {
				full := batch
				select {
				case out <- full:
				case <-ctx.Done():
					return nil
				}
				rowsOutCounter.Add(ctx, full.Len())
				batch = fixbatch.NewBatch(b.CustomNames())
			}
		}

		b.logger.Info("finished file",
			slog.String("path", framer.Path()),
			slog.Int("rows", rowsThisFile),
		)
	}
}

// flushRemainder sends a partially-filled batch, if any, before a worker
// exits cleanly (cursor exhausted or cancellation observed between files).
func (b *BoundScan) flushRemainder(ctx context.Context, batch *fixbatch.Batch, out chan<- *fixbatch.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	select {
	case out <- batch:
		rowsOutCounter.Add(ctx, batch.Len())
	case <-ctx.Done():
	}
	return nil
}

// appendRow implements scan-phase steps 3-9 from spec §4.6 for a single
// line, writing directly into batch's column builders. Columns not in the
// bound projection are written null without coercing or materializing their
// source data; tags and groups are the expensive cases this skips.
func (b *BoundScan) appendRow(ctx context.Context, batch *fixbatch.Batch, msg *fixparse.Message, line []byte) {
	var errs fixconv.ErrorAccumulator
	fixparse.Tokenize(line, b.delim, msg)
	if msg.ParseError != "" {
		errs.Add(msg.ParseError)
	}

	appendStringHot := func(col int, tag fixdict.Tag) {
		if !b.columnNeeded(col) {
			batch.AppendString(col, "", false)
			return
		}
		idx, _ := fixparse.IsHotTag(tag)
		slice := msg.Hot[idx]
		batch.AppendString(col, string(slice.Bytes(msg.Raw)), !slice.Empty())
	}
	appendIntHot := func(col int, tag fixdict.Tag, field string) {
		if !b.columnNeeded(col) {
			batch.AppendInt64(col, 0, false)
			return
		}
		idx, _ := fixparse.IsHotTag(tag)
		slice := msg.Hot[idx]
		v, ok := fixconv.Int64(field, slice.Bytes(msg.Raw), &errs)
		batch.AppendInt64(col, v, ok)
	}
	appendFloatHot := func(col int, tag fixdict.Tag, field string) {
		if !b.columnNeeded(col) {
			batch.AppendFloat64(col, 0, false)
			return
		}
		idx, _ := fixparse.IsHotTag(tag)
		slice := msg.Hot[idx]
		v, ok := fixconv.Float64(field, slice.Bytes(msg.Raw), &errs)
		batch.AppendFloat64(col, v, ok)
	}
	appendTimestampHot := func(col int, tag fixdict.Tag, field string) {
		if !b.columnNeeded(col) {
			batch.AppendTimestamp(col, timeZero, false)
			return
		}
		idx, _ := fixparse.IsHotTag(tag)
		slice := msg.Hot[idx]
		v, ok := fixconv.Timestamp(field, slice.Bytes(msg.Raw), &errs)
		batch.AppendTimestamp(col, v, ok)
	}

	appendStringHot(fixbatch.ColMsgType, fixparse.TagMsgType)
	appendStringHot(fixbatch.ColSenderCompID, fixparse.TagSenderCompID)
	appendStringHot(fixbatch.ColTargetCompID, fixparse.TagTargetCompID)
	appendIntHot(fixbatch.ColMsgSeqNum, fixparse.TagMsgSeqNum, "MsgSeqNum")
	appendTimestampHot(fixbatch.ColSendingTime, fixparse.TagSendingTime, "SendingTime")
	appendStringHot(fixbatch.ColClOrdID, fixparse.TagClOrdID)
	appendStringHot(fixbatch.ColOrderID, fixparse.TagOrderID)
	appendStringHot(fixbatch.ColExecID, fixparse.TagExecID)
	appendStringHot(fixbatch.ColSymbol, fixparse.TagSymbol)
	appendStringHot(fixbatch.ColSide, fixparse.TagSide)
	appendStringHot(fixbatch.ColExecType, fixparse.TagExecType)
	appendStringHot(fixbatch.ColOrdStatus, fixparse.TagOrdStatus)
	appendFloatHot(fixbatch.ColPrice, fixparse.TagPrice, "Price")
	appendFloatHot(fixbatch.ColOrderQty, fixparse.TagOrderQty, "OrderQty")
	appendFloatHot(fixbatch.ColCumQty, fixparse.TagCumQty, "CumQty")
	appendFloatHot(fixbatch.ColLeavesQty, fixparse.TagLeavesQty, "LeavesQty")
	appendFloatHot(fixbatch.ColLastPx, fixparse.TagLastPx, "LastPx")
	appendFloatHot(fixbatch.ColLastQty, fixparse.TagLastQty, "LastQty")
	appendStringHot(fixbatch.ColText, fixparse.TagText)

	if b.columnNeeded(fixbatch.ColTags) && len(msg.Overflow) > 0 {
		tags := make(map[int32]string, len(msg.Overflow))
		for tag, slice := range msg.Overflow {
			tags[int32(tag)] = string(slice.Bytes(msg.Raw))
		}
		batch.AppendTags(fixbatch.ColTags, tags)
	} else {
		batch.AppendTags(fixbatch.ColTags, nil)
	}

	var groupsOut map[int32][]fixparse.GroupInstance
	if b.columnNeeded(fixbatch.ColGroups) {
		groupParseCalls.Add(1)
		groups := fixparse.ParseGroups(msg, b.dict, true)
		if groups != nil {
			groupsOut = make(map[int32][]fixparse.GroupInstance, len(groups))
			for tag, instances := range groups {
				groupsOut[int32(tag)] = instances
			}
		}
	}
	batch.AppendGroups(fixbatch.ColGroups, groupsOut)

	batch.AppendString(fixbatch.ColRawMessage, string(line), true)
	if errs.Empty() {
		batch.AppendString(fixbatch.ColParseError, "", false)
	} else {
		batch.AppendString(fixbatch.ColParseError, errs.Join(), true)
		parseErrorsCounter.Add(ctx, 1)
	}

	for i, col := range b.custom {
		outCol := fixbatch.NumFixedColumns + i
		if !b.columnNeeded(outCol) {
			batch.AppendString(outCol, "", false)
			continue
		}
		if idx, isHot := fixparse.IsHotTag(col.tag); isHot {
			slice := msg.Hot[idx]
			batch.AppendString(outCol, string(slice.Bytes(msg.Raw)), !slice.Empty())
			continue
		}
		if slice, ok := msg.Overflow[col.tag]; ok {
			batch.AppendString(outCol, string(slice.Bytes(msg.Raw)), true)
			continue
		}
		batch.AppendString(outCol, "", false)
	}

	batch.IncrementRowCount()
}
