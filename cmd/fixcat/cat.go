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

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/fixreader/internal/fixbatch"
	"github.com/cardinalhq/fixreader/internal/fixscan"
)

var catCmd = &cobra.Command{
	Use:   "cat <path> [path...]",
	Short: "Print every row of one or more FIX logs as newline-delimited JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCat,
}

func init() {
	catCmd.Flags().String("dictionary", "", "XML dictionary file (default: embedded FIX 4.4)")
	catCmd.Flags().String("delimiter", "", `field delimiter: a single character, or the literal \x01 for SOH (default '|')`)
	catCmd.Flags().StringSlice("rtags", nil, "field names to add as extra columns")
	catCmd.Flags().IntSlice("tag", nil, "numeric tags to add as extra columns")
	catCmd.Flags().StringSlice("columns", nil, "output columns to project (default: all)")
	catCmd.Flags().Int("batch-size", 0, "rows per output batch (default from config)")
	catCmd.Flags().Int("workers", 0, "concurrent file-scanning workers (default from config)")
}

func runCat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)
	sessionID := sessionIDFrom(ctx)

	dictionary, _ := cmd.Flags().GetString("dictionary")
	if dictionary == "" {
		dictionary = cfg.Scan.DictionaryPath
	}
	delimiter, _ := cmd.Flags().GetString("delimiter")
	if delimiter == "" {
		delimiter = cfg.Scan.Delimiter
	}
	rtags, _ := cmd.Flags().GetStringSlice("rtags")
	tagIDs, _ := cmd.Flags().GetIntSlice("tag")
	columns, _ := cmd.Flags().GetStringSlice("columns")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if batchSize == 0 {
		batchSize = cfg.Scan.BatchSize
	}
	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = cfg.Scan.Workers
	}

	bound, err := fixscan.Bind(fixscan.Options{
		Paths:          args,
		DictionaryPath: dictionary,
		Delimiter:      delimiter,
		RTags:          rtags,
		TagIDs:         tagIDs,
		Columns:        columns,
		BatchSize:      batchSize,
		Workers:        workers,
		Logger:         slog.Default().With(slog.String("session_id", sessionID)),
	})
	if err != nil {
		return fmt.Errorf("fixcat: bind: %w", err)
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()
	enc := json.NewEncoder(out)

	var rows int64
	for batch, scanErr := range bound.Scan(ctx) {
		if scanErr != nil {
			return fmt.Errorf("fixcat: scan: %w", scanErr)
		}
		rec := batch.RecordBatch()
		for r := 0; r < int(rec.NumRows()); r++ {
			if err := enc.Encode(fixbatch.RowMap(rec, r)); err != nil {
				rec.Release()
				return fmt.Errorf("fixcat: encode row: %w", err)
			}
			rows++
		}
		rec.Release()
	}

	if _, err := fmt.Fprintln(os.Stderr, "rows written:", rows); err != nil {
		return err
	}
	return nil
}
