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
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/fixreader/internal/fixbatch"
	"github.com/cardinalhq/fixreader/internal/fixscan"
)

var queryCmd = &cobra.Command{
	Use:   "query <path> <sql>",
	Short: "Load a FIX log into an in-memory DuckDB table and run a SQL query against it",
	Long: `query scans path into rows, stages them into a DuckDB table named
fix_log with one column per hot field, tags/groups as JSON, and
raw_message/parse_error as text, then runs sql against that table and prints the result rows as
newline-delimited JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("dictionary", "", "XML dictionary file (default: embedded FIX 4.4)")
	queryCmd.Flags().String("delimiter", "", `field delimiter: a single character, or the literal \x01 for SOH (default '|')`)
}

// queryColumns is the DuckDB table shape for the fix_log staging table: the
// scalar hot columns, the two structured columns (tags, groups) as DuckDB's
// native JSON type, and the raw_message/parse_error text columns.
var queryColumns = []string{
	"msg_type", "sender_comp_id", "target_comp_id", "msg_seq_num", "sending_time",
	"cl_ord_id", "order_id", "exec_id", "symbol", "side", "exec_type", "ord_status",
	"price", "order_qty", "cum_qty", "leaves_qty", "last_px", "last_qty", "text",
	"tags", "groups", "raw_message", "parse_error",
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)
	sessionID := sessionIDFrom(ctx)
	path, sqlText := args[0], args[1]

	dictionary, _ := cmd.Flags().GetString("dictionary")
	if dictionary == "" {
		dictionary = cfg.Scan.DictionaryPath
	}
	delimiter, _ := cmd.Flags().GetString("delimiter")
	if delimiter == "" {
		delimiter = cfg.Scan.Delimiter
	}

	bound, err := fixscan.Bind(fixscan.Options{
		Paths:          []string{path},
		DictionaryPath: dictionary,
		Delimiter:      delimiter,
		BatchSize:      cfg.Scan.BatchSize,
		Workers:        cfg.Scan.Workers,
		Logger:         slog.Default().With(slog.String("session_id", sessionID)),
	})
	if err != nil {
		return fmt.Errorf("fixcat: bind: %w", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("fixcat: open duckdb: %w", err)
	}
	defer db.Close()

	if err := createFixLogTable(db); err != nil {
		return err
	}
	if err := loadFixLogTable(ctx, db, bound); err != nil {
		return err
	}

	return runAndPrintQuery(cmd, db, sqlText)
}

// loadFixLogTable scans bound to completion, inserting each row into the
// already-created fix_log table via a single prepared statement.
func loadFixLogTable(ctx context.Context, db *sql.DB, bound *fixscan.BoundScan) error {
	placeholders := ""
	for i := range queryColumns {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
	}
	stmt, err := db.Prepare(fmt.Sprintf("INSERT INTO fix_log VALUES (%s)", placeholders))
	if err != nil {
		return fmt.Errorf("fixcat: prepare insert: %w", err)
	}
	defer stmt.Close()

	for batch, scanErr := range bound.Scan(ctx) {
		if scanErr != nil {
			return fmt.Errorf("fixcat: scan: %w", scanErr)
		}
		rec := batch.RecordBatch()
		for r := 0; r < int(rec.NumRows()); r++ {
			row := fixbatch.RowMap(rec, r)
			values := make([]any, len(queryColumns))
			for i, name := range queryColumns {
				values[i] = rowValueFor(name, row)
			}
			if _, err := stmt.Exec(values...); err != nil {
				rec.Release()
				return fmt.Errorf("fixcat: insert row: %w", err)
			}
		}
		rec.Release()
	}
	return nil
}

func createFixLogTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE fix_log (
		msg_type VARCHAR, sender_comp_id VARCHAR, target_comp_id VARCHAR,
		msg_seq_num BIGINT, sending_time TIMESTAMP,
		cl_ord_id VARCHAR, order_id VARCHAR, exec_id VARCHAR,
		symbol VARCHAR, side VARCHAR, exec_type VARCHAR, ord_status VARCHAR,
		price DOUBLE, order_qty DOUBLE, cum_qty DOUBLE, leaves_qty DOUBLE,
		last_px DOUBLE, last_qty DOUBLE, text VARCHAR,
		tags JSON, groups JSON, raw_message VARCHAR, parse_error VARCHAR
	)`)
	if err != nil {
		return fmt.Errorf("fixcat: create fix_log table: %w", err)
	}
	return nil
}

// rowValueFor extracts column name from row, JSON-encoding the tags/groups
// maps since DuckDB's driver does not accept a Go map directly.
func rowValueFor(name string, row map[string]any) any {
	v, ok := row[name]
	if !ok {
		return nil
	}
	if name == "tags" || name == "groups" {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(encoded)
	}
	return v
}

func runAndPrintQuery(cmd *cobra.Command, db *sql.DB, sqlText string) error {
	rows, err := db.Query(sqlText)
	if err != nil {
		return fmt.Errorf("fixcat: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("fixcat: columns: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("fixcat: scan row: %w", err)
		}
		out := make(map[string]any, len(cols))
		for i, c := range cols {
			out[c] = raw[i]
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("fixcat: encode row: %w", err)
		}
	}
	return rows.Err()
}
