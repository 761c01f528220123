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
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	rowsInCounter      otelmetric.Int64Counter
	rowsOutCounter     otelmetric.Int64Counter
	rowsDroppedCounter otelmetric.Int64Counter
	parseErrorsCounter otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/fixreader/internal/fixscan")

	var err error
	rowsInCounter, err = meter.Int64Counter(
		"fixreader.scan.rows.in",
		otelmetric.WithDescription("Number of FIX log lines read from source files"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rows.in counter: %w", err))
	}

	rowsOutCounter, err = meter.Int64Counter(
		"fixreader.scan.rows.out",
		otelmetric.WithDescription("Number of rows emitted to the output batch"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rows.out counter: %w", err))
	}

	rowsDroppedCounter, err = meter.Int64Counter(
		"fixreader.scan.rows.dropped",
		otelmetric.WithDescription("Number of empty lines skipped during a scan"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rows.dropped counter: %w", err))
	}

	parseErrorsCounter, err = meter.Int64Counter(
		"fixreader.scan.parse_errors",
		otelmetric.WithDescription("Number of rows whose tokenizer or coercion step recorded a parse_error"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create parse_errors counter: %w", err))
	}
}
