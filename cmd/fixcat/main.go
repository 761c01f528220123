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

// Command fixcat is a command-line client for reading table-valued FIX
// protocol logs: it binds and runs a scan, prints rows as JSON, compares
// dictionary overlays, and can stage a scan's output into DuckDB for ad-hoc
// SQL.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/fixreader/internal/fixconfig"
)

// rootCmd is assembled in root.go, whose init() registers the cat, dict and
// query subcommands; each subcommand file declares its own flags.
func main() {
	time.Local = time.UTC

	cfg, err := fixconfig.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.Log.Level))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	sessionID := uuid.New().String()
	slog.Debug("starting fixcat", slog.String("session_id", sessionID))

	if err := Execute(cfg, sessionID); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
