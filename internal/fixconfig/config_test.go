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

package fixconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "", cfg.Scan.DictionaryPath)
	require.Equal(t, "|", cfg.Scan.Delimiter)
	require.Equal(t, 2048, cfg.Scan.BatchSize)
	require.Equal(t, 1, cfg.Scan.Workers)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FIXREADER_SCAN_BATCH_SIZE", "4096")
	t.Setenv("FIXREADER_SCAN_WORKERS", "4")
	t.Setenv("FIXREADER_SCAN_DELIMITER", `\x01`)
	t.Setenv("FIXREADER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 4096, cfg.Scan.BatchSize)
	require.Equal(t, 4, cfg.Scan.Workers)
	require.Equal(t, `\x01`, cfg.Scan.Delimiter)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadWithoutOverridesUsesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}
