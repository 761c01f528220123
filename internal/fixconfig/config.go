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

// Package fixconfig aggregates process-level configuration for fixcat and
// any other command that binds a fixscan.Options from flags, a config file,
// and the environment.
package fixconfig

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// ScanConfig holds the scan-wide defaults that back fixscan.Options when a
// command line flag is left unset.
type ScanConfig struct {
	// DictionaryPath is the default XML dictionary file. Empty selects the
	// embedded FIX 4.4 default.
	DictionaryPath string `mapstructure:"dictionary_path"`

	// Delimiter is the default field delimiter: a single character, or the
	// literal token `\x01` for SOH.
	Delimiter string `mapstructure:"delimiter"`

	// BatchSize is the default row count per output batch.
	BatchSize int `mapstructure:"batch_size"`

	// Workers is the default number of file-claiming goroutines.
	Workers int `mapstructure:"workers"`
}

// DefaultScanConfig returns the scan defaults matching fixscan's own
// zero-value behavior (embedded dictionary, '|' delimiter,
// fixscan.StandardBatchSize, a single worker).
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		DictionaryPath: "",
		Delimiter:      "|",
		BatchSize:      2048,
		Workers:        1,
	}
}

// LogConfig holds the logging knobs shared across commands.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info"}
}

// Config aggregates configuration for fixcat. Each field is owned by its
// respective concern.
type Config struct {
	Scan ScanConfig `mapstructure:"scan"`
	Log  LogConfig  `mapstructure:"log"`
}

// DefaultConfig returns a Config populated with every package's defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: DefaultScanConfig(),
		Log:  DefaultLogConfig(),
	}
}

// Load reads configuration from a "fixreader.yaml"/"fixreader.json" file in
// the current directory (if present) and from the environment. Environment
// variables use the prefix "FIXREADER" and the dot character in keys is
// replaced by an underscore, so "scan.batch_size" becomes
// "FIXREADER_SCAN_BATCH_SIZE".
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("fixreader")
	v.AddConfigPath(".")
	v.SetEnvPrefix("FIXREADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
