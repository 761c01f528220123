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

package fixdict

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
)

// embeddedFIX44 is the base FIX 4.4 dictionary compiled into the binary as
// a byte blob (go:embed), not a string literal, so there is no per-platform
// compiler limit on its size and no runtime file dependency for callers who
// do not supply their own dictionary.
//
//go:embed assets/fix44.xml
var embeddedFIX44 []byte

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
	defaultErr  error
)

// LoadDefault returns the built-in FIX 4.4 dictionary, parsed once and
// cached for the lifetime of the process.
func LoadDefault() (*Dictionary, error) {
	defaultOnce.Do(func() {
		defaultDict, defaultErr = LoadBase(bytes.NewReader(embeddedFIX44))
		if defaultErr != nil {
			defaultErr = fmt.Errorf("fixdict: embedded default dictionary: %w", defaultErr)
		}
	})
	return defaultDict, defaultErr
}
