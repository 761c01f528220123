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

package fixio

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// bufferSize is the chunk size LineFramer reads from the underlying file,
// matching the original reader's fixed read granularity.
const bufferSize = 8192

// LineFramer splits one open file into lines, stripping a trailing '\n' and
// then a trailing '\r' (CRLF), but never lone-CR line endings - a bare '\r'
// is passed through as ordinary line content. This is a known limitation
// for classic Mac-style text; FIX logs in practice are LF or CRLF.
type LineFramer struct {
	path       string
	file       *os.File
	r          *bufio.Reader
	lineNumber int
}

// OpenNext claims the next file from cursor and opens a fresh LineFramer
// over it, closing any file this framer previously held. It reports
// ok=false once the cursor is exhausted.
func OpenNext(cursor *FileCursor, f *LineFramer) (ok bool, err error) {
	f.Close()

	path, ok := cursor.Next()
	if !ok {
		return false, nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("fixio: open %s: %w", path, err)
	}

	f.path = path
	f.file = fh
	f.r = bufio.NewReaderSize(fh, bufferSize)
	f.lineNumber = 0
	return true, nil
}

// Path returns the file path this framer is currently reading.
func (f *LineFramer) Path() string {
	return f.path
}

// LineNumber returns the 1-based number of the line most recently returned
// by ReadLine.
func (f *LineFramer) LineNumber() int {
	return f.lineNumber
}

// ReadLine returns the next line, with any trailing CRLF or LF stripped. A
// final line with no trailing terminator is still returned with ok=true.
// ok is false once the file is exhausted.
func (f *LineFramer) ReadLine() (line []byte, ok bool, err error) {
	if f.r == nil {
		return nil, false, nil
	}

	raw, err := f.r.ReadBytes('\n')
	if len(raw) == 0 && err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fixio: read %s: %w", f.path, err)
	}

	if err != nil && err != io.EOF {
		return nil, false, fmt.Errorf("fixio: read %s: %w", f.path, err)
	}

	if n := len(raw); n > 0 && raw[n-1] == '\n' {
		raw = raw[:n-1]
		if n := len(raw); n > 0 && raw[n-1] == '\r' {
			raw = raw[:n-1]
		}
	}

	f.lineNumber++
	return raw, true, nil
}

// Close releases the underlying file handle, if any. It is safe to call
// more than once.
func (f *LineFramer) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	f.r = nil
	return err
}
