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

// Package fixio provides file-level line framing for the scan driver: a
// shared cursor that hands out whole files to worker goroutines, and a
// per-worker line reader over the file each claims.
package fixio

import "sync"

// FileCursor hands out file paths from a fixed list, one at a time, to
// however many workers call Next concurrently. Parallelism in this
// revision is at file granularity only - a single file is always read
// sequentially by the worker that claimed it.
type FileCursor struct {
	mu    sync.Mutex
	files []string
	next  int
}

// NewFileCursor returns a cursor over files, ready to be shared by every
// scan worker.
func NewFileCursor(files []string) *FileCursor {
	return &FileCursor{files: files}
}

// Next claims the next unclaimed path, or reports ok=false once every file
// has been claimed.
func (c *FileCursor) Next() (path string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= len(c.files) {
		return "", false
	}
	path = c.files[c.next]
	c.next++
	return path, true
}

// Total reports how many files the cursor was constructed with.
func (c *FileCursor) Total() int {
	return len(c.files)
}
