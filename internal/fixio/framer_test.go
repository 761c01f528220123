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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLineFramer_LFLines(t *testing.T) {
	path := writeTempFile(t, "lf.log", "35=D|49=S\n35=8|49=T\n")
	cursor := NewFileCursor([]string{path})

	var f LineFramer
	ok, err := OpenNext(cursor, &f)
	require.NoError(t, err)
	require.True(t, ok)
	defer f.Close()

	line, ok, err := f.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "35=D|49=S", string(line))

	line, ok, err = f.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "35=8|49=T", string(line))

	_, ok, err = f.ReadLine()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLineFramer_CRLFStripped(t *testing.T) {
	path := writeTempFile(t, "crlf.log", "35=D|49=S\r\n")
	cursor := NewFileCursor([]string{path})

	var f LineFramer
	ok, err := OpenNext(cursor, &f)
	require.NoError(t, err)
	require.True(t, ok)
	defer f.Close()

	line, ok, err := f.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "35=D|49=S", string(line))
}

func TestLineFramer_LoneCRIsNotATerminator(t *testing.T) {
	path := writeTempFile(t, "cr.log", "35=D\r49=S\n")
	cursor := NewFileCursor([]string{path})

	var f LineFramer
	ok, err := OpenNext(cursor, &f)
	require.NoError(t, err)
	require.True(t, ok)
	defer f.Close()

	line, ok, err := f.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "35=D\r49=S", string(line), "a lone CR is not a line terminator")
}

func TestLineFramer_FinalUnterminatedLineEmitted(t *testing.T) {
	path := writeTempFile(t, "noeol.log", "35=D|49=S\n35=8|49=T")
	cursor := NewFileCursor([]string{path})

	var f LineFramer
	ok, err := OpenNext(cursor, &f)
	require.NoError(t, err)
	require.True(t, ok)
	defer f.Close()

	_, ok, err = f.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)

	line, ok, err := f.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "35=8|49=T", string(line))

	_, ok, err = f.ReadLine()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLineFramer_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.log", "")
	cursor := NewFileCursor([]string{path})

	var f LineFramer
	ok, err := OpenNext(cursor, &f)
	require.NoError(t, err)
	require.True(t, ok)
	defer f.Close()

	_, ok, err = f.ReadLine()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCursor_HandsOutEachPathOnce(t *testing.T) {
	cursor := NewFileCursor([]string{"a", "b", "c"})
	assert.Equal(t, 3, cursor.Total())

	seen := map[string]bool{}
	for {
		p, ok := cursor.Next()
		if !ok {
			break
		}
		assert.False(t, seen[p])
		seen[p] = true
	}
	assert.Len(t, seen, 3)

	_, ok := cursor.Next()
	assert.False(t, ok)
}

func TestOpenNext_ClosesPreviousFile(t *testing.T) {
	pathA := writeTempFile(t, "a.log", "35=D\n")
	pathB := writeTempFile(t, "b.log", "35=8\n")
	cursor := NewFileCursor([]string{pathA, pathB})

	var f LineFramer
	ok, err := OpenNext(cursor, &f)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pathA, f.Path())

	ok, err = OpenNext(cursor, &f)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pathB, f.Path())
	defer f.Close()

	line, ok, err := f.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "35=8", string(line))
}
