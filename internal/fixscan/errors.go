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
	"errors"
	"fmt"
)

// ErrBind is a sentinel error indicating Bind failed at one of its five
// steps. Use errors.Is(err, ErrBind) to check for this class of error and
// errors.As(err, &BindError{}) to extract which step failed and why.
var ErrBind = errors.New("bind failed")

// BindError represents a failure at one specific step of Bind. Stage names
// the step (glob expansion, dictionary resolution, delimiter parsing, custom
// column resolution, or projection resolution); Detail is a human-readable
// description of what went wrong.
type BindError struct {
	Stage  string
	Detail string
	Err    error
}

func (e *BindError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrBind, e.Stage, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrBind, e.Stage, e.Detail)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func (e *BindError) Is(target error) bool {
	return target == ErrBind
}

// ErrNoFilesMatched is a sentinel error for the recoverable condition where a
// bind's glob patterns matched no files. Callers may treat this as an empty
// scan rather than a hard failure.
var ErrNoFilesMatched = errors.New("no files matched")

// NoFilesMatchedError carries the patterns that produced no matches.
type NoFilesMatchedError struct {
	Patterns []string
}

func (e *NoFilesMatchedError) Error() string {
	return fmt.Sprintf("%s: %v", ErrNoFilesMatched, e.Patterns)
}

func (e *NoFilesMatchedError) Is(target error) bool {
	return target == ErrNoFilesMatched
}
