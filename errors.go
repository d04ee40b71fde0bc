// Copyright (c) 2025 The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-huffpack.
//
// go-huffpack is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-huffpack is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-huffpack.  If not, see <https://www.gnu.org/licenses/>.

package huffpack

import "errors"

// Error kinds surfaced by Encode and Decode. Failure sites wrap these
// with context; callers test with errors.Is.
var (
	// ErrFileOpen indicates the input could not be opened or the
	// output could not be created.
	ErrFileOpen = errors.New("cannot open file")

	// ErrFileRead indicates a read failed or ended early.
	ErrFileRead = errors.New("read failed")

	// ErrFileWrite indicates a write failed or was short.
	ErrFileWrite = errors.New("write failed")

	// ErrBadFormat indicates a container that cannot be decoded: bad
	// magic, an invalid lengths or frequency table, or a corrupted or
	// truncated bit stream.
	ErrBadFormat = errors.New("bad container format")

	// ErrInputTooLarge indicates an input the encoder cannot address
	// in memory on this platform.
	ErrInputTooLarge = errors.New("input too large")

	// ErrInternal indicates a violated internal invariant, such as a
	// tree build failure on non-empty input.
	ErrInternal = errors.New("internal error")
)
