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

// Package huffpack implements a static Huffman file codec: a two-pass
// byte-oriented entropy coder that compresses a file into a
// self-describing container and losslessly decompresses it. The
// container persists only the 256 canonical code lengths, from which
// the decoder derives the identical code set.
package huffpack

import "github.com/spf13/afero"

// Codec encodes and decodes huffpack containers against a filesystem.
// A Codec holds no per-call state; concurrent calls on distinct files
// are safe.
type Codec struct {
	fs afero.Fs
}

// New returns a Codec operating on the OS filesystem.
func New() *Codec {
	return &Codec{fs: afero.NewOsFs()}
}

// NewWithFs returns a Codec operating on the given filesystem.
func NewWithFs(fs afero.Fs) *Codec {
	return &Codec{fs: fs}
}

// Encode compresses inputPath into a container at outputPath. See
// Codec.Encode.
func Encode(inputPath, outputPath string, stats *Stats) error {
	return New().Encode(inputPath, outputPath, stats)
}

// Decode decompresses a container at inputPath into outputPath. See
// Codec.Decode.
func Decode(inputPath, outputPath string, stats *Stats) error {
	return New().Decode(inputPath, outputPath, stats)
}
