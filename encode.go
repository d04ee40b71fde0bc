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

import (
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-huffpack/huffman"
)

// maxInputSize is the largest input addressable as a single slice.
const maxInputSize = int64(^uint(0) >> 1)

// Encode compresses inputPath into a container at outputPath. The
// input is read fully into memory for the two-pass scheme. On failure
// the output path must be treated as unreliable.
func (c *Codec) Encode(inputPath, outputPath string, stats *Stats) error {
	start := time.Now()

	data, err := c.readInput(inputPath)
	if err != nil {
		return err
	}

	freqs := countFrequencies(data)
	lengths, err := huffman.CodeLengths(&freqs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	codes, err := huffman.CanonicalCodes(&lengths)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if len(data) > 0 && codes[data[0]].Bits == 0 {
		return fmt.Errorf("%w: tree build produced no code for present symbol", ErrInternal)
	}

	out, err := c.fs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrFileOpen, outputPath, err)
	}
	cw := &countingWriter{w: out}
	if err := encodeBody(cw, data, &lengths, &codes); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrFileWrite, outputPath, err)
	}

	if stats != nil {
		stats.OriginalSize = uint64(len(data))
		stats.CompressedSize = cw.n
		stats.Codes = codes
		stats.fill(&freqs, &lengths)
		stats.Elapsed = time.Since(start)
	}
	return nil
}

// readInput loads the whole input file.
func (c *Codec) readInput(path string) ([]byte, error) {
	in, err := c.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrFileOpen, path, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrFileRead, path, err)
	}
	size := info.Size()
	if size > maxInputSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(in, data); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFileRead, path, err)
	}
	return data, nil
}

// encodeBody writes the header and the bit stream: one code per input
// byte, in strict input order.
func encodeBody(w io.Writer, data []byte, lengths *[huffman.AlphabetSize]uint8, codes *[huffman.AlphabetSize]huffman.Code) error {
	if err := writeHeader(w, uint64(len(data)), lengths); err != nil {
		return err
	}
	bw := huffman.NewWriter(w)
	for _, b := range data {
		if err := bw.WriteCode(codes[b]); err != nil {
			return fmt.Errorf("%w: body: %w", ErrFileWrite, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: body: %w", ErrFileWrite, err)
	}
	return nil
}

// countingWriter tracks bytes written for compressed-size reporting.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += uint64(n) //nolint:gosec // n is a non-negative write count
	return n, err
}
