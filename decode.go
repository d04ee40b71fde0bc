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
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-huffpack/huffman"
)

// ioBufSize is the staging size for streamed container I/O.
const ioBufSize = 64 * 1024

// Decode decompresses a container at inputPath into outputPath,
// streaming the body through fixed-size buffers. On failure the output
// path must be treated as unreliable.
func (c *Codec) Decode(inputPath, outputPath string, stats *Stats) error {
	start := time.Now()

	in, err := c.fs.Open(inputPath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrFileOpen, inputPath, err)
	}
	defer func() { _ = in.Close() }()

	var compressedSize uint64
	if info, err := in.Stat(); err == nil {
		compressedSize = uint64(info.Size()) //nolint:gosec // file sizes are non-negative
	}

	br := bufio.NewReaderSize(in, ioBufSize)
	hdr, err := parseHeader(br)
	if err != nil {
		return err
	}

	out, err := c.fs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrFileOpen, outputPath, err)
	}

	var counts [huffman.AlphabetSize]uint64
	var countp *[huffman.AlphabetSize]uint64
	if stats != nil {
		countp = &counts
	}
	if err := writeDecoded(br, out, hdr, countp); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrFileWrite, outputPath, err)
	}

	if stats != nil {
		stats.OriginalSize = hdr.originalSize
		stats.CompressedSize = compressedSize
		stats.fill(&counts, &hdr.lengths)
		// Lengths were validated by parseHeader; the code table cannot
		// fail to derive here.
		stats.Codes, _ = huffman.CanonicalCodes(&hdr.lengths)
		stats.Elapsed = time.Since(start)
	}
	return nil
}

// writeDecoded emits exactly originalSize symbols. A single-symbol
// table bypasses the bit stream entirely; otherwise the body decodes
// through the table-accelerated decoder in fixed-size chunks.
func writeDecoded(br *bufio.Reader, out io.Writer, hdr *header, counts *[huffman.AlphabetSize]uint64) error {
	if hdr.originalSize == 0 {
		return nil
	}

	bw := bufio.NewWriterSize(out, ioBufSize)

	if s := hdr.singleSymbol(); s >= 0 {
		if counts != nil {
			counts[s] = hdr.originalSize
		}
		return flushErr(writeRun(bw, byte(s), hdr.originalSize))
	}

	dec, err := huffman.NewDecoder(&hdr.lengths)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	r := huffman.NewReader(br)
	buf := make([]byte, ioBufSize)
	remaining := hdr.originalSize
	for remaining > 0 {
		n := uint64(len(buf))
		if n > remaining {
			n = remaining
		}
		chunk := buf[:n]
		if err := dec.Decode(r, chunk); err != nil {
			if errors.Is(err, huffman.ErrCorruptStream) {
				return fmt.Errorf("%w: %w", ErrBadFormat, err)
			}
			return fmt.Errorf("%w: body: %w", ErrFileRead, err)
		}
		if counts != nil {
			for _, b := range chunk {
				counts[b]++
			}
		}
		if _, err := bw.Write(chunk); err != nil {
			return fmt.Errorf("%w: body: %w", ErrFileWrite, err)
		}
		remaining -= n
	}
	return flushErr(bw.Flush())
}

// writeRun emits count copies of b.
func writeRun(bw *bufio.Writer, b byte, count uint64) error {
	for i := uint64(0); i < count; i++ {
		if err := bw.WriteByte(b); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func flushErr(err error) error {
	if err != nil {
		return fmt.Errorf("%w: body: %w", ErrFileWrite, err)
	}
	return nil
}
