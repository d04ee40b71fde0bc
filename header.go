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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-huffpack/huffman"
)

// Container magic words. HUF2 persists the 256-byte canonical lengths
// table; HUF1 is the legacy layout persisting the full 256-entry u64
// frequency table. The encoder writes HUF2 only; the decoder accepts
// both.
var (
	magicV2 = [4]byte{'H', 'U', 'F', '2'}
	magicV1 = [4]byte{'H', 'U', 'F', '1'}
)

// Header sizes in bytes: magic + original size + symbol table.
const (
	headerSizeV2 = 4 + 8 + huffman.AlphabetSize
	headerSizeV1 = 4 + 8 + 8*huffman.AlphabetSize
)

// header is a decoded container header. For HUF1 the lengths are
// derived from the frequency table through the deterministic tree
// build, so both versions decode through the same code set.
type header struct {
	version      uint32
	originalSize uint64
	lengths      [huffman.AlphabetSize]uint8
}

// codedSymbols returns the number of symbols with a non-zero length.
func (h *header) codedSymbols() int {
	n := 0
	for _, l := range h.lengths {
		if l > 0 {
			n++
		}
	}
	return n
}

// singleSymbol returns the lone coded symbol, or -1.
func (h *header) singleSymbol() int {
	if h.codedSymbols() != 1 {
		return -1
	}
	for s, l := range h.lengths {
		if l > 0 {
			return s
		}
	}
	return -1
}

// writeHeader emits a HUF2 header: magic, original size (u64 LE), and
// the 256-byte lengths table, with no padding between fields.
func writeHeader(w io.Writer, originalSize uint64, lengths *[huffman.AlphabetSize]uint8) error {
	var buf [headerSizeV2]byte
	copy(buf[0:4], magicV2[:])
	binary.LittleEndian.PutUint64(buf[4:12], originalSize)
	copy(buf[12:], lengths[:])
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: header: %w", ErrFileWrite, err)
	}
	return nil
}

// parseHeader reads and validates a container header, leaving r
// positioned at the first body byte.
func parseHeader(r io.Reader) (*header, error) {
	var pre [12]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, readErr("header", err)
	}

	var magic [4]byte
	copy(magic[:], pre[0:4])
	hdr := &header{originalSize: binary.LittleEndian.Uint64(pre[4:12])}

	switch magic {
	case magicV2:
		hdr.version = 2
		if err := parseLengthsV2(r, hdr); err != nil {
			return nil, err
		}
	case magicV1:
		hdr.version = 1
		if err := parseFrequenciesV1(r, hdr); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadFormat, magic[:])
	}

	if hdr.originalSize > 0 && hdr.codedSymbols() == 0 {
		return nil, fmt.Errorf("%w: empty symbol table for %d symbols", ErrBadFormat, hdr.originalSize)
	}
	return hdr, nil
}

// parseLengthsV2 reads the 256-byte lengths table and checks it against
// the Kraft bound before any output is produced.
func parseLengthsV2(r io.Reader, hdr *header) error {
	if _, err := io.ReadFull(r, hdr.lengths[:]); err != nil {
		return readErr("lengths table", err)
	}
	if err := huffman.ValidateLengths(&hdr.lengths); err != nil {
		return fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	return nil
}

// parseFrequenciesV1 reads the legacy 2048-byte frequency table,
// verifies it sums to the original size, and derives the lengths.
func parseFrequenciesV1(r io.Reader, hdr *header) error {
	var buf [headerSizeV1 - 12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return readErr("frequency table", err)
	}

	var freqs [huffman.AlphabetSize]uint64
	var sum uint64
	for s := range freqs {
		f := binary.LittleEndian.Uint64(buf[8*s : 8*s+8])
		freqs[s] = f
		next := sum + f
		if next < sum {
			return fmt.Errorf("%w: frequency table overflows", ErrBadFormat)
		}
		sum = next
	}
	if sum != hdr.originalSize {
		return fmt.Errorf("%w: frequency sum %d does not match original size %d",
			ErrBadFormat, sum, hdr.originalSize)
	}

	lengths, err := huffman.CodeLengths(&freqs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	hdr.lengths = lengths
	return nil
}

// readErr maps header read failures: a short read is a malformed
// container, anything else is an I/O failure.
func readErr(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", ErrBadFormat, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrFileRead, what, err)
}
