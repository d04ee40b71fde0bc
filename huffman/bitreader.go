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

package huffman

import (
	"bufio"
	"errors"
	"io"
)

// Reader refills a 64-bit accumulator from a buffered byte stream.
// Bits are consumed from the LSB end, matching the Writer's emission
// order.
type Reader struct {
	r   *bufio.Reader
	acc uint64
	cnt uint32
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, stagingSize)
	}
	return &Reader{r: br}
}

// Ensure loads bytes until at least n bits are buffered or the stream
// is exhausted, and returns the buffered bit count. n must be at most
// 57; callers needing more peek in two steps.
func (br *Reader) Ensure(n uint32) (uint32, error) {
	for br.cnt < n && br.cnt <= 56 {
		b, err := br.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return br.cnt, nil
			}
			return br.cnt, err
		}
		br.acc |= uint64(b) << br.cnt
		br.cnt += 8
	}
	return br.cnt, nil
}

// Peek returns the low n bits of the accumulator, n < 64. Bits beyond
// the buffered count read as zero.
func (br *Reader) Peek(n uint32) uint64 {
	return br.acc & (1<<n - 1)
}

// Consume discards n buffered bits. n must not exceed Bits().
func (br *Reader) Consume(n uint32) {
	br.acc >>= n
	br.cnt -= n
}

// Bits returns the number of buffered bits.
func (br *Reader) Bits() uint32 {
	return br.cnt
}
