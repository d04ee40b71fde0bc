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
	"math"
	"time"

	"github.com/ZaparooProject/go-huffpack/huffman"
)

// Stats reports size, timing, and code metrics for one encode or
// decode call. Decode derives the symbol distribution from the decoded
// output, so both directions fill the same fields.
type Stats struct {
	// OriginalSize is the number of symbol bytes.
	OriginalSize uint64

	// CompressedSize is the container size in bytes, header included.
	CompressedSize uint64

	// Elapsed is the wall time of the call.
	Elapsed time.Duration

	// Entropy is the Shannon entropy of the input distribution in
	// bits per symbol, the lower bound on AvgCodeLen.
	Entropy float64

	// AvgCodeLen is the frequency-weighted mean code length in bits
	// per symbol.
	AvgCodeLen float64

	// Codes is the canonical code table, indexed by symbol.
	Codes [huffman.AlphabetSize]huffman.Code
}

// fill computes the distribution metrics from a frequency vector and
// the assigned lengths.
func (st *Stats) fill(freqs *[huffman.AlphabetSize]uint64, lengths *[huffman.AlphabetSize]uint8) {
	var total uint64
	for _, f := range freqs {
		total += f
	}
	st.Entropy = 0
	st.AvgCodeLen = 0
	if total == 0 {
		return
	}
	for s, f := range freqs {
		if f == 0 {
			continue
		}
		p := float64(f) / float64(total)
		st.Entropy -= p * math.Log2(p)
		st.AvgCodeLen += p * float64(lengths[s])
	}
}
