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
	"errors"
	"fmt"
	"math/bits"
)

// MaxCodeBits is the largest code length the format accepts. Reaching
// depth 65 needs Fibonacci-profile frequencies summing past ~5e13
// symbols, beyond what the full-file encoder can hold in memory, so a
// single 64-bit word always suffices for a stored pattern.
const MaxCodeBits = 64

// Errors reported by the entropy-coder core.
var (
	// ErrInvalidLengths indicates a lengths table that cannot describe
	// a prefix code (length above MaxCodeBits or Kraft violation).
	ErrInvalidLengths = errors.New("invalid code lengths")

	// ErrCorruptStream indicates a bit stream that does not decode
	// under the reconstructed code (dead prefix or premature end).
	ErrCorruptStream = errors.New("corrupt bit stream")

	// ErrTooDeep indicates a tree whose depth exceeds MaxCodeBits.
	ErrTooDeep = errors.New("code length exceeds maximum")
)

// Code is one symbol's bit pattern in stream order: bit i of Pattern is
// the i-th bit written to (and read from) the stream. This is the
// bit-reversal of the canonical MSB-first code value.
type Code struct {
	Pattern uint64
	Bits    uint8
}

// CodeLengths derives per-symbol code lengths from a frequency vector
// using the deterministic tree build. Absent symbols get length 0; a
// lone present symbol gets length 1 by convention.
func CodeLengths(freqs *[AlphabetSize]uint64) ([AlphabetSize]uint8, error) {
	return buildTree(freqs).codeLengths()
}

// codeLengths records the depth of every leaf.
func (t tree) codeLengths() ([AlphabetSize]uint8, error) {
	var lengths [AlphabetSize]uint8
	if t.root == nilNode {
		return lengths, nil
	}
	if t.nodes[t.root].symbol != nilNode {
		// Single-leaf tree: depth 0 by traversal, 1 by convention so
		// the stream stays well defined.
		lengths[t.nodes[t.root].symbol] = 1
		return lengths, nil
	}

	type frame struct {
		n     int32
		depth uint32
	}
	stack := make([]frame, 0, MaxCodeBits+1)
	stack = append(stack, frame{t.root, 0})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := t.nodes[f.n]
		if nd.symbol != nilNode {
			if f.depth > MaxCodeBits {
				return lengths, ErrTooDeep
			}
			lengths[nd.symbol] = uint8(f.depth)
			continue
		}
		stack = append(stack, frame{nd.left, f.depth + 1}, frame{nd.right, f.depth + 1})
	}
	return lengths, nil
}

// ValidateLengths checks that a lengths table can describe a prefix
// code: every length within MaxCodeBits and the Kraft sum at most 1.
func ValidateLengths(lengths *[AlphabetSize]uint8) error {
	var histo [MaxCodeBits + 1]int
	for s, l := range lengths {
		if l > MaxCodeBits {
			return fmt.Errorf("%w: symbol 0x%02x has length %d", ErrInvalidLengths, s, l)
		}
		histo[l]++
	}

	// Kraft accounting via the shift-and-subtract form: at each level
	// the available leaf slots double, then assigned codes are taken.
	// Going negative means the lengths over-subscribe the code space.
	// left is clamped well above AlphabetSize, past which the at most
	// 256 remaining codes can never drive it negative.
	left := 1
	for l := 1; l <= MaxCodeBits; l++ {
		left <<= 1
		if left > 1<<20 {
			return nil
		}
		left -= histo[l]
		if left < 0 {
			return fmt.Errorf("%w: Kraft inequality violated", ErrInvalidLengths)
		}
	}
	return nil
}

// CanonicalCodes assigns canonical codes from lengths alone. Symbols
// are ordered by (length ascending, symbol ascending); the first code
// of each length follows the next_code recurrence. The returned
// patterns are bit-reversed into stream order.
func CanonicalCodes(lengths *[AlphabetSize]uint8) ([AlphabetSize]Code, error) {
	var codes [AlphabetSize]Code

	var blCount [MaxCodeBits + 1]uint64
	maxLen := 0
	for s, l := range lengths {
		if l > MaxCodeBits {
			return codes, fmt.Errorf("%w: symbol 0x%02x has length %d", ErrInvalidLengths, s, l)
		}
		if l == 0 {
			continue
		}
		blCount[l]++
		if int(l) > maxLen {
			maxLen = int(l)
		}
	}

	// blCount[0] stays zero (absent symbols were skipped), so the
	// recurrence seeds length 1 at code 0.
	var nextCode [MaxCodeBits + 1]uint64
	code := uint64(0)
	for l := 1; l <= maxLen; l++ {
		code = (code + blCount[l-1]) << 1
		nextCode[l] = code
	}

	for s, l := range lengths {
		if l == 0 {
			continue
		}
		c := nextCode[l]
		nextCode[l]++
		if l < MaxCodeBits && c>>l != 0 {
			return codes, fmt.Errorf("%w: code space exhausted at length %d", ErrInvalidLengths, l)
		}
		codes[s] = Code{
			Pattern: bits.Reverse64(c) >> (64 - uint(l)),
			Bits:    l,
		}
	}
	return codes, nil
}
