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

import "fmt"

const (
	// TableBits is the width of the first-level decode lookup. A
	// TableBits-wide peek resolves every code up to that length in a
	// single table hit.
	TableBits = 12

	tableSize = 1 << TableBits
)

// tableEntry resolves one TableBits-wide stream prefix. A complete code
// of length <= TableBits yields symbol >= 0 and its length in bits;
// otherwise symbol is -1 and next points at the tree node reached after
// consuming TableBits bits (or -1 for a prefix no code can produce).
type tableEntry struct {
	symbol int16
	next   int16
	bits   uint8
}

// Decoder decodes canonical codes via the first-level table with an
// explicit tree walk for longer codes. It is built per decode call and
// holds no stream state.
type Decoder struct {
	table []tableEntry
	nodes []node
}

// NewDecoder reconstructs the code tree and lookup table from a lengths
// table with at least two coded symbols. Callers handle the empty and
// single-symbol tables before constructing a Decoder.
func NewDecoder(lengths *[AlphabetSize]uint8) (*Decoder, error) {
	coded := 0
	for _, l := range lengths {
		if l > 0 {
			coded++
		}
	}
	if coded < 2 {
		return nil, fmt.Errorf("%w: %d coded symbols", ErrInvalidLengths, coded)
	}
	if err := ValidateLengths(lengths); err != nil {
		return nil, err
	}
	codes, err := CanonicalCodes(lengths)
	if err != nil {
		return nil, err
	}

	d := &Decoder{nodes: make([]node, 1, maxTreeNodes)}
	d.nodes[0] = node{left: nilNode, right: nilNode, symbol: nilNode}
	for s := range AlphabetSize {
		if lengths[s] == 0 {
			continue
		}
		if err := d.insert(codes[s], int32(s)); err != nil { //nolint:gosec // s < 256
			return nil, err
		}
	}

	d.buildTable()
	return d, nil
}

// insert walks the stored pattern from bit 0, creating missing nodes,
// and marks the terminal node with the symbol.
func (d *Decoder) insert(c Code, symbol int32) error {
	cur := int32(0)
	for i := uint8(0); i < c.Bits; i++ {
		if d.nodes[cur].symbol != nilNode {
			return fmt.Errorf("%w: code prefix collision", ErrInvalidLengths)
		}
		next := d.nodes[cur].left
		if c.Pattern>>i&1 == 1 {
			next = d.nodes[cur].right
		}
		if next == nilNode {
			d.nodes = append(d.nodes, node{left: nilNode, right: nilNode, symbol: nilNode})
			next = int32(len(d.nodes) - 1) //nolint:gosec // bounded by total code bits
			if c.Pattern>>i&1 == 1 {
				d.nodes[cur].right = next
			} else {
				d.nodes[cur].left = next
			}
		}
		cur = next
	}
	if d.nodes[cur].left != nilNode || d.nodes[cur].right != nilNode || d.nodes[cur].symbol != nilNode {
		return fmt.Errorf("%w: code prefix collision", ErrInvalidLengths)
	}
	d.nodes[cur].symbol = symbol
	return nil
}

// buildTable simulates a TableBits-deep walk for every possible prefix,
// choosing bits from the LSB end to match the Reader's consumption
// order.
func (d *Decoder) buildTable() {
	d.table = make([]tableEntry, tableSize)
	for i := range d.table {
		cur := int32(0)
		entry := tableEntry{symbol: -1, next: -1, bits: TableBits}
		for depth := uint32(0); ; depth++ {
			nd := d.nodes[cur]
			if nd.symbol != nilNode {
				entry = tableEntry{symbol: int16(nd.symbol), next: -1, bits: uint8(depth)} //nolint:gosec // symbol < 256, depth <= TableBits
				break
			}
			if depth == TableBits {
				entry.next = int16(cur) //nolint:gosec // node count is bounded by total code bits (< 1<<14)
				break
			}
			next := nd.left
			if i>>depth&1 == 1 {
				next = nd.right
			}
			if next == nilNode {
				// Dead prefix: no valid stream produces it, so the
				// sentinel entry fails decoding as corruption.
				break
			}
			cur = next
		}
		d.table[i] = entry
	}
}

// Decode fills dst with decoded symbols from br. It fails with
// ErrCorruptStream when the stream ends before dst is full or reaches a
// prefix outside the code.
func (d *Decoder) Decode(br *Reader, dst []byte) error {
	for n := range dst {
		avail, err := br.Ensure(TableBits)
		if err != nil {
			return err
		}
		e := d.table[br.Peek(TableBits)]
		if e.symbol >= 0 {
			if uint32(e.bits) > avail {
				return fmt.Errorf("%w: truncated stream", ErrCorruptStream)
			}
			dst[n] = byte(e.symbol)
			br.Consume(uint32(e.bits))
			continue
		}
		if e.next < 0 || avail < TableBits {
			return fmt.Errorf("%w: no code for prefix", ErrCorruptStream)
		}
		br.Consume(TableBits)

		// Slow path: the code is longer than the table; walk the tree
		// bit by bit from where the table left off.
		cur := int32(e.next)
		for {
			nd := d.nodes[cur]
			if nd.symbol != nilNode {
				dst[n] = byte(nd.symbol)
				break
			}
			if _, err := br.Ensure(1); err != nil {
				return err
			}
			if br.Bits() == 0 {
				return fmt.Errorf("%w: truncated stream", ErrCorruptStream)
			}
			bit := br.Peek(1)
			br.Consume(1)
			if bit == 0 {
				cur = nd.left
			} else {
				cur = nd.right
			}
			if cur == nilNode {
				return fmt.Errorf("%w: no code for prefix", ErrCorruptStream)
			}
		}
	}
	return nil
}
