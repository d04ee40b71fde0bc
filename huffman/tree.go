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

// Package huffman implements the entropy-coder core of the huffpack
// container format: deterministic tree construction, canonical code
// derivation, and the LSB-first bit stream reader, writer, and decoder.
package huffman

import "container/heap"

// AlphabetSize is the number of possible byte symbols.
const AlphabetSize = 256

// maxTreeNodes bounds the build arena: one leaf per present symbol plus
// at most one internal node per merge.
const maxTreeNodes = 2 * AlphabetSize

// nilNode marks an absent child, an absent symbol, or an empty tree.
const nilNode = int32(-1)

// node is one slot of a flat tree arena. A leaf has left = right =
// nilNode and symbol in [0, 255]; an internal node has symbol = nilNode
// and valid child indices.
type node struct {
	weight uint64
	left   int32
	right  int32
	symbol int32
}

// tree is a Huffman tree stored as an index-keyed node arena.
// root is nilNode when no symbol is present.
type tree struct {
	nodes []node
	root  int32
}

// treeHeap is a min-heap of arena indices ordered by (weight ascending,
// insertion index ascending). The index tie-break is what makes the
// resulting code lengths identical across runs and platforms.
type treeHeap struct {
	nodes []node
	idx   []int32
}

func (h *treeHeap) Len() int { return len(h.idx) }

func (h *treeHeap) Less(i, j int) bool {
	a, b := h.idx[i], h.idx[j]
	if h.nodes[a].weight != h.nodes[b].weight {
		return h.nodes[a].weight < h.nodes[b].weight
	}
	return a < b
}

func (h *treeHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *treeHeap) Push(x any) { h.idx = append(h.idx, x.(int32)) }

func (h *treeHeap) Pop() any {
	n := len(h.idx)
	item := h.idx[n-1]
	h.idx = h.idx[:n-1]
	return item
}

// buildTree constructs the Huffman tree for the given frequency vector.
// Leaves are inserted in ascending symbol order, so insertion indices
// (and therefore tie-breaking) are fully determined by the input.
func buildTree(freqs *[AlphabetSize]uint64) tree {
	nodes := make([]node, 0, maxTreeNodes)
	for s, f := range freqs {
		if f == 0 {
			continue
		}
		nodes = append(nodes, node{
			weight: f,
			left:   nilNode,
			right:  nilNode,
			symbol: int32(s), //nolint:gosec // s is bounded by the 256-entry array
		})
	}
	if len(nodes) == 0 {
		return tree{root: nilNode}
	}

	h := &treeHeap{nodes: nodes, idx: make([]int32, len(nodes))}
	for i := range h.idx {
		h.idx[i] = int32(i) //nolint:gosec // bounded by maxTreeNodes
	}
	heap.Init(h)

	for h.Len() > 1 {
		a := heap.Pop(h).(int32)
		b := heap.Pop(h).(int32)
		h.nodes = append(h.nodes, node{
			weight: h.nodes[a].weight + h.nodes[b].weight,
			left:   a,
			right:  b,
			symbol: nilNode,
		})
		heap.Push(h, int32(len(h.nodes)-1)) //nolint:gosec // bounded by maxTreeNodes
	}

	return tree{nodes: h.nodes, root: h.idx[0]}
}
