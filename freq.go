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
	"runtime"
	"sync"

	"github.com/ZaparooProject/go-huffpack/huffman"
)

const (
	// parallelThreshold is the input size below which frequency
	// counting stays single-threaded.
	parallelThreshold = 1 << 20

	// maxFreqWorkers caps the counting fan-out.
	maxFreqWorkers = 64
)

// countFrequencies produces the frequency vector over all input bytes.
// The reduction over per-worker histograms is associative and
// commutative, so the result is identical for every worker count.
func countFrequencies(data []byte) [huffman.AlphabetSize]uint64 {
	return countFrequenciesN(data, freqWorkers(len(data)))
}

func freqWorkers(size int) int {
	if size < parallelThreshold {
		return 1
	}
	n := runtime.GOMAXPROCS(0)
	if n > maxFreqWorkers {
		n = maxFreqWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// countFrequenciesN counts over up to workers disjoint chunks. Each
// worker writes only its own histogram; the joins are the only
// synchronization.
func countFrequenciesN(data []byte, workers int) [huffman.AlphabetSize]uint64 {
	if workers <= 1 || len(data) < workers {
		var freqs [huffman.AlphabetSize]uint64
		for _, b := range data {
			freqs[b]++
		}
		return freqs
	}

	local := make([][huffman.AlphabetSize]uint64, workers)
	chunk := (len(data) + workers - 1) / workers
	var wg sync.WaitGroup
	for i := range workers {
		lo := i * chunk
		hi := min(lo+chunk, len(data))
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(hist *[huffman.AlphabetSize]uint64, part []byte) {
			defer wg.Done()
			for _, b := range part {
				hist[b]++
			}
		}(&local[i], data[lo:hi])
	}
	wg.Wait()

	var freqs [huffman.AlphabetSize]uint64
	for i := range local {
		for s, n := range local[i] {
			freqs[s] += n
		}
	}
	return freqs
}
