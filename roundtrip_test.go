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
	"bytes"
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-huffpack/huffman"
)

// roundTrip encodes data, verifies the container invariants, decodes
// it back, and returns the container bytes.
func roundTrip(t *testing.T, data []byte) []byte {
	t.Helper()

	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	require.NoError(t, afero.WriteFile(fs, "in.bin", data, 0o644))

	var stats Stats
	require.NoError(t, c.Encode("in.bin", "out.hp", &stats))

	container, err := afero.ReadFile(fs, "out.hp")
	require.NoError(t, err)
	require.Equal(t, uint64(len(container)), stats.CompressedSize)
	require.Equal(t, uint64(len(data)), stats.OriginalSize)

	// Header well-formedness: magic, original size, lengths table, in
	// that order, little-endian, no padding.
	require.GreaterOrEqual(t, len(container), headerSizeV2)
	require.Equal(t, []byte("HUF2"), container[0:4])
	var size uint64
	for i := 0; i < 8; i++ {
		size |= uint64(container[4+i]) << (8 * i)
	}
	require.Equal(t, uint64(len(data)), size)

	// Bit-stream length invariant: the body is exactly the packed
	// code bits, rounded up to bytes.
	freqs := countFrequenciesN(data, 1)
	var totalBits uint64
	for s, f := range freqs {
		totalBits += f * uint64(container[12+s])
	}
	require.Equal(t, int((totalBits+7)/8), len(container)-headerSizeV2, "body length")

	require.NoError(t, c.Decode("out.hp", "back.bin", nil))
	back, err := afero.ReadFile(fs, "back.bin")
	require.NoError(t, err)
	if len(data) == 0 {
		require.Empty(t, back)
	} else {
		require.Equal(t, data, back)
	}

	return container
}

func TestRoundTripEmpty(t *testing.T) {
	t.Parallel()

	container := roundTrip(t, nil)
	require.Len(t, container, headerSizeV2)
	require.Equal(t, make([]byte, 256), container[12:], "lengths table must be all zero")
}

func TestRoundTripSingleByte(t *testing.T) {
	t.Parallel()

	container := roundTrip(t, []byte{0x41})
	require.Len(t, container, headerSizeV2+1)
	require.Equal(t, uint8(1), container[12+0x41], "single symbol gets a 1-bit code")
	require.Equal(t, byte(0), container[headerSizeV2]&1, "the emitted code bit is 0")
}

func TestRoundTripTwoSymbolAlternating(t *testing.T) {
	t.Parallel()

	container := roundTrip(t, []byte{0x00, 0x01, 0x00, 0x01})
	require.Len(t, container, headerSizeV2+1)
	require.Equal(t, byte(0x0A), container[headerSizeV2], "bits 0,1,0,1 pack LSB-first")
}

func TestRoundTripSkewed(t *testing.T) {
	t.Parallel()

	container := roundTrip(t, []byte("aaaaaaaab"))
	require.Equal(t, uint8(1), container[12+'a'])
	require.Equal(t, uint8(1), container[12+'b'])
	require.Len(t, container, headerSizeV2+2, "9 bits round up to 2 body bytes")
}

func TestRoundTripAllSymbolsUniform(t *testing.T) {
	t.Parallel()

	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	container := roundTrip(t, data)
	for s := range 256 {
		require.Equal(t, uint8(8), container[12+s])
	}
	require.Len(t, container, headerSizeV2+256)
}

func TestRoundTripLongSingleSymbolRun(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{0xFF}, 1_000_000)
	container := roundTrip(t, data)
	require.Len(t, container, headerSizeV2+125_000, "one bit per symbol")
}

func TestRoundTripRandom(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(99)) //nolint:gosec // deterministic test data
	for _, size := range []int{1, 2, 3, 100, 4096, 65537, 1 << 20} {
		data := make([]byte, size)
		// Alternate between flat and skewed distributions.
		if size%2 == 0 {
			for i := range data {
				data[i] = byte(rng.Intn(256))
			}
		} else {
			for i := range data {
				data[i] = byte(rng.Intn(7))
			}
		}
		roundTrip(t, data)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(5)) //nolint:gosec // deterministic test data
	data := make([]byte, 200_000)
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}

	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	require.NoError(t, afero.WriteFile(fs, "in.bin", data, 0o644))
	require.NoError(t, c.Encode("in.bin", "a.hp", nil))
	require.NoError(t, c.Encode("in.bin", "b.hp", nil))

	a, err := afero.ReadFile(fs, "a.hp")
	require.NoError(t, err)
	b, err := afero.ReadFile(fs, "b.hp")
	require.NoError(t, err)
	require.Equal(t, a, b, "encode must be a pure function of the input")
}

func TestStatsEntropyBound(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	data := []byte("abracadabra abracadabra abracadabra")
	require.NoError(t, afero.WriteFile(fs, "in.bin", data, 0o644))

	var enc Stats
	require.NoError(t, c.Encode("in.bin", "out.hp", &enc))
	require.Greater(t, enc.Entropy, 0.0)
	require.GreaterOrEqual(t, enc.AvgCodeLen, enc.Entropy, "entropy lower-bounds the code length")

	var dec Stats
	require.NoError(t, c.Decode("out.hp", "back.bin", &dec))
	require.Equal(t, enc.OriginalSize, dec.OriginalSize)
	require.InDelta(t, enc.Entropy, dec.Entropy, 1e-12)
	require.InDelta(t, enc.AvgCodeLen, dec.AvgCodeLen, 1e-12)
	require.Equal(t, enc.Codes, dec.Codes)
}

func TestStatsPowerOfTwoDistribution(t *testing.T) {
	t.Parallel()

	// Four equiprobable symbols: entropy is exactly 2 bits and the
	// code meets it.
	data := bytes.Repeat([]byte{0, 1, 2, 3}, 64)
	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	require.NoError(t, afero.WriteFile(fs, "in.bin", data, 0o644))

	var stats Stats
	require.NoError(t, c.Encode("in.bin", "out.hp", &stats))
	require.InDelta(t, 2.0, stats.Entropy, 1e-12)
	require.InDelta(t, 2.0, stats.AvgCodeLen, 1e-12)
}

func TestEncodeMissingInput(t *testing.T) {
	t.Parallel()

	c := NewWithFs(afero.NewMemMapFs())
	err := c.Encode("missing.bin", "out.hp", nil)
	require.ErrorIs(t, err, ErrFileOpen)
}

func TestDecodeMissingInput(t *testing.T) {
	t.Parallel()

	c := NewWithFs(afero.NewMemMapFs())
	err := c.Decode("missing.hp", "out.bin", nil)
	require.ErrorIs(t, err, ErrFileOpen)
}

// TestTamperedBody flips every body byte in turn: each decode must
// either fail as BadFormat or produce some output, and never panic.
func TestTamperedBody(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("entropy coding keeps the receipts "), 8)
	container := roundTrip(t, data)
	require.Greater(t, len(container)-headerSizeV2, 2)

	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	for i := headerSizeV2; i < len(container); i++ {
		tampered := append([]byte(nil), container...)
		tampered[i] ^= 0x55
		require.NoError(t, afero.WriteFile(fs, "t.hp", tampered, 0o644))

		err := c.Decode("t.hp", "t.bin", nil)
		if err != nil {
			require.ErrorIs(t, err, ErrBadFormat, "body byte %d", i)
			continue
		}
		out, rerr := afero.ReadFile(fs, "t.bin")
		require.NoError(t, rerr)
		require.Len(t, out, len(data), "successful decode must honor original_size")
	}
}

func FuzzDecode(f *testing.F) {
	valid := func(data []byte) []byte {
		fs := afero.NewMemMapFs()
		c := NewWithFs(fs)
		if err := afero.WriteFile(fs, "in.bin", data, 0o644); err != nil {
			f.Fatal(err)
		}
		if err := c.Encode("in.bin", "out.hp", nil); err != nil {
			f.Fatal(err)
		}
		container, err := afero.ReadFile(fs, "out.hp")
		if err != nil {
			f.Fatal(err)
		}
		return container
	}

	f.Add(valid(nil))
	f.Add(valid([]byte("hello huffman")))
	f.Add(valid(bytes.Repeat([]byte{7}, 300)))
	f.Add([]byte("HUF2"))
	f.Add([]byte("HUF1garbage"))
	f.Add(bytes.Repeat([]byte{0xFF}, 300))

	f.Fuzz(func(t *testing.T, container []byte) {
		fs := afero.NewMemMapFs()
		c := NewWithFs(fs)
		if err := afero.WriteFile(fs, "in.hp", container, 0o644); err != nil {
			t.Fatal(err)
		}
		// Arbitrary input must never crash the decoder.
		_ = c.Decode("in.hp", "out.bin", nil)
	})
}

func BenchmarkEncode(b *testing.B) {
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic benchmark data
	data := make([]byte, 1<<20)
	for i := range data {
		data[i] = byte(rng.Intn(64))
	}
	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	if err := afero.WriteFile(fs, "in.bin", data, 0o644); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Encode("in.bin", "out.hp", nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	rng := rand.New(rand.NewSource(2)) //nolint:gosec // deterministic benchmark data
	data := make([]byte, 1<<20)
	for i := range data {
		data[i] = byte(rng.Intn(64))
	}
	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	if err := afero.WriteFile(fs, "in.bin", data, 0o644); err != nil {
		b.Fatal(err)
	}
	if err := c.Encode("in.bin", "out.hp", nil); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Decode("out.hp", "back.bin", nil); err != nil {
			b.Fatal(err)
		}
	}
}

// TestDecodeMapsCoreErrors double-checks the taxonomy wrapping: a dead
// prefix inside the body surfaces as ErrBadFormat wrapping the core
// stream error.
func TestDecodeMapsCoreErrors(t *testing.T) {
	t.Parallel()

	var lengths [huffman.AlphabetSize]uint8
	lengths[0] = 2
	lengths[1] = 2
	container := buildContainerV2(8, &lengths, []byte{0xFF})

	fs := afero.NewMemMapFs()
	c := NewWithFs(fs)
	require.NoError(t, afero.WriteFile(fs, "bad.hp", container, 0o644))

	err := c.Decode("bad.hp", "out.bin", nil)
	require.ErrorIs(t, err, ErrBadFormat)
	require.ErrorIs(t, err, huffman.ErrCorruptStream)
}
