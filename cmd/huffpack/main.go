// Command huffpack compresses and decompresses files with a static
// Huffman entropy coder.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	huffpack "github.com/ZaparooProject/go-huffpack"
)

var (
	compress   = flag.Bool("c", false, "compress input to output")
	decompress = flag.Bool("d", false, "decompress input to output")
	inputFile  = flag.String("i", "", "input file path (required)")
	outputFile = flag.String("o", "", "output file path (required)")
	showStats  = flag.Bool("stats", false, "print size, entropy and timing statistics")
	jsonOutput = flag.Bool("json", false, "print statistics as JSON")
	compare    = flag.Bool("compare", false, "also report DEFLATE, zstd and xz ratios (compress only)")
	version    = flag.Bool("version", false, "print version and exit")
)

const appVersion = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -c|-d -i <input> -o <output> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Compresses files with a static Huffman entropy coder.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -c -i data.bin -o data.hp -stats\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -d -i data.hp -o data.bin\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c -i data.bin -o data.hp -compare -json\n", os.Args[0])
	}
	flag.Parse()
	os.Exit(run(os.Stdout, os.Stderr))
}

// run executes the selected mode and returns the process exit code.
func run(stdout, stderr io.Writer) int {
	if *version {
		fmt.Fprintf(stdout, "huffpack version %s\n", appVersion)
		return 0
	}

	if *compress == *decompress {
		fmt.Fprintf(stderr, "Error: exactly one of -c or -d is required\n")
		flag.Usage()
		return 1
	}
	if *inputFile == "" || *outputFile == "" {
		fmt.Fprintf(stderr, "Error: input (-i) and output (-o) are required\n")
		flag.Usage()
		return 1
	}

	var stats huffpack.Stats
	var err error
	if *compress {
		err = huffpack.Encode(*inputFile, *outputFile, &stats)
	} else {
		err = huffpack.Decode(*inputFile, *outputFile, &stats)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	report := buildReport(&stats)
	if *compress && *compare {
		if err := addComparison(report); err != nil {
			fmt.Fprintf(stderr, "Error comparing codecs: %v\n", err)
			return 1
		}
	}

	if *jsonOutput {
		return outputJSON(stdout, stderr, report)
	}
	if *showStats || *compare {
		outputText(stdout, report)
	}
	return 0
}

// report is the printable result of one run.
type report struct {
	OriginalSize   uint64  `json:"original_size"`
	CompressedSize uint64  `json:"compressed_size"`
	Ratio          float64 `json:"ratio"`
	ElapsedMs      float64 `json:"elapsed_ms"`
	Entropy        float64 `json:"entropy_bits"`
	AvgCodeLen     float64 `json:"avg_code_len_bits"`

	// Comparison ratios, present with -compare.
	FlateRatio float64 `json:"flate_ratio,omitempty"`
	ZstdRatio  float64 `json:"zstd_ratio,omitempty"`
	XzRatio    float64 `json:"xz_ratio,omitempty"`
}

func buildReport(stats *huffpack.Stats) *report {
	r := &report{
		OriginalSize:   stats.OriginalSize,
		CompressedSize: stats.CompressedSize,
		ElapsedMs:      float64(stats.Elapsed.Microseconds()) / 1000,
		Entropy:        stats.Entropy,
		AvgCodeLen:     stats.AvgCodeLen,
	}
	if stats.OriginalSize > 0 {
		r.Ratio = float64(stats.CompressedSize) / float64(stats.OriginalSize)
	}
	return r
}

// addComparison compresses the input with the reference codecs and
// records their ratios.
func addComparison(r *report) error {
	data, err := os.ReadFile(*inputFile)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	size := float64(len(data))

	n, err := flateSize(data)
	if err != nil {
		return err
	}
	r.FlateRatio = float64(n) / size

	n, err = zstdSize(data)
	if err != nil {
		return err
	}
	r.ZstdRatio = float64(n) / size

	n, err = xzSize(data)
	if err != nil {
		return err
	}
	r.XzRatio = float64(n) / size
	return nil
}

func flateSize(data []byte) (int, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return 0, fmt.Errorf("flate: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return 0, fmt.Errorf("flate: %w", err)
	}
	if err := fw.Close(); err != nil {
		return 0, fmt.Errorf("flate: %w", err)
	}
	return buf.Len(), nil
}

func zstdSize(data []byte) (int, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return 0, fmt.Errorf("zstd: %w", err)
	}
	defer func() { _ = enc.Close() }()
	return len(enc.EncodeAll(data, nil)), nil
}

func xzSize(data []byte) (int, error) {
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		return 0, fmt.Errorf("xz: %w", err)
	}
	if _, err := xw.Write(data); err != nil {
		return 0, fmt.Errorf("xz: %w", err)
	}
	if err := xw.Close(); err != nil {
		return 0, fmt.Errorf("xz: %w", err)
	}
	return buf.Len(), nil
}

func outputJSON(stdout, stderr io.Writer, r *report) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		fmt.Fprintf(stderr, "Error encoding JSON: %v\n", err)
		return 1
	}
	return 0
}

func outputText(stdout io.Writer, r *report) {
	fmt.Fprintf(stdout, "Original size: %d\n", r.OriginalSize)
	fmt.Fprintf(stdout, "Compressed size: %d\n", r.CompressedSize)
	fmt.Fprintf(stdout, "Ratio: %.4f\n", r.Ratio)
	fmt.Fprintf(stdout, "Entropy: %.4f bits/symbol\n", r.Entropy)
	fmt.Fprintf(stdout, "Avg code length: %.4f bits/symbol\n", r.AvgCodeLen)
	fmt.Fprintf(stdout, "Elapsed: %.3f ms\n", r.ElapsedMs)
	if r.FlateRatio > 0 {
		fmt.Fprintf(stdout, "\nReference codecs:\n")
		fmt.Fprintf(stdout, "  flate: %.4f\n", r.FlateRatio)
		fmt.Fprintf(stdout, "  zstd:  %.4f\n", r.ZstdRatio)
		fmt.Fprintf(stdout, "  xz:    %.4f\n", r.XzRatio)
	}
}
