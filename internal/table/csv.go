package table

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var bom = []byte{0xef, 0xbb, 0xbf}

// ReadFile loads a table from disk, choosing the loader by extension.
// .csv, .tsv and .txt are read as delimited text, optionally wrapped in
// .gz or .bz2; .xlsx goes through ReadXLSX.
func ReadFile(path string, opt Options) (*Table, error) {
	inner, compression := splitCompression(path)
	switch strings.ToLower(filepath.Ext(inner)) {
	case ".xlsx":
		if compression != "" {
			return nil, fmt.Errorf("%w: compressed xlsx", ErrUnsupportedFormat)
		}
		return ReadXLSX(path, opt)
	case ".csv", ".tsv", ".txt", "":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(inner))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	r, err := decompress(compression, f)
	if err != nil {
		return nil, err
	}
	return ReadCSV(r, filepath.Base(inner), opt)
}

// ReadCSV parses delimited text into a table. name is used for display and
// delimiter sniffing.
func ReadCSV(r io.Reader, name string, opt Options) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyData
		}
		return nil, wrapCSVError(err)
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, ErrEmptyData
	}

	b := newBuilder(name, header, opt)
	maxRows := opt.MaxRows
	total := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, wrapCSVError(err)
		}
		total++
		if maxRows > 0 && total > maxRows {
			continue
		}
		if err := b.add(rec); err != nil {
			line, _ := cr.FieldPos(0)
			return nil, &ParseError{Line: line, Err: err}
		}
	}
	return b.build(total), nil
}

func wrapCSVError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("read csv: %w", err)
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

// stripBOM drops a leading UTF-8 byte order mark so it does not end up in
// the first column name.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && bytes.Equal(b, bom) {
		_, _ = br.Discard(len(bom))
	}
	return br
}

// splitCompression returns the path without a compression suffix and the
// compression type ("gzip", "bzip2" or "").
func splitCompression(path string) (string, string) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return path[:len(path)-3], "gzip"
	case strings.HasSuffix(lower, ".bz2"):
		return path[:len(path)-4], "bzip2"
	}
	return path, ""
}

func decompress(t string, r io.Reader) (io.Reader, error) {
	switch t {
	case "":
		return r, nil
	case "gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("gzip: %w", err)}
		}
		return zr, nil
	case "bzip2":
		return bzip2.NewReader(r), nil
	}
	return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, t)
}
