package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// The interchange contract: four named columns, integer sizes, and a type
// token of exactly "temp" or "normal". Extra columns are tolerated on read
// and ignored.
var csvColumns = [...]string{"path", "files", "size_bytes", "type"}

func writeCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns[:]); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Path,
			strconv.FormatInt(e.FileCount, 10),
			strconv.FormatInt(e.SizeBytes, 10),
			e.Kind.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCSVFile(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	if err := writeCSV(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	return f.Close()
}

// readCSV parses an entry set. Any malformed row fails the whole load with
// the offending line named; nothing partial is ever returned.
func readCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	width := 0
	for _, name := range csvColumns {
		idx, ok := col[name]
		if !ok {
			return nil, fmt.Errorf("csv: missing required column %q", name)
		}
		if idx+1 > width {
			width = idx + 1
		}
	}

	var entries []Entry
	seen := make(map[string]struct{})
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		if len(record) < width {
			return nil, fmt.Errorf("csv: line %d: expected %d columns, found %d", line, width, len(record))
		}

		path := record[col["path"]]
		if path == "" {
			return nil, fmt.Errorf("csv: line %d: empty path", line)
		}
		if _, dup := seen[path]; dup {
			return nil, fmt.Errorf("csv: line %d: duplicate path %q", line, path)
		}
		seen[path] = struct{}{}

		files, err := parseCount(record[col["files"]])
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: invalid file count %q: %w", line, record[col["files"]], err)
		}
		size, err := parseCount(record[col["size_bytes"]])
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: invalid size %q: %w", line, record[col["size_bytes"]], err)
		}
		kind, err := parseKind(record[col["type"]])
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}

		entries = append(entries, Entry{Path: path, FileCount: files, SizeBytes: size, Kind: kind})
	}

	return entries, nil
}

func readCSVFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	defer f.Close()
	entries, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func parseCount(s string) (int64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 63)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}
