package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type DeletionFailure struct {
	Path   string
	Reason string
}

// DeletionReport partitions a batch into removed and failed paths.
// TotalFreedBytes sums the sizes captured before deletion for successful
// paths only; nothing is re-measured from disk.
type DeletionReport struct {
	Successful      []string
	Failed          []DeletionFailure
	TotalFreedBytes int64
}

func (r *DeletionReport) record(path string, size int64, err error) {
	if err != nil {
		r.Failed = append(r.Failed, DeletionFailure{Path: path, Reason: err.Error()})
		return
	}
	r.Successful = append(r.Successful, path)
	r.TotalFreedBytes += size
}

func (r *DeletionReport) Summary() string {
	if len(r.Failed) > 0 {
		return fmt.Sprintf("Deleted %d item(s) (%s freed), %d failed",
			len(r.Successful), formatSize(r.TotalFreedBytes), len(r.Failed))
	}
	return fmt.Sprintf("Deleted %d item(s) (%s freed)", len(r.Successful), formatSize(r.TotalFreedBytes))
}

// isAffirmative reports whether input authorizes deletion. Only the exact
// word "yes" counts; "y", empty input, or anything else declines.
func isAffirmative(input string) bool {
	return strings.TrimSpace(input) == "yes"
}

func validateDeletePath(p string) (string, error) {
	if p == "" {
		return "", errors.New("delete: empty path")
	}
	cleaned := filepath.Clean(p)
	if cleaned == "." || cleaned == string(os.PathSeparator) {
		return "", errors.New("delete: refusing to delete root")
	}
	return cleaned, nil
}

// removePath deletes one directory tree. A path that already vanished is a
// failure, not a silent success, so the report partition stays meaningful
// (os.RemoveAll alone would return nil for a missing path).
func removePath(p string) error {
	cleaned, err := validateDeletePath(p)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(cleaned); err != nil {
		return err
	}
	return os.RemoveAll(cleaned)
}

// deleteAll removes every path, continuing past individual failures.
// Confirmation is a precondition supplied by the caller; this function does
// no prompting of its own. sizeOf provides the pre-captured size for a path
// and may be nil when freed-byte accounting is not needed.
func deleteAll(paths []string, sizeOf func(string) int64) DeletionReport {
	var report DeletionReport
	for _, p := range paths {
		var size int64
		if sizeOf != nil {
			size = sizeOf(p)
		}
		report.record(p, size, removePath(p))
	}
	return report
}
