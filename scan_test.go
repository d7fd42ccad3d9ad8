package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]int) {
	t.Helper()
	for rel, size := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(strings.Repeat("x", size)), 0o644))
	}
}

func scanDir(t *testing.T, root string, mutate func(*ScanOptions)) *ScanResult {
	t.Helper()
	handle, err := os.OpenRoot(root)
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	opts := ScanOptions{
		Root:       root,
		RootHandle: handle,
		Targets:    buildTempSet(nil, nil),
		Workers:    2,
	}
	if mutate != nil {
		mutate(&opts)
	}
	result, err := scanTree(context.Background(), opts)
	require.NoError(t, err)
	return result
}

func mustFind(t *testing.T, result *ScanResult, path string) Entry {
	t.Helper()
	e, ok := NewStore(result.Entries).Find(path)
	require.True(t, ok, "no entry for %s", path)
	return e
}

func TestScanBoundaryAndSubtotals(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"src/main.go":             10,
		"node_modules/pkg.js":     15,
		"node_modules/sub/dep.js": 10,
	})

	result := scanDir(t, root, nil)
	require.Empty(t, result.Errors)

	// Three entries: the temp directory is an opaque leaf, so nothing
	// beneath node_modules is reported on its own.
	require.Len(t, result.Entries, 3)
	_, ok := NewStore(result.Entries).Find(filepath.Join(root, "node_modules", "sub"))
	assert.False(t, ok)

	nm := mustFind(t, result, filepath.Join(root, "node_modules"))
	assert.Equal(t, KindTemporary, nm.Kind)
	assert.Equal(t, int64(2), nm.FileCount)
	assert.Equal(t, int64(25), nm.SizeBytes)

	src := mustFind(t, result, filepath.Join(root, "src"))
	assert.Equal(t, KindNormal, src.Kind)
	assert.Equal(t, int64(1), src.FileCount)
	assert.Equal(t, int64(10), src.SizeBytes)

	// The root folds in every child, temp directories included, even though
	// they are also reported on their own.
	rootEntry := mustFind(t, result, root)
	assert.Equal(t, KindNormal, rootEntry.Kind)
	assert.Equal(t, int64(3), rootEntry.FileCount)
	assert.Equal(t, int64(35), rootEntry.SizeBytes)
}

func TestScanTempInsideTempNotReported(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"node_modules/a.js":       5,
		"node_modules/dist/b.js":  7,
		"node_modules/dist/c.map": 3,
	})

	result := scanDir(t, root, nil)

	// dist is itself a target name, but inside node_modules it is just
	// content to be counted.
	_, ok := NewStore(result.Entries).Find(filepath.Join(root, "node_modules", "dist"))
	assert.False(t, ok)

	nm := mustFind(t, result, filepath.Join(root, "node_modules"))
	assert.Equal(t, int64(3), nm.FileCount)
	assert.Equal(t, int64(15), nm.SizeBytes)
}

func TestScanTempOnlyProjection(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"src/main.go":         10,
		"node_modules/pkg.js": 25,
	})

	full := scanDir(t, root, nil)
	filtered := scanDir(t, root, func(o *ScanOptions) { o.TempOnly = true })

	require.Len(t, filtered.Entries, 1)
	assert.Equal(t, KindTemporary, filtered.Entries[0].Kind)

	// Filtering is a projection: the surviving entry is identical to its
	// counterpart in the full result.
	want := mustFind(t, full, filepath.Join(root, "node_modules"))
	assert.Equal(t, want, filtered.Entries[0])
}

func TestScanEmptyRoot(t *testing.T) {
	root := t.TempDir()
	result := scanDir(t, root, nil)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, Entry{Path: root, Kind: KindNormal}, result.Entries[0])
}

func TestScanNilRootHandle(t *testing.T) {
	_, err := scanTree(context.Background(), ScanOptions{Root: "/nope"})
	require.Error(t, err)
}

func TestScanUnreadableSubdir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"ok/a.txt":     10,
		"locked/b.txt": 20,
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result := scanDir(t, root, nil)

	// The walk survives, the failure is recorded, and the unreadable
	// subtree contributes nothing anywhere.
	require.Len(t, result.Errors, 1)
	assert.Equal(t, locked, result.Errors[0].Path)
	assert.NotEmpty(t, result.Errors[0].Cause)

	_, ok := NewStore(result.Entries).Find(locked)
	assert.False(t, ok)

	rootEntry := mustFind(t, result, root)
	assert.Equal(t, int64(1), rootEntry.FileCount)
	assert.Equal(t, int64(10), rootEntry.SizeBytes)
}

func TestScanUnreadableTempDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"src/a.go":            10,
		"node_modules/pkg.js": 20,
	})
	nm := filepath.Join(root, "node_modules")
	require.NoError(t, os.Chmod(nm, 0o000))
	t.Cleanup(func() { _ = os.Chmod(nm, 0o755) })

	result := scanDir(t, root, nil)

	require.NotEmpty(t, result.Errors)
	_, ok := NewStore(result.Entries).Find(nm)
	assert.False(t, ok)

	rootEntry := mustFind(t, result, root)
	assert.Equal(t, int64(1), rootEntry.FileCount)
	assert.Equal(t, int64(10), rootEntry.SizeBytes)
}

func TestScanSkipDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"src/a.go":         10,
		".git/objects/x":   50,
		".git/HEAD":        5,
		"node_modules/p.j": 20,
	})

	result := scanDir(t, root, func(o *ScanOptions) {
		o.SkipDirs = map[string]struct{}{".git": {}}
	})

	_, ok := NewStore(result.Entries).Find(filepath.Join(root, ".git"))
	assert.False(t, ok)

	// Skipped means invisible: nothing under .git reaches any total.
	rootEntry := mustFind(t, result, root)
	assert.Equal(t, int64(2), rootEntry.FileCount)
	assert.Equal(t, int64(30), rootEntry.SizeBytes)
}

func TestScanDepthProjection(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"a/b/c/deep.txt": 40,
		"a/top.txt":      10,
	})

	result := scanDir(t, root, func(o *ScanOptions) { o.MaxDepth = 1 })

	paths := make([]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{root, filepath.Join(root, "a")}, paths)

	// Aggregation always runs over the full tree; the limit only trims what
	// is reported.
	a := mustFind(t, result, filepath.Join(root, "a"))
	assert.Equal(t, int64(2), a.FileCount)
	assert.Equal(t, int64(50), a.SizeBytes)
}

func TestScanOnEntryStreamsTempEntries(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"node_modules/a.js": 10,
		"sub/dist/b.js":     20,
		"sub/keep.txt":      1,
	})

	var mu sync.Mutex
	var streamed []Entry
	result := scanDir(t, root, func(o *ScanOptions) {
		o.OnEntry = func(e Entry) {
			mu.Lock()
			streamed = append(streamed, e)
			mu.Unlock()
		}
	})

	require.Len(t, streamed, 2)
	sort.Slice(streamed, func(i, j int) bool { return streamed[i].Path < streamed[j].Path })
	assert.Equal(t, filepath.Join(root, "node_modules"), streamed[0].Path)
	assert.Equal(t, filepath.Join(root, "sub", "dist"), streamed[1].Path)

	// Streamed entries match what the final result reports.
	for _, e := range streamed {
		assert.Equal(t, mustFind(t, result, e.Path), e)
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"src/a.go": 1})

	handle, err := os.OpenRoot(root)
	require.NoError(t, err)
	defer handle.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = scanTree(ctx, ScanOptions{
		Root:       root,
		RootHandle: handle,
		Targets:    buildTempSet(nil, nil),
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanProgressReported(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"a/x.txt":           1,
		"node_modules/y.js": 2,
	})

	var last ScanProgress
	scanDir(t, root, func(o *ScanOptions) {
		o.Progress = func(p ScanProgress) { last = p }
	})

	assert.GreaterOrEqual(t, last.Visited, 2)
	assert.Equal(t, 1, last.Found)
}
