package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

type ScanOptions struct {
	Root       string // absolute path of the scan root
	RootHandle *os.Root
	Targets    map[string]struct{} // names treated as reclaimable
	SkipDirs   map[string]struct{} // names excluded from the walk entirely
	MaxDepth   int                 // deepest reported level, 0 = unlimited
	TempOnly   bool
	Workers    int // bounded pool for temp subtree sizing, 0 = NumCPU

	// Progress, if set, is invoked (throttled) from the scanning goroutine.
	Progress func(ScanProgress)
	// OnEntry, if set, receives each temporary entry as soon as its subtree
	// total is final. Called from worker goroutines.
	OnEntry func(Entry)
}

type ScanProgress struct {
	Visited int
	Found   int
}

// ScanError records one inaccessible path. Non-fatal: the walk continues
// and the affected subtree simply contributes nothing to any total.
type ScanError struct {
	Path  string
	Cause string
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Cause)
}

type ScanResult struct {
	Entries []Entry
	Errors  []ScanError
}

// dirNode is one slot in the aggregation arena. files/bytes hold direct
// contents for normal directories and the full recursive total for
// temporary ones; cumFiles/cumBytes are filled by the bottom-up pass.
type dirNode struct {
	rel      string // slash-separated, "." for the root
	depth    int
	temp     bool
	failed   bool // unreadable, excluded from entries and from parent totals
	files    int64
	bytes    int64
	cumFiles int64
	cumBytes int64
	children []*dirNode
}

// scanTree walks the tree under opts.RootHandle and aggregates per-directory
// totals. Temporary directories are opaque leaves: their contents are summed
// in parallel but never re-classified or reported individually. Normal
// directories fold every child's total into their own, so an ancestor's
// numbers subsume the temporary entries reported beneath it.
//
// Only an unreadable root is fatal. Every other inaccessible path turns into
// a ScanError and is left out of all totals.
func scanTree(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	if opts.RootHandle == nil {
		return nil, errors.New("scan: root handle is nil")
	}
	rootFS := opts.RootHandle.FS()

	var (
		scanErrs []ScanError
		errMu    sync.Mutex
		visited  int
		found    int
		last     time.Time
	)
	report := func(force bool) {
		if opts.Progress == nil {
			return
		}
		if force || time.Since(last) > 200*time.Millisecond {
			opts.Progress(ScanProgress{Visited: visited, Found: found})
			last = time.Now()
		}
	}

	root := &dirNode{rel: "."}
	nodes := []*dirNode{root}
	var tempNodes []*dirNode

	// Discovery: explicit work queue instead of call-stack recursion, so
	// arbitrarily deep trees stay cheap and the arena is easy to share with
	// the sizing workers below.
	queue := []*dirNode{root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node := queue[0]
		queue = queue[1:]
		visited++
		report(false)

		dirents, err := fs.ReadDir(rootFS, node.rel)
		if err != nil {
			if node == root {
				return nil, fmt.Errorf("scan %s: %w", opts.Root, err)
			}
			node.failed = true
			scanErrs = append(scanErrs, ScanError{Path: joinRoot(opts.Root, node.rel), Cause: err.Error()})
			continue
		}

		for _, ent := range dirents {
			if !ent.IsDir() {
				// Symlinks land here too; they are never followed, their
				// own link size is what counts.
				info, infoErr := ent.Info()
				if infoErr != nil {
					scanErrs = append(scanErrs, ScanError{
						Path:  joinRoot(opts.Root, path.Join(node.rel, ent.Name())),
						Cause: infoErr.Error(),
					})
					continue
				}
				node.files++
				node.bytes += info.Size()
				continue
			}

			name := ent.Name()
			if _, skip := opts.SkipDirs[name]; skip {
				continue
			}
			child := &dirNode{rel: path.Join(node.rel, name), depth: node.depth + 1}
			node.children = append(node.children, child)
			nodes = append(nodes, child)
			if _, isTemp := opts.Targets[name]; isTemp {
				child.temp = true
				tempNodes = append(tempNodes, child)
				found++
				report(true)
				continue
			}
			queue = append(queue, child)
		}
	}

	// Sibling temp subtrees are independent; sum them on a bounded pool.
	// Summation is commutative, so worker order is unobservable.
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, tn := range tempNodes {
		g.Go(func() error {
			stats := tempDirStats(gctx, rootFS, opts.Root, tn.rel)
			errMu.Lock()
			tn.files = stats.files
			tn.bytes = stats.bytes
			tn.failed = stats.failed
			scanErrs = append(scanErrs, stats.errs...)
			errMu.Unlock()
			if opts.OnEntry != nil && !stats.failed && gctx.Err() == nil {
				opts.OnEntry(Entry{
					Path:      joinRoot(opts.Root, tn.rel),
					FileCount: stats.files,
					SizeBytes: stats.bytes,
					Kind:      KindTemporary,
				})
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggregate(root)

	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		if n.failed {
			continue
		}
		if opts.MaxDepth > 0 && n.depth > opts.MaxDepth {
			continue
		}
		if opts.TempOnly && !n.temp {
			continue
		}
		kind := KindNormal
		if n.temp {
			kind = KindTemporary
		}
		entries = append(entries, Entry{
			Path:      joinRoot(opts.Root, n.rel),
			FileCount: n.cumFiles,
			SizeBytes: n.cumBytes,
			Kind:      kind,
		})
	}
	report(true)

	return &ScanResult{Entries: entries, Errors: scanErrs}, nil
}

// aggregate fills cumulative totals bottom-up with an explicit stack.
// Failed children contribute nothing; temporary children contribute their
// full subtree sum even though they also surface as entries of their own.
func aggregate(root *dirNode) {
	type frame struct {
		node *dirNode
		next int
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < len(f.node.children) {
			child := f.node.children[f.next]
			f.next++
			stack = append(stack, frame{node: child})
			continue
		}
		n := f.node
		n.cumFiles = n.files
		n.cumBytes = n.bytes
		for _, c := range n.children {
			if c.failed {
				continue
			}
			n.cumFiles += c.cumFiles
			n.cumBytes += c.cumBytes
		}
		stack = stack[:len(stack)-1]
	}
}

type tempStats struct {
	files  int64
	bytes  int64
	failed bool
	errs   []ScanError
}

// tempDirStats sums everything beneath one temporary directory. Contents
// are never classified, only counted. An unreadable subdirectory inside is
// recorded and skipped; an unreadable temp root marks the whole node failed.
func tempDirStats(ctx context.Context, rootFS fs.FS, absRoot, rel string) tempStats {
	var stats tempStats
	_ = fs.WalkDir(rootFS, rel, func(p string, ent fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			stats.errs = append(stats.errs, ScanError{Path: joinRoot(absRoot, p), Cause: err.Error()})
			if p == rel {
				stats.failed = true
				return fs.SkipAll
			}
			return fs.SkipDir
		}
		if ent.IsDir() {
			return nil
		}
		info, infoErr := ent.Info()
		if infoErr != nil {
			stats.errs = append(stats.errs, ScanError{Path: joinRoot(absRoot, p), Cause: infoErr.Error()})
			return nil
		}
		stats.files++
		stats.bytes += info.Size()
		return nil
	})
	return stats
}

func joinRoot(root, rel string) string {
	if rel == "." {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// runScanStream adapts scanTree to the message stream the TUI consumes.
// Temporary entries show up as they are sized; the finished message carries
// the complete aggregated set.
func runScanStream(ctx context.Context, opts ScanOptions, id int, out chan<- tea.Msg) {
	defer close(out)

	start := time.Now()
	opts.Progress = func(p ScanProgress) {
		out <- scanProgressMsg{ID: id, Visited: p.Visited, Found: p.Found}
	}
	opts.OnEntry = func(e Entry) {
		out <- scanRowMsg{ID: id, Entry: e}
	}

	result, err := scanTree(ctx, opts)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	msg := scanFinishedMsg{ID: id, Err: err, Elapsed: time.Since(start)}
	if result != nil {
		msg.Entries = result.Entries
		msg.Errors = result.Errors
	}
	out <- msg
}
