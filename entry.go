package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
)

// Kind classifies a directory entry. It is assigned once by the classifier
// and never changes afterwards.
type Kind int

const (
	KindNormal Kind = iota
	KindTemporary
)

func (k Kind) String() string {
	if k == KindTemporary {
		return "temp"
	}
	return "normal"
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "temp":
		return KindTemporary, nil
	case "normal":
		return KindNormal, nil
	default:
		return KindNormal, fmt.Errorf("unrecognized type %q", s)
	}
}

// Entry is one reported directory. FileCount and SizeBytes cover the full
// subtree the entry stands for: a temporary directory's own recursive
// contents, or, for a normal directory, its direct files plus the totals of
// every child including temporary ones that are also reported on their own.
type Entry struct {
	Path      string
	FileCount int64
	SizeBytes int64
	Kind      Kind
}

// Store is an immutable ordered collection of entries. Deriving methods
// return fresh stores; entries are never mutated in place.
type Store struct {
	entries []Entry
}

func NewStore(entries []Entry) *Store {
	return &Store{entries: append([]Entry(nil), entries...)}
}

func (s *Store) Len() int { return len(s.entries) }

// Entries returns a copy of the backing slice.
func (s *Store) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

func (s *Store) Find(path string) (Entry, bool) {
	for _, e := range s.entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// SortedBySize orders largest first. The sort is stable and ties break on
// path so repeated runs over the same data display identically.
func (s *Store) SortedBySize() *Store {
	out := s.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SizeBytes != out[j].SizeBytes {
			return out[i].SizeBytes > out[j].SizeBytes
		}
		return out[i].Path < out[j].Path
	})
	return &Store{entries: out}
}

func (s *Store) TopN(n int) *Store {
	if n < 0 || n >= len(s.entries) {
		return NewStore(s.entries)
	}
	return NewStore(s.entries[:n])
}

// TempOnly keeps only temporary entries. A pure projection: retained
// entries carry exactly the totals they had before filtering.
func (s *Store) TempOnly() *Store {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Kind == KindTemporary {
			out = append(out, e)
		}
	}
	return &Store{entries: out}
}

// MinSize drops entries below the threshold. Presentation-level only, like
// TempOnly; a zero threshold keeps everything.
func (s *Store) MinSize(bytes int64) *Store {
	if bytes <= 0 {
		return NewStore(s.entries)
	}
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.SizeBytes >= bytes {
			out = append(out, e)
		}
	}
	return &Store{entries: out}
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatCount(n int64) string {
	return humanize.Comma(n)
}
