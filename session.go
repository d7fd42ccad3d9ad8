package main

import (
	"errors"
	"fmt"
)

// SessionState tracks where a selection session is in its lifecycle.
//
//	Browsing ──commit──▶ ConfirmingDeletion ──confirm──▶ Deleting ──▶ Completed
//	   ▲                        │
//	   └───────decline──────────┘   (selection preserved)
//	Browsing ──quit──▶ Quit
type SessionState int

const (
	StateBrowsing SessionState = iota
	StateConfirmingDeletion
	StateDeleting
	StateCompleted
	StateQuit
)

func (s SessionState) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateConfirmingDeletion:
		return "confirming-deletion"
	case StateDeleting:
		return "deleting"
	case StateCompleted:
		return "completed"
	case StateQuit:
		return "quit"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrUnknownEntry   = errors.New("entry not in current view")
	ErrEmptySelection = errors.New("selection is empty")
)

// Session is the selection state machine over one entry view. Selection is
// keyed by path, so re-sorting the display never shifts what is selected.
// Sizes reported by the session come from the held entries, not from disk,
// so the confirmation figures stay consistent with what was scanned even if
// the filesystem moved on since.
type Session struct {
	index    map[string]Entry
	order    []string // view order, for deterministic SelectedPaths
	state    SessionState
	selected map[string]struct{}
}

func NewSession(view *Store) *Session {
	s := &Session{
		state:    StateBrowsing,
		selected: make(map[string]struct{}),
	}
	s.setView(view)
	return s
}

func (s *Session) setView(view *Store) {
	entries := view.Entries()
	s.index = make(map[string]Entry, len(entries))
	s.order = make([]string, 0, len(entries))
	for _, e := range entries {
		s.index[e.Path] = e
		s.order = append(s.order, e.Path)
	}
	// Reconcile: anything no longer in the view falls out of the selection.
	for path := range s.selected {
		if _, ok := s.index[path]; !ok {
			delete(s.selected, path)
		}
	}
}

func (s *Session) State() SessionState { return s.state }

func (s *Session) Len() int { return len(s.order) }

// SetView swaps the underlying view, dropping selections that no longer
// resolve. Only legal while browsing.
func (s *Session) SetView(view *Store) error {
	if s.state != StateBrowsing {
		return fmt.Errorf("set view: not allowed in state %s", s.state)
	}
	s.setView(view)
	return nil
}

// Toggle flips membership for one entry. Referencing an entry outside the
// current view is an error, never a silent no-op.
func (s *Session) Toggle(path string) error {
	if s.state != StateBrowsing {
		return fmt.Errorf("toggle: not allowed in state %s", s.state)
	}
	if _, ok := s.index[path]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, path)
	}
	if _, on := s.selected[path]; on {
		delete(s.selected, path)
	} else {
		s.selected[path] = struct{}{}
	}
	return nil
}

func (s *Session) SelectAll() {
	if s.state != StateBrowsing {
		return
	}
	for _, path := range s.order {
		s.selected[path] = struct{}{}
	}
}

func (s *Session) Clear() {
	if s.state != StateBrowsing {
		return
	}
	s.selected = make(map[string]struct{})
}

func (s *Session) Selected(path string) bool {
	_, ok := s.selected[path]
	return ok
}

func (s *Session) SelectionCount() int { return len(s.selected) }

// SelectedPaths returns the selection in view order.
func (s *Session) SelectedPaths() []string {
	paths := make([]string, 0, len(s.selected))
	for _, path := range s.order {
		if _, ok := s.selected[path]; ok {
			paths = append(paths, path)
		}
	}
	return paths
}

// SelectedBytes sums SizeBytes over the selection from the held entries.
func (s *Session) SelectedBytes() int64 {
	var total int64
	for path := range s.selected {
		total += s.index[path].SizeBytes
	}
	return total
}

// Commit moves to ConfirmingDeletion. An empty selection cannot be
// committed.
func (s *Session) Commit() error {
	if s.state != StateBrowsing {
		return fmt.Errorf("commit: not allowed in state %s", s.state)
	}
	if len(s.selected) == 0 {
		return ErrEmptySelection
	}
	s.state = StateConfirmingDeletion
	return nil
}

// Confirm moves a committed selection into Deleting.
func (s *Session) Confirm() error {
	if s.state != StateConfirmingDeletion {
		return fmt.Errorf("confirm: not allowed in state %s", s.state)
	}
	s.state = StateDeleting
	return nil
}

// Decline returns to Browsing with the selection untouched.
func (s *Session) Decline() error {
	if s.state != StateConfirmingDeletion {
		return fmt.Errorf("decline: not allowed in state %s", s.state)
	}
	s.state = StateBrowsing
	return nil
}

// FinishDeletion marks the batch done. Terminal for this selection.
func (s *Session) FinishDeletion() error {
	if s.state != StateDeleting {
		return fmt.Errorf("finish: not allowed in state %s", s.state)
	}
	s.state = StateCompleted
	s.selected = make(map[string]struct{})
	return nil
}

// Quit ends the session without deleting anything.
func (s *Session) Quit() error {
	if s.state != StateBrowsing {
		return fmt.Errorf("quit: not allowed in state %s", s.state)
	}
	s.state = StateQuit
	s.selected = make(map[string]struct{})
	return nil
}
