package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(NewStore(sampleEntries()))
}

func TestSessionInitialState(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, StateBrowsing, s.State())
	assert.Equal(t, 0, s.SelectionCount())
	assert.Equal(t, 4, s.Len())
}

func TestSessionToggle(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.Toggle("/p/root/node_modules"))
	assert.True(t, s.Selected("/p/root/node_modules"))
	assert.Equal(t, 1, s.SelectionCount())

	require.NoError(t, s.Toggle("/p/root/node_modules"))
	assert.False(t, s.Selected("/p/root/node_modules"))
	assert.Equal(t, 0, s.SelectionCount())
}

func TestSessionToggleUnknown(t *testing.T) {
	s := newTestSession()
	err := s.Toggle("/p/somewhere-else")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEntry)
	assert.Equal(t, 0, s.SelectionCount())
}

func TestSessionSelectAllAndClear(t *testing.T) {
	s := newTestSession()
	s.SelectAll()
	assert.Equal(t, 4, s.SelectionCount())
	s.Clear()
	assert.Equal(t, 0, s.SelectionCount())
}

func TestSessionSelectedPathsViewOrder(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Toggle("/p/root/src/dist"))
	require.NoError(t, s.Toggle("/p/root/node_modules"))
	// Order follows the view, not toggle order.
	assert.Equal(t, []string{"/p/root/node_modules", "/p/root/src/dist"}, s.SelectedPaths())
}

func TestSessionSelectedBytes(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Toggle("/p/root/node_modules"))
	require.NoError(t, s.Toggle("/p/root/src/dist"))
	assert.Equal(t, int64(500), s.SelectedBytes())
}

func TestSessionCommitEmpty(t *testing.T) {
	s := newTestSession()
	err := s.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, StateBrowsing, s.State())
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Toggle("/p/root/node_modules"))

	require.NoError(t, s.Commit())
	assert.Equal(t, StateConfirmingDeletion, s.State())

	require.NoError(t, s.Confirm())
	assert.Equal(t, StateDeleting, s.State())

	require.NoError(t, s.FinishDeletion())
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 0, s.SelectionCount())
}

func TestSessionDeclinePreservesSelection(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Toggle("/p/root/node_modules"))
	require.NoError(t, s.Commit())

	require.NoError(t, s.Decline())
	assert.Equal(t, StateBrowsing, s.State())
	assert.True(t, s.Selected("/p/root/node_modules"))
	assert.Equal(t, 1, s.SelectionCount())
}

func TestSessionIllegalTransitions(t *testing.T) {
	s := newTestSession()

	assert.Error(t, s.Confirm())
	assert.Error(t, s.Decline())
	assert.Error(t, s.FinishDeletion())

	require.NoError(t, s.Toggle("/p/root"))
	require.NoError(t, s.Commit())

	// While confirming, browsing operations are rejected or ignored.
	assert.Error(t, s.Toggle("/p/root"))
	assert.Error(t, s.Commit())
	assert.Error(t, s.Quit())
	s.SelectAll()
	assert.Equal(t, 1, s.SelectionCount())
	s.Clear()
	assert.Equal(t, 1, s.SelectionCount())
}

func TestSessionQuit(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Toggle("/p/root"))
	require.NoError(t, s.Quit())
	assert.Equal(t, StateQuit, s.State())
	assert.Equal(t, 0, s.SelectionCount())
}

func TestSessionSetViewReconciles(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Toggle("/p/root/node_modules"))
	require.NoError(t, s.Toggle("/p/root/src"))

	// The new view dropped src; its selection falls away silently.
	next := NewStore([]Entry{
		{Path: "/p/root/node_modules", FileCount: 4, SizeBytes: 300, Kind: KindTemporary},
	})
	require.NoError(t, s.SetView(next))

	assert.Equal(t, 1, s.SelectionCount())
	assert.True(t, s.Selected("/p/root/node_modules"))
	assert.False(t, s.Selected("/p/root/src"))
}

func TestSessionSetViewOnlyWhileBrowsing(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Toggle("/p/root"))
	require.NoError(t, s.Commit())
	assert.Error(t, s.SetView(NewStore(nil)))
}
